package models

// Task represents a row in the PostgreSQL tasks table.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
}

// TaskRequest is the JSON body for POST and PUT /tasks.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
