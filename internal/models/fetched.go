package models

import "time"

// FetchedTodo is a row in the fetched_data table, one per background fetch.
type FetchedTodo struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	UserID    int       `json:"user_id"`
	TodoID    int       `json:"todo_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	FetchedAt time.Time `json:"fetched_at"`
}

// FetchedPayload is the raw upstream response body, archived to MongoDB.
type FetchedPayload struct {
	URL       string    `bson:"url"`
	Body      string    `bson:"body"`
	FetchedAt time.Time `bson:"fetched_at"`
}
