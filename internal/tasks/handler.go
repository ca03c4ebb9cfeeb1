package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avolkov/task-tracker/internal/auth"
	"github.com/avolkov/task-tracker/internal/models"
	"github.com/avolkov/task-tracker/internal/store"
)

// TaskStore defines the interface for task persistence. Every operation is
// scoped by owner id.
type TaskStore interface {
	CreateTask(ctx context.Context, t *models.Task) error
	ListTasksByOwner(ctx context.Context, ownerID string) ([]models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id, ownerID string) error
}

// Handler holds task CRUD HTTP handlers.
type Handler struct {
	store TaskStore
}

func NewHandler(store TaskStore) *Handler {
	return &Handler{store: store}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// List returns all tasks owned by the current user.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	tasks, err := h.store.ListTasksByOwner(r.Context(), user.ID)
	if err != nil {
		writeDetail(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create adds a task owned by the current user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req models.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		writeDetail(w, http.StatusBadRequest, "Title is required")
		return
	}

	task := &models.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     user.ID,
	}
	if err := h.store.CreateTask(r.Context(), task); err != nil {
		writeDetail(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Update replaces the title and description of a task owned by the current
// user. Tasks owned by someone else look identical to missing ones.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req models.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task := &models.Task{
		ID:          chi.URLParam(r, "id"),
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     user.ID,
	}
	if err := h.store.UpdateTask(r.Context(), task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Task not found.")
		} else {
			writeDetail(w, http.StatusServiceUnavailable, "Service unavailable")
		}
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete removes a task owned by the current user.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	if err := h.store.DeleteTask(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Task not found.")
		} else {
			writeDetail(w, http.StatusServiceUnavailable, "Service unavailable")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
