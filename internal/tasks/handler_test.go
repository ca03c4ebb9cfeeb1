package tasks

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"

	"github.com/avolkov/task-tracker/internal/auth"
	"github.com/avolkov/task-tracker/internal/models"
	"github.com/avolkov/task-tracker/internal/store"
)

type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[string]*models.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: map[string]*models.Task{}}
}

func (f *fakeTaskStore) CreateTask(ctx context.Context, t *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskStore) ListTasksByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Task{}
	for _, t := range f.tasks {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) UpdateTask(ctx context.Context, t *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.tasks[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return store.ErrNotFound
	}
	existing.Title = t.Title
	existing.Description = t.Description
	return nil
}

func (f *fakeTaskStore) DeleteTask(ctx context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.tasks[id]
	if !ok || existing.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

// asUser injects an authenticated user, standing in for the auth middleware.
func asUser(u *models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
		})
	}
}

func testRouter(st *fakeTaskStore, u *models.User) http.Handler {
	h := NewHandler(st)
	r := chi.NewRouter()
	r.Use(asUser(u))
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

var (
	alice = &models.User{ID: "u-alice", Username: "alice"}
	bob   = &models.User{ID: "u-bob", Username: "bob"}
)

func TestCreateAndListTasks(t *testing.T) {
	st := newFakeTaskStore()
	handler := testRouter(st, alice)

	apitest.Handler(handler).
		Post("/tasks").
		JSON(`{"title":"buy milk","description":"2 liters"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Present("$.id")).
		Assert(jsonpath.Equal("$.title", "buy milk")).
		Assert(jsonpath.Equal("$.owner_id", "u-alice")).
		End()

	apitest.Handler(handler).
		Get("/tasks").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		Assert(jsonpath.Equal("$[0].title", "buy milk")).
		End()

	// Other owners see nothing.
	apitest.Handler(testRouter(st, bob)).
		Get("/tasks").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 0)).
		End()
}

func TestCreateTaskValidation(t *testing.T) {
	handler := testRouter(newFakeTaskStore(), alice)

	apitest.Handler(handler).
		Post("/tasks").
		JSON(`{"title":"","description":"x"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()

	apitest.Handler(handler).
		Post("/tasks").
		Body(`not json`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestUpdateTask(t *testing.T) {
	st := newFakeTaskStore()
	st.tasks["t1"] = &models.Task{ID: "t1", Title: "old", Description: "old", OwnerID: "u-alice"}

	apitest.Handler(testRouter(st, alice)).
		Put("/tasks/t1").
		JSON(`{"title":"new title","description":"new body"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.title", "new title")).
		End()

	// A foreign task looks exactly like a missing one.
	apitest.Handler(testRouter(st, bob)).
		Put("/tasks/t1").
		JSON(`{"title":"hijack","description":""}`).
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.detail", "Task not found.")).
		End()

	apitest.Handler(testRouter(st, alice)).
		Put("/tasks/nope").
		JSON(`{"title":"x","description":""}`).
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.detail", "Task not found.")).
		End()
}

func TestDeleteTask(t *testing.T) {
	st := newFakeTaskStore()
	st.tasks["t1"] = &models.Task{ID: "t1", Title: "x", Description: "", OwnerID: "u-alice"}

	apitest.Handler(testRouter(st, bob)).
		Delete("/tasks/t1").
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.Handler(testRouter(st, alice)).
		Delete("/tasks/t1").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.ok", true)).
		End()

	apitest.Handler(testRouter(st, alice)).
		Delete("/tasks/t1").
		Expect(t).
		Status(http.StatusNotFound).
		End()
}
