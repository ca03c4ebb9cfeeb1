package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/task-tracker/internal/models"
)

type fakeStore struct {
	next int
	rows []models.FetchedTodo
}

func (f *fakeStore) NextTodoID(ctx context.Context) (int, error) { return f.next, nil }

func (f *fakeStore) InsertFetched(ctx context.Context, row *models.FetchedTodo) error {
	f.rows = append(f.rows, *row)
	return nil
}

type fakeArchive struct {
	payloads []models.FetchedPayload
}

func (f *fakeArchive) Archive(ctx context.Context, p *models.FetchedPayload) error {
	f.payloads = append(f.payloads, *p)
	return nil
}

func TestFetchOncePersistsRowAndArchive(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"userId":1,"id":5,"title":"delectus aut autem","completed":false}`))
	}))
	defer upstream.Close()

	st := &fakeStore{next: 5}
	ar := &fakeArchive{}
	f := New(st, ar, upstream.URL, time.Minute, zerolog.Nop())

	require.NoError(t, f.fetchOnce(context.Background()))

	require.Equal(t, "/todos/5", gotPath)
	require.Len(t, st.rows, 1)
	row := st.rows[0]
	require.NotEmpty(t, row.ID)
	require.Equal(t, 5, row.TodoID)
	require.Equal(t, 1, row.UserID)
	require.Equal(t, "delectus aut autem", row.Title)
	require.False(t, row.Completed)
	require.Equal(t, upstream.URL+"/todos/5", row.URL)
	require.False(t, row.FetchedAt.IsZero())

	require.Len(t, ar.payloads, 1)
	require.JSONEq(t, `{"userId":1,"id":5,"title":"delectus aut autem","completed":false}`, ar.payloads[0].Body)
}

func TestFetchOnceUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	st := &fakeStore{next: 1}
	f := New(st, &fakeArchive{}, upstream.URL, time.Minute, zerolog.Nop())

	require.Error(t, f.fetchOnce(context.Background()))
	require.Empty(t, st.rows)
}

func TestFetchOnceBadPayload(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json</html>`))
	}))
	defer upstream.Close()

	st := &fakeStore{next: 1}
	f := New(st, &fakeArchive{}, upstream.URL, time.Minute, zerolog.Nop())

	require.Error(t, f.fetchOnce(context.Background()))
	require.Empty(t, st.rows)
}

func TestRunStopsOnCancel(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"userId":1,"id":1,"title":"t","completed":true}`))
	}))
	defer upstream.Close()

	f := New(&fakeStore{next: 1}, &fakeArchive{}, upstream.URL, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
