package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avolkov/task-tracker/internal/models"
)

const fetchTimeout = 30 * time.Second

// Store persists one typed row per fetched todo and tracks the cursor.
type Store interface {
	NextTodoID(ctx context.Context) (int, error)
	InsertFetched(ctx context.Context, f *models.FetchedTodo) error
}

// Archive keeps the raw upstream payloads.
type Archive interface {
	Archive(ctx context.Context, p *models.FetchedPayload) error
}

// Fetcher periodically pulls the next todo from the upstream API and
// persists it. The cursor is derived from what is already stored, so
// restarts resume instead of refetching.
type Fetcher struct {
	store    Store
	archive  Archive
	client   *http.Client
	baseURL  string
	interval time.Duration
	log      zerolog.Logger
}

func New(store Store, archive Archive, baseURL string, interval time.Duration, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		store:    store,
		archive:  archive,
		client:   &http.Client{},
		baseURL:  strings.TrimRight(baseURL, "/"),
		interval: interval,
		log:      log,
	}
}

// Run fetches on a fixed interval until ctx is cancelled. Failures are
// logged and retried on the next tick, never fatal.
func (f *Fetcher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.fetchOnce(ctx); err != nil {
				f.log.Error().Err(err).Msg("background fetch failed")
			}
		}
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	todoID, err := f.store.NextTodoID(ctx)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/todos/%d", f.baseURL, todoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s returned %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var todo struct {
		UserID    int    `json:"userId"`
		ID        int    `json:"id"`
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	}
	if err := json.Unmarshal(body, &todo); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}

	now := time.Now().UTC()
	row := &models.FetchedTodo{
		ID:        uuid.New().String(),
		URL:       url,
		UserID:    todo.UserID,
		TodoID:    todo.ID,
		Title:     todo.Title,
		Completed: todo.Completed,
		FetchedAt: now,
	}
	if err := f.store.InsertFetched(ctx, row); err != nil {
		return err
	}

	// The archive is best-effort; the typed row is the record that matters.
	if err := f.archive.Archive(ctx, &models.FetchedPayload{URL: url, Body: string(body), FetchedAt: now}); err != nil {
		f.log.Warn().Err(err).Msg("payload archive failed")
	}

	f.log.Info().Int("todo_id", todo.ID).Msg("fetched and saved todo")
	return nil
}
