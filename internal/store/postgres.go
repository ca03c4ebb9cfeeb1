package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/task-tracker/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("already exists")
)

const uniqueViolation = "23505"

// PostgresStore is the durable system of record for users, tasks and
// fetched rows.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      VARCHAR(50)  UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL
		);
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			title       VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			owner_id    TEXT NOT NULL REFERENCES users(id)
		);
		CREATE TABLE IF NOT EXISTS fetched_data (
			id         TEXT PRIMARY KEY,
			url        VARCHAR(255) NOT NULL,
			user_id    INT  NOT NULL,
			todo_id    INT  NOT NULL,
			title      TEXT NOT NULL,
			completed  BOOLEAN NOT NULL,
			fetched_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	return err
}

// InsertUser inserts a new user. The unique constraint on username is the
// authoritative duplicate check; a violation maps to ErrDuplicate.
func (s *PostgresStore) InsertUser(ctx context.Context, u *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3)`,
		u.ID, u.Username, u.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, t *models.Task) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tasks (id, title, description, owner_id) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Title, t.Description, t.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTasksByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, description, owner_id FROM tasks WHERE owner_id = $1`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask updates a task owned by t.OwnerID. Missing or foreign tasks
// map to ErrNotFound.
func (s *PostgresStore) UpdateTask(ctx context.Context, t *models.Task) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET title = $1, description = $2 WHERE id = $3 AND owner_id = $4`,
		t.Title, t.Description, t.ID, t.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id, ownerID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) InsertFetched(ctx context.Context, f *models.FetchedTodo) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO fetched_data (id, url, user_id, todo_id, title, completed, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.URL, f.UserID, f.TodoID, f.Title, f.Completed, f.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("insert fetched: %w", err)
	}
	return nil
}

// NextTodoID returns the cursor for the background fetch job, derived from
// the highest todo id already persisted.
func (s *PostgresStore) NextTodoID(ctx context.Context) (int, error) {
	var next int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(todo_id), 0) + 1 FROM fetched_data`,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next todo id: %w", err)
	}
	return next, nil
}
