package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avolkov/task-tracker/internal/models"
)

const (
	keyByID       = "user:id:"
	keyByUsername = "user:username:"

	// opTimeout bounds every cache round trip. A slow cache degrades into
	// misses instead of slow requests.
	opTimeout = 2 * time.Second
)

// record is the denormalized cache projection of a user. Unlike the public
// User JSON shape it carries the password hash, so it gets its own type.
type record struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// Users is a Redis-backed read-through cache of user records, keyed by both
// id and username. Entries are a derived, disposable copy of the Postgres
// rows; losing them just costs a store round trip.
type Users struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUsers(rdb *redis.Client, ttl time.Duration) *Users {
	return &Users{rdb: rdb, ttl: ttl}
}

// GetByID returns the cached user, or (nil, nil) on a miss.
func (c *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	return c.get(ctx, keyByID+id)
}

// GetByUsername returns the cached user, or (nil, nil) on a miss.
func (c *Users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.get(ctx, keyByUsername+username)
}

func (c *Users) get(ctx context.Context, key string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return &models.User{ID: rec.ID, Username: rec.Username, PasswordHash: rec.PasswordHash}, nil
}

// Put writes both key projections in one pipelined round trip so they cannot
// diverge. On error the caller treats the cache as cold and proceeds via the
// store.
func (c *Users) Put(ctx context.Context, u *models.User) error {
	raw, err := json.Marshal(record{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, keyByID+u.ID, raw, c.ttl)
	pipe.Set(ctx, keyByUsername+u.Username, raw, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}
