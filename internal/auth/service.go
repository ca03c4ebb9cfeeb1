package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avolkov/task-tracker/internal/models"
	"github.com/avolkov/task-tracker/internal/store"
)

const maxUsernameLen = 50

// UserStore defines the interface for durable user persistence. It is the
// system of record: its unique constraint, not any application check, decides
// registration races.
type UserStore interface {
	InsertUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// UserCache defines the read-through cache in front of the store. A (nil, nil)
// return is a miss. Backend errors are surfaced to the service, which treats
// them as misses.
type UserCache interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Put(ctx context.Context, u *models.User) error
}

// Service implements register, login and token resolution over the cache,
// the store and the token codec.
type Service struct {
	users UserStore
	cache UserCache
	codec *Codec
	log   zerolog.Logger
}

func NewService(users UserStore, cache UserCache, codec *Codec, log zerolog.Logger) *Service {
	return &Service{users: users, cache: cache, codec: codec, log: log}
}

// Register creates a new user and warms the cache. The cache and store
// lookups are latency optimizations only; the insert's unique constraint is
// what actually guarantees uniqueness under concurrent registration.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	if len(username) == 0 || len(username) > maxUsernameLen {
		return nil, ErrInvalidUsername
	}

	if cached := s.cachedByUsername(ctx, username); cached != nil {
		return nil, ErrDuplicateUsername
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost a race against a concurrent register. The cache must not
			// be populated with the loser's record.
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.warmCache(ctx, user)
	return user, nil
}

// Login verifies credentials and issues a session token. A cache hit is
// authoritative: a failed verify against the cached hash does not fall back
// to the store. Credentials are immutable, so the cached hash cannot be stale.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user := s.cachedByUsername(ctx, username)
	if user != nil {
		if !VerifyPassword(password, user.PasswordHash) {
			return "", ErrInvalidCredentials
		}
	} else {
		var err error
		user, err = s.users.GetUserByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", ErrInvalidCredentials
			}
			return "", fmt.Errorf("login: %w", err)
		}
		if !VerifyPassword(password, user.PasswordHash) {
			return "", ErrInvalidCredentials
		}
		s.warmCache(ctx, user)
	}

	token, err := s.codec.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

// CurrentUser resolves an Authorization header value into a user identity.
// This runs on every authenticated request; the cache-hit branch never
// touches the store.
func (s *Service) CurrentUser(ctx context.Context, authHeader string) (*models.User, error) {
	raw, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || raw == "" {
		return nil, ErrNotAuthenticated
	}
	subject, err := s.codec.Validate(raw)
	if err != nil {
		return nil, err
	}

	if user := s.cachedByID(ctx, subject); user != nil {
		return user, nil
	}
	user, err := s.users.GetUserByID(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The user existed when the token was issued but is gone now;
			// the token itself is never proactively invalidated.
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("current user: %w", err)
	}
	s.warmCache(ctx, user)
	return user, nil
}

// cachedByUsername reads the cache, absorbing backend errors as misses so a
// degraded cache never blocks auth.
func (s *Service) cachedByUsername(ctx context.Context, username string) *models.User {
	u, err := s.cache.GetByUsername(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Msg("user cache read failed, treating as miss")
		return nil
	}
	return u
}

func (s *Service) cachedByID(ctx context.Context, id string) *models.User {
	u, err := s.cache.GetByID(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Msg("user cache read failed, treating as miss")
		return nil
	}
	return u
}

// warmCache writes both projections best-effort. A failure leaves a cold
// cache for this user, which self-heals on the next lookup.
func (s *Service) warmCache(ctx context.Context, u *models.User) {
	if err := s.cache.Put(ctx, u); err != nil {
		s.log.Warn().Err(err).Str("user_id", u.ID).Msg("user cache write failed")
	}
}
