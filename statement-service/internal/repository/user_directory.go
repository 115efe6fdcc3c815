package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/xerrors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const userExistsKeyPrefix = "user:exists:"

// UserDirectory answers whether a user id is registered.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// UserDirectoryRepository looks users up in Redis first and then in the
// users table owned by the user service, warming Redis on a hit.
// Unknown ids are never cached, so a user registered a moment ago is
// found on the next call.
type UserDirectoryRepository struct {
	db    *sql.DB
	redis goredis.Cmdable
	ttl   time.Duration
	log   *zap.Logger
}

func NewUserDirectoryRepository(db *sql.DB, redis goredis.Cmdable, ttl time.Duration, log *zap.Logger) *UserDirectoryRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserDirectoryRepository{db: db, redis: redis, ttl: ttl, log: log}
}

func (r *UserDirectoryRepository) Exists(ctx context.Context, userID string) (bool, error) {
	if r.redis != nil {
		err := r.redis.Get(ctx, userExistsKey(userID)).Err()
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, goredis.Nil) {
			r.log.Warn("user existence cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, xerrors.Persistence("lookup user", err)
	}
	if exists {
		r.remember(ctx, userID)
	}
	return exists, nil
}

// HandleUserEvent caches the ids announced on the user events stream.
func (r *UserDirectoryRepository) HandleUserEvent(ctx context.Context, event events.Event) error {
	userID, err := createdUserID(event)
	if err != nil || userID == "" {
		return err
	}
	if r.redis == nil {
		return nil
	}
	if err := r.redis.Set(ctx, userExistsKey(userID), "1", r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache user %s: %w", userID, err)
	}
	return nil
}

func (r *UserDirectoryRepository) remember(ctx context.Context, userID string) {
	if r.redis == nil {
		return
	}
	if err := r.redis.Set(ctx, userExistsKey(userID), "1", r.ttl).Err(); err != nil {
		r.log.Warn("user existence cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// MemoryUserDirectory is the directory used with the in-memory statement
// store. It learns ids from user events or from Add.
type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[string]struct{}
}

func NewMemoryUserDirectory(userIDs ...string) *MemoryUserDirectory {
	d := &MemoryUserDirectory{users: make(map[string]struct{}, len(userIDs))}
	for _, id := range userIDs {
		d.users[id] = struct{}{}
	}
	return d
}

func (d *MemoryUserDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[userID]
	return ok, nil
}

func (d *MemoryUserDirectory) Add(userID string) {
	d.mu.Lock()
	d.users[userID] = struct{}{}
	d.mu.Unlock()
}

func (d *MemoryUserDirectory) HandleUserEvent(ctx context.Context, event events.Event) error {
	userID, err := createdUserID(event)
	if err != nil || userID == "" {
		return err
	}
	d.Add(userID)
	return nil
}

// createdUserID returns "" for events other than user.created.
func createdUserID(event events.Event) (string, error) {
	if event.Type != events.UserCreated {
		return "", nil
	}
	var data events.UserCreatedEvent
	if err := event.Decode(&data); err != nil {
		return "", err
	}
	return data.UserID, nil
}

func userExistsKey(userID string) string {
	return userExistsKeyPrefix + userID
}
