package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/eaglebank/ledger/shared/models"
	sharedredis "github.com/eaglebank/ledger/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const statementViewKeyPrefix = "statement:view:"

// statementCacheEntry keeps the owner next to the view, which hides UserID
// from JSON.
type statementCacheEntry struct {
	UserID string               `json:"user_id"`
	View   models.StatementView `json:"view"`
}

// StatementReadRepository serves statement reads. Single statements come from
// Redis first and fall back to the store on a miss. Histories always come from
// the store.
type StatementReadRepository struct {
	store StatementStore
	cache *sharedredis.ViewCache[statementCacheEntry]
}

// NewStatementReadRepository caches with redisClient; a nil client disables
// the cache.
func NewStatementReadRepository(store StatementStore, redisClient goredis.Cmdable, ttl time.Duration, log *zap.Logger) *StatementReadRepository {
	r := &StatementReadRepository{store: store}
	if redisClient != nil {
		r.cache = sharedredis.NewViewCache[statementCacheEntry](redisClient, ttl, log)
	}
	return r
}

func (r *StatementReadRepository) ListByUser(ctx context.Context, userID string) ([]models.Statement, error) {
	return r.store.ListByUser(ctx, userID)
}

// GetByID returns the view of statementID when userID owns it.
func (r *StatementReadRepository) GetByID(ctx context.Context, statementID, userID string) (*models.StatementView, error) {
	if r.cache != nil {
		if entry, ok := r.cache.Get(ctx, statementViewKey(userID, statementID)); ok && entry.UserID == userID {
			view := entry.View
			view.UserID = entry.UserID
			return &view, nil
		}
	}

	st, err := r.store.FindByID(ctx, statementID, userID)
	if err != nil {
		return nil, err
	}

	r.CacheStatement(ctx, st)
	return models.StatementToView(st), nil
}

// CacheStatement stores the read model of st. Statements never change, so an
// entry stays valid until it expires.
func (r *StatementReadRepository) CacheStatement(ctx context.Context, st *models.Statement) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, statementViewKey(st.UserID, st.ID), &statementCacheEntry{
		UserID: st.UserID,
		View:   *models.StatementToView(st),
	})
}

func statementViewKey(userID, statementID string) string {
	return fmt.Sprintf("%s%s:%s", statementViewKeyPrefix, userID, statementID)
}
