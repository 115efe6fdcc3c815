package repository

import (
	"context"
	"sort"

	"github.com/eaglebank/ledger/shared/models"
)

// StatementStore is the durable, append-only record of statements.
// Reads see committed statements only.
type StatementStore interface {
	// ListByUser returns the statements of userID in insertion order.
	ListByUser(ctx context.Context, userID string) ([]models.Statement, error)

	// FindByID returns the statement only when userID owns it. Both an unknown
	// id and an id owned by someone else resolve to xerrors.ErrStatementNotFound.
	FindByID(ctx context.Context, statementID, userID string) (*models.Statement, error)

	// WithUserLocks runs fn while holding an exclusive lock for every user in
	// userIDs. Appends made through the StatementTx commit together when fn
	// returns nil and are discarded otherwise.
	WithUserLocks(ctx context.Context, userIDs []string, fn func(StatementTx) error) error
}

// StatementTx is the view of the store inside WithUserLocks. ListByUser
// includes statements staged earlier in the same call.
type StatementTx interface {
	ListByUser(ctx context.Context, userID string) ([]models.Statement, error)

	// Append assigns ID and CreatedAt when they are empty and stages st.
	// st.UserID must be one of the locked users.
	Append(ctx context.Context, st *models.Statement) error
}

// lockOrder dedupes userIDs and sorts them so that every caller acquires
// overlapping locks in the same order.
func lockOrder(userIDs []string) []string {
	seen := make(map[string]struct{}, len(userIDs))
	ordered := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)
	return ordered
}

func containsUser(userIDs []string, userID string) bool {
	for _, id := range userIDs {
		if id == userID {
			return true
		}
	}
	return false
}
