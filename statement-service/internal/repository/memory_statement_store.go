package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eaglebank/ledger/shared/models"
	"github.com/eaglebank/ledger/shared/utils"
	"github.com/eaglebank/ledger/shared/xerrors"
)

// MemoryStatementStore keeps statements in process memory. It serves local
// runs with STATEMENT_STORE=memory and the service tests.
type MemoryStatementStore struct {
	mu     sync.RWMutex
	byUser map[string][]models.Statement
	byID   map[string]models.Statement

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

func NewMemoryStatementStore() *MemoryStatementStore {
	return &MemoryStatementStore{
		byUser: make(map[string][]models.Statement),
		byID:   make(map[string]models.Statement),
		locks:  make(map[string]*sync.Mutex),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStatementStore) ListByUser(ctx context.Context, userID string) ([]models.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, xerrors.Persistence("list statements", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(userID), nil
}

func (s *MemoryStatementStore) FindByID(ctx context.Context, statementID, userID string) (*models.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, xerrors.Persistence("find statement", err)
	}
	s.mu.RLock()
	st, ok := s.byID[statementID]
	s.mu.RUnlock()
	if !ok || st.UserID != userID {
		return nil, xerrors.ErrStatementNotFound
	}
	return &st, nil
}

func (s *MemoryStatementStore) WithUserLocks(ctx context.Context, userIDs []string, fn func(StatementTx) error) error {
	ordered := lockOrder(userIDs)
	for _, id := range ordered {
		m := s.userLock(id)
		m.Lock()
		defer m.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return xerrors.Persistence("acquire user locks", err)
	}

	tx := &memoryStatementTx{store: s, users: ordered}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range tx.staged {
		s.byUser[st.UserID] = append(s.byUser[st.UserID], st)
		s.byID[st.ID] = st
	}
	return nil
}

// Len is the number of committed statements across all users.
func (s *MemoryStatementStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *MemoryStatementStore) userLock(userID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[userID] = m
	}
	return m
}

// snapshot copies the committed history of userID. Callers hold s.mu.
func (s *MemoryStatementStore) snapshot(userID string) []models.Statement {
	src := s.byUser[userID]
	out := make([]models.Statement, len(src))
	copy(out, src)
	return out
}

type memoryStatementTx struct {
	store  *MemoryStatementStore
	users  []string
	staged []models.Statement
}

func (tx *memoryStatementTx) ListByUser(ctx context.Context, userID string) ([]models.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, xerrors.Persistence("list statements", err)
	}
	tx.store.mu.RLock()
	out := tx.store.snapshot(userID)
	tx.store.mu.RUnlock()

	for _, st := range tx.staged {
		if st.UserID == userID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (tx *memoryStatementTx) Append(ctx context.Context, st *models.Statement) error {
	if err := ctx.Err(); err != nil {
		return xerrors.Persistence("append statement", err)
	}
	if !containsUser(tx.users, st.UserID) {
		return fmt.Errorf("append for %s outside its lock set", st.UserID)
	}
	if st.ID == "" {
		st.ID = utils.GenerateStatementID()
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = tx.store.now()
	}
	tx.staged = append(tx.staged, *st)
	return nil
}
