package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eaglebank/ledger/shared/models"
	"github.com/eaglebank/ledger/shared/utils"
	"github.com/eaglebank/ledger/shared/xerrors"
)

const statementColumns = `id, user_id, sender_id, type, amount, description, created_at`

// PostgresStatementStore is the PostgreSQL write store (source of truth).
// Per-user exclusion uses transaction-scoped advisory locks, so it holds
// across every process sharing the database.
type PostgresStatementStore struct {
	db *sql.DB
}

func NewPostgresStatementStore(db *sql.DB) *PostgresStatementStore {
	return &PostgresStatementStore{db: db}
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStatementStore) ListByUser(ctx context.Context, userID string) ([]models.Statement, error) {
	return listStatements(ctx, s.db, userID)
}

func (s *PostgresStatementStore) FindByID(ctx context.Context, statementID, userID string) (*models.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE id = $1 AND user_id = $2`

	st, err := scanStatement(s.db.QueryRowContext(ctx, query, statementID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, xerrors.ErrStatementNotFound
	}
	if err != nil {
		return nil, xerrors.Persistence("find statement", err)
	}
	return st, nil
}

func (s *PostgresStatementStore) WithUserLocks(ctx context.Context, userIDs []string, fn func(StatementTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Persistence("begin transaction", err)
	}
	defer tx.Rollback()

	ordered := lockOrder(userIDs)
	for _, id := range ordered {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, id); err != nil {
			return xerrors.Persistence("acquire user lock", err)
		}
	}

	if err := fn(&postgresStatementTx{tx: tx, users: ordered}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return xerrors.Persistence("commit transaction", err)
	}
	return nil
}

type postgresStatementTx struct {
	tx    *sql.Tx
	users []string
}

func (t *postgresStatementTx) ListByUser(ctx context.Context, userID string) ([]models.Statement, error) {
	return listStatements(ctx, t.tx, userID)
}

func (t *postgresStatementTx) Append(ctx context.Context, st *models.Statement) error {
	if !containsUser(t.users, st.UserID) {
		return fmt.Errorf("append for %s outside its lock set", st.UserID)
	}
	if st.ID == "" {
		st.ID = utils.GenerateStatementID()
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO statements (id, user_id, sender_id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := t.tx.ExecContext(ctx, query,
		st.ID, st.UserID, nullString(st.SenderID),
		string(st.Type), st.Amount, st.Description, st.CreatedAt,
	)
	if err != nil {
		return xerrors.Persistence("append statement", err)
	}
	return nil
}

func listStatements(ctx context.Context, q queryer, userID string) ([]models.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE user_id = $1 ORDER BY seq`

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, xerrors.Persistence("list statements", err)
	}
	defer rows.Close()

	statements := make([]models.Statement, 0)
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, xerrors.Persistence("scan statement", err)
		}
		statements = append(statements, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Persistence("list statements", err)
	}
	return statements, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatement(row rowScanner) (*models.Statement, error) {
	var st models.Statement
	var senderID sql.NullString
	var opType string

	if err := row.Scan(
		&st.ID, &st.UserID, &senderID,
		&opType, &st.Amount, &st.Description, &st.CreatedAt,
	); err != nil {
		return nil, err
	}
	st.Type = models.OperationType(opType)
	if senderID.Valid {
		st.SenderID = senderID.String
	}
	st.CreatedAt = st.CreatedAt.UTC()
	return &st, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
