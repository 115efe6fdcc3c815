package query

import (
	"context"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/eaglebank/ledger/shared/utils"
	"github.com/eaglebank/ledger/shared/xerrors"
	"github.com/eaglebank/ledger/statement-service/internal/balance"
	"github.com/eaglebank/ledger/statement-service/internal/precondition"
	"github.com/eaglebank/ledger/statement-service/internal/repository"
)

// StatementReader is satisfied by *repository.StatementReadRepository.
type StatementReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.Statement, error)
	GetByID(ctx context.Context, statementID, userID string) (*models.StatementView, error)
}

// StatementQueryService serves balance and statement reads. It never takes
// user locks; reads see committed statements only.
type StatementQueryService struct {
	reader StatementReader
	users  repository.UserDirectory
}

func NewStatementQueryService(reader StatementReader, users repository.UserDirectory) *StatementQueryService {
	return &StatementQueryService{reader: reader, users: users}
}

// GetBalance folds the user's full history into a balance.
func (s *StatementQueryService) GetBalance(ctx context.Context, q cqrs.GetBalanceQuery) (*models.BalanceView, error) {
	if err := precondition.RequireUser(ctx, s.users, q.UserID); err != nil {
		return nil, err
	}

	history, err := s.reader.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]models.StatementView, 0, len(history))
	for i := range history {
		views = append(views, *models.StatementToView(&history[i]))
	}
	return &models.BalanceView{
		Balance:   balance.Compute(history),
		Statement: views,
	}, nil
}

// GetStatementOperation returns one statement of the user. Ids owned by
// another user are reported as not found.
func (s *StatementQueryService) GetStatementOperation(ctx context.Context, q cqrs.GetStatementOperationQuery) (*models.StatementView, error) {
	if err := precondition.RequireUser(ctx, s.users, q.UserID); err != nil {
		return nil, err
	}
	if !utils.ValidateStatementID(q.StatementID) {
		return nil, xerrors.ErrStatementNotFound
	}
	return s.reader.GetByID(ctx, q.StatementID, q.UserID)
}
