package command

import (
	"context"
	"fmt"
	"time"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/metrics"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/eaglebank/ledger/shared/utils"
	"github.com/eaglebank/ledger/shared/xerrors"
	"github.com/eaglebank/ledger/statement-service/internal/balance"
	"github.com/eaglebank/ledger/statement-service/internal/precondition"
	"github.com/eaglebank/ledger/statement-service/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventPublisher is satisfied by *events.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// StatementViewCacher is satisfied by *repository.StatementReadRepository.
type StatementViewCacher interface {
	CacheStatement(ctx context.Context, st *models.Statement)
}

// StatementCommandService appends statements. The balance check and the
// append run under the owner's lock, so concurrent debits of one user are
// serialized and can never overdraw.
type StatementCommandService struct {
	store     repository.StatementStore
	users     repository.UserDirectory
	views     StatementViewCacher
	publisher EventPublisher
	log       *zap.Logger
}

func NewStatementCommandService(
	store repository.StatementStore,
	users repository.UserDirectory,
	views StatementViewCacher,
	publisher EventPublisher,
	log *zap.Logger,
) *StatementCommandService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatementCommandService{
		store:     store,
		users:     users,
		views:     views,
		publisher: publisher,
		log:       log,
	}
}

// CreateStatement records a deposit or a withdraw.
func (s *StatementCommandService) CreateStatement(ctx context.Context, cmd cqrs.CreateStatementCommand) (*models.Statement, error) {
	if err := precondition.RequireUser(ctx, s.users, cmd.UserID); err != nil {
		return nil, err
	}
	if err := validateAmount(cmd.Amount); err != nil {
		return nil, err
	}
	if cmd.Type != models.Deposit && cmd.Type != models.Withdraw {
		return nil, fmt.Errorf("%w: %q", xerrors.ErrInvalidOperation, cmd.Type)
	}

	statement := &models.Statement{
		UserID:      cmd.UserID,
		Type:        cmd.Type,
		Amount:      cmd.Amount,
		Description: cmd.Description,
	}

	start := time.Now()
	err := s.store.WithUserLocks(ctx, []string{cmd.UserID}, func(tx repository.StatementTx) error {
		if cmd.Type.IsDebit() {
			if err := requireFunds(ctx, tx, cmd.UserID, cmd.Amount); err != nil {
				return err
			}
		}
		return tx.Append(ctx, statement)
	})
	metrics.ObserveLocked(string(cmd.Type), start)
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, statement)
	s.publish(ctx, events.StatementCreated, events.StatementCreatedEvent{
		StatementID: statement.ID,
		UserID:      statement.UserID,
		Type:        string(statement.Type),
		Amount:      statement.Amount.String(),
	})

	return statement, nil
}

// CreateTransfer moves cmd.Amount from the sender to the receiver. The
// transfer_sent and transfer_received records are written together or not
// at all.
func (s *StatementCommandService) CreateTransfer(ctx context.Context, cmd cqrs.CreateTransferCommand) ([]models.Statement, error) {
	if err := precondition.RequireUser(ctx, s.users, cmd.SenderID); err != nil {
		return nil, err
	}
	if err := precondition.RequireUser(ctx, s.users, cmd.ReceiverID); err != nil {
		return nil, err
	}
	if cmd.SenderID == cmd.ReceiverID {
		return nil, xerrors.ErrSameUser
	}
	if err := validateAmount(cmd.Amount); err != nil {
		return nil, err
	}

	sent := &models.Statement{
		UserID:      cmd.SenderID,
		SenderID:    cmd.ReceiverID,
		Type:        models.TransferSent,
		Amount:      cmd.Amount,
		Description: cmd.Description,
	}
	received := &models.Statement{
		UserID:      cmd.ReceiverID,
		SenderID:    cmd.SenderID,
		Type:        models.TransferReceived,
		Amount:      cmd.Amount,
		Description: cmd.Description,
	}

	start := time.Now()
	err := s.store.WithUserLocks(ctx, []string{cmd.SenderID, cmd.ReceiverID}, func(tx repository.StatementTx) error {
		if err := requireFunds(ctx, tx, cmd.SenderID, cmd.Amount); err != nil {
			return err
		}
		if err := tx.Append(ctx, sent); err != nil {
			return err
		}
		return tx.Append(ctx, received)
	})
	metrics.ObserveLocked("transfer", start)
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, sent)
	s.afterCommit(ctx, received)
	s.publish(ctx, events.TransferCreated, events.TransferCreatedEvent{
		SentStatementID:     sent.ID,
		ReceivedStatementID: received.ID,
		SenderID:            cmd.SenderID,
		ReceiverID:          cmd.ReceiverID,
		Amount:              cmd.Amount.String(),
	})

	return []models.Statement{*sent, *received}, nil
}

func validateAmount(amount decimal.Decimal) error {
	if err := utils.ValidateAmount(amount); err != nil {
		metrics.Rejected("invalid_amount")
		return fmt.Errorf("%w: %v", xerrors.ErrInvalidAmount, err)
	}
	return nil
}

// requireFunds must run inside WithUserLocks for userID.
func requireFunds(ctx context.Context, tx repository.StatementTx, userID string, amount decimal.Decimal) error {
	history, err := tx.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if !balance.Covers(balance.Compute(history), amount) {
		metrics.Rejected("insufficient_funds")
		return xerrors.ErrInsufficientFunds
	}
	return nil
}

func (s *StatementCommandService) afterCommit(ctx context.Context, st *models.Statement) {
	metrics.StatementCreated(string(st.Type), st.Amount)
	if s.views != nil {
		s.views.CacheStatement(ctx, st)
	}
}

func (s *StatementCommandService) publish(ctx context.Context, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.StatementEventsStream, eventType, data); err != nil {
		s.log.Warn("failed to publish statement event", zap.String("event", eventType), zap.Error(err))
	}
}
