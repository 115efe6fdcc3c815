package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/eaglebank/ledger/shared/utils"
	"go.uber.org/zap"
)

// UserWriter is satisfied by *repository.UserWriteRepository.
type UserWriter interface {
	Create(ctx context.Context, user *models.User) error
}

// UserViewCacher is satisfied by *repository.UserReadRepository.
type UserViewCacher interface {
	CacheUserView(ctx context.Context, view *models.UserView)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// UserCommandService writes user state to PostgreSQL and keeps the Redis
// read model up to date. Every new user is announced on the user events
// stream so the statement service learns the id.
type UserCommandService struct {
	writeRepo UserWriter
	readRepo  UserViewCacher
	publisher EventPublisher
	log       *zap.Logger
}

func NewUserCommandService(writeRepo UserWriter, readRepo UserViewCacher, publisher EventPublisher, log *zap.Logger) *UserCommandService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserCommandService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		publisher: publisher,
		log:       log,
	}
}

func (s *UserCommandService) CreateUser(ctx context.Context, cmd cqrs.CreateUserCommand) (*models.User, error) {
	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:           utils.GenerateID("usr"),
		Name:         strings.TrimSpace(cmd.Name),
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.writeRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.readRepo.CacheUserView(ctx, models.UserToView(user))
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserCreated, events.UserCreatedEvent{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}); err != nil {
		s.log.Warn("failed to publish user.created event", zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}
