package query

import (
	"context"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
)

type UserReader interface {
	GetByID(ctx context.Context, id string) (*models.UserView, error)
}

// UserQueryService reads user views from the Redis cache (with a Postgres fallback).
type UserQueryService struct {
	readRepo UserReader
}

func NewUserQueryService(readRepo UserReader) *UserQueryService {
	return &UserQueryService{readRepo: readRepo}
}

// ShowUserProfile returns the profile of the authenticated user.
func (s *UserQueryService) ShowUserProfile(ctx context.Context, q cqrs.ShowUserProfileQuery) (*models.UserView, error) {
	return s.readRepo.GetByID(ctx, q.UserID)
}
