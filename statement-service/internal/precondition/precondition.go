// Package precondition holds the checks every statement operation runs
// before touching the store.
package precondition

import (
	"context"

	"github.com/eaglebank/ledger/shared/utils"
	"github.com/eaglebank/ledger/shared/xerrors"
	"github.com/eaglebank/ledger/statement-service/internal/repository"
)

// RequireUser fails with xerrors.ErrUserNotFound when userID is not
// registered. Malformed ids fail without a directory lookup. Directory
// failures are returned as persistence errors.
func RequireUser(ctx context.Context, users repository.UserDirectory, userID string) error {
	if !utils.ValidateUserID(userID) {
		return xerrors.ErrUserNotFound
	}
	exists, err := users.Exists(ctx, userID)
	if err != nil {
		return xerrors.Persistence("lookup user", err)
	}
	if !exists {
		return xerrors.ErrUserNotFound
	}
	return nil
}
