package cqrs

import (
	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

type CreateUserCommand struct {
	Name     string
	Email    string
	Password string
}

// CreateStatementCommand records a deposit or a withdraw for UserID.
type CreateStatementCommand struct {
	UserID      string
	Type        models.OperationType
	Amount      decimal.Decimal
	Description string
}

// CreateTransferCommand moves Amount from SenderID to ReceiverID as a pair
// of statements written together.
type CreateTransferCommand struct {
	SenderID    string
	ReceiverID  string
	Amount      decimal.Decimal
	Description string
}

type LoginCommand struct {
	Email    string
	Password string
}

type RefreshTokenCommand struct {
	Token string
}
