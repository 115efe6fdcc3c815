package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserView is the read projection of a user. It never exposes PasswordHash.
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatementView is the read projection of a statement.
// UserID is kept for the ownership check but never serialised.
type StatementView struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	SenderID    string          `json:"sender_id,omitempty"`
	Type        OperationType   `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BalanceView is the derived balance of a user together with the
// history it was folded from, oldest first.
type BalanceView struct {
	Balance   decimal.Decimal `json:"balance"`
	Statement []StatementView `json:"statement"`
}

func UserToView(u *User) *UserView {
	return &UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func StatementToView(s *Statement) *StatementView {
	return &StatementView{
		ID:          s.ID,
		UserID:      s.UserID,
		SenderID:    s.SenderID,
		Type:        s.Type,
		Amount:      s.Amount,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}
