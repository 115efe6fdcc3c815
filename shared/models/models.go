package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType is the kind of a statement. It decides the sign a statement
// carries when folded into a balance.
type OperationType string

const (
	Deposit          OperationType = "deposit"
	Withdraw         OperationType = "withdraw"
	TransferSent     OperationType = "transfer_sent"
	TransferReceived OperationType = "transfer_received"
)

// IsDebit reports whether the operation decreases balance.
func (t OperationType) IsDebit() bool {
	return t == Withdraw || t == TransferSent
}

// IsCredit reports whether the operation increases balance.
func (t OperationType) IsCredit() bool {
	return t == Deposit || t == TransferReceived
}

// Sign is -1 for debits, 1 for credits and 0 for unknown types.
func (t OperationType) Sign() int {
	switch {
	case t.IsDebit():
		return -1
	case t.IsCredit():
		return 1
	}
	return 0
}

// Valid reports whether t is one of the known operation types.
func (t OperationType) Valid() bool {
	return t.IsDebit() || t.IsCredit()
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Statement is one immutable monetary operation owned by UserID. Transfer
// records carry the counterparty in SenderID (the sender on the receiver's
// record, the receiver on the sender's record).
type Statement struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	SenderID    string          `json:"sender_id,omitempty"`
	Type        OperationType   `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}
