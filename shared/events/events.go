package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	UserCreated = "user.created"

	StatementCreated = "statement.created"
	TransferCreated  = "transfer.created"
)

// Stream names
const (
	UserEventsStream      = "user.events"
	StatementEventsStream = "statement.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Decode re-reads the untyped Data payload into out.
func (e Event) Decode(out any) error {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to re-encode %s payload: %w", e.Type, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", e.Type, err)
	}
	return nil
}

// User events
type UserCreatedEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Statement events. Amounts travel as decimal strings.
type StatementCreatedEvent struct {
	StatementID string `json:"statementId"`
	UserID      string `json:"userId"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
}

type TransferCreatedEvent struct {
	SentStatementID     string `json:"sentStatementId"`
	ReceivedStatementID string `json:"receivedStatementId"`
	SenderID            string `json:"senderId"`
	ReceiverID          string `json:"receiverId"`
	Amount              string `json:"amount"`
}
