// Package xerrors holds the error taxonomy shared by every service.
// Callers compare with errors.Is; handlers map each sentinel to a status code.
package xerrors

import (
	"errors"
	"fmt"
)

// Ledger
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrStatementNotFound = errors.New("statement not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidOperation  = errors.New("invalid operation type")
	ErrSameUser          = errors.New("sender and receiver must differ")
)

// Registration / Login
var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// ErrPersistence matches every PersistenceError via errors.Is.
var ErrPersistence = errors.New("persistence failure")

// PersistenceError wraps a backing-store failure. It is never a domain rule
// violation and may be retried by the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Persistence wraps err as a PersistenceError for op. A nil err stays nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
