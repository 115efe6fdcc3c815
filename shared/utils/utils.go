package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// MaxAmountScale is the number of fractional digits an amount may carry.
const MaxAmountScale = 2

// MaxAmount is the largest amount a statement column (NUMERIC(18,2)) holds.
var MaxAmount = decimal.RequireFromString("9999999999999999.99")

// GenerateID generates a unique ID with the given prefix
func GenerateID(prefix string) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 10

	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[num.Int64()]
	}

	return fmt.Sprintf("%s-%s", prefix, string(result))
}

// GenerateStatementID returns a "stm-" prefixed ULID. ULIDs sort by creation
// time, so ids issued by one process order the same way the history does.
func GenerateStatementID() string {
	return "stm-" + ulid.Make().String()
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidateAmount checks that amount is positive, no larger than MaxAmount and
// fits MaxAmountScale.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be greater than zero")
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("amount must not exceed %s", MaxAmount)
	}
	if !amount.Equal(amount.Truncate(MaxAmountScale)) {
		return fmt.Errorf("amount supports at most %d decimal places", MaxAmountScale)
	}
	return nil
}

// ValidateUserID validates the user ID format
func ValidateUserID(userID string) bool {
	return strings.HasPrefix(userID, "usr-")
}

// ValidateStatementID validates the statement ID format
func ValidateStatementID(statementID string) bool {
	return strings.HasPrefix(statementID, "stm-")
}
