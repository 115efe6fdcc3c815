package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "integer", amount: "100"},
		{name: "smallest unit", amount: "0.01"},
		{name: "largest storable", amount: "9999999999999999.99"},
		{name: "trailing zeros", amount: "12.500"},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-5", wantErr: true},
		{name: "too many decimals", amount: "1.001", wantErr: true},
		{name: "above largest storable", amount: "10000000000000000", wantErr: true},
		{name: "far above largest storable", amount: "1e17", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for %s", tt.amount)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error for %s: %v", tt.amount, err)
			}
		})
	}
}

func TestValidateIDs(t *testing.T) {
	if !ValidateUserID(GenerateID("usr")) {
		t.Errorf("expected generated user id to validate")
	}
	if ValidateUserID("stm-001") || ValidateUserID("") {
		t.Errorf("expected non usr- ids to be rejected")
	}
	if ValidateStatementID("usr-001") || ValidateStatementID("") {
		t.Errorf("expected non stm- ids to be rejected")
	}
}

func TestGenerateStatementID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateStatementID()
		if !ValidateStatementID(id) {
			t.Fatalf("expected stm- prefix, got %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("securepass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("securepass123", hash) {
		t.Errorf("expected password to match its hash")
	}
	if CheckPassword("wrongpass", hash) {
		t.Errorf("expected wrong password to be rejected")
	}
}
