// Package balance derives a user's balance from their statement history.
// A balance is never stored; it is always folded from the records.
package balance

import (
	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

// Compute sums credits minus debits. An empty history is zero.
func Compute(statements []models.Statement) decimal.Decimal {
	total := decimal.Zero
	for i := range statements {
		total = total.Add(Signed(statements[i]))
	}
	return total
}

// Signed is the contribution of st to its owner's balance. Statements of an
// unknown type contribute nothing.
func Signed(st models.Statement) decimal.Decimal {
	switch st.Type.Sign() {
	case 1:
		return st.Amount
	case -1:
		return st.Amount.Neg()
	}
	return decimal.Zero
}

// Covers reports whether balance can absorb a debit of amount. An amount
// equal to the balance is covered.
func Covers(balance, amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(balance)
}
