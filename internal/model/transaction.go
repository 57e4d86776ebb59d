package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the display label of a transaction. It is always derived from the
// sign of the amount and never read from input.
type Kind string

const (
	KindIncome  Kind = "Income"
	KindExpense Kind = "Expense"
)

// KindOf returns Expense for negative amounts and Income otherwise.
func KindOf(amount decimal.Decimal) Kind {
	if amount.IsNegative() {
		return KindExpense
	}
	return KindIncome
}

// Transaction is one canonical ledger record.
type Transaction struct {
	Date        time.Time       // calendar day, UTC midnight
	Kind        Kind            //nolint:revive // plain field name is clearest
	Description string          //nolint:revive
	Amount      decimal.Decimal // negative = expense, positive = income
}

// NewTransaction builds a Transaction with a normalized date and a Kind
// derived from the amount.
func NewTransaction(date time.Time, description string, amount decimal.Decimal) Transaction {
	return Transaction{
		Date:        Day(date),
		Kind:        KindOf(amount),
		Description: description,
		Amount:      amount,
	}
}

// Ledger is a sequence of transactions in the order they were received.
type Ledger []Transaction

// Total returns the sum of all amounts.
func (l Ledger) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range l {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// Day truncates t to its calendar date at UTC midnight.
// 2025-01-03T17:45:00-05:00 -> 2025-01-03T00:00:00Z
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
