package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalancePoint is the running balance after a ledger transaction.
type BalancePoint struct {
	Date    time.Time
	Balance decimal.Decimal
}

// ForecastPoint is a projected balance for one day of the forecast horizon.
type ForecastPoint struct {
	Date    time.Time
	Balance decimal.Decimal
}
