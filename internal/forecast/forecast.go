// Package forecast projects a linear cash balance from a transaction ledger.
//
// The projection is intentionally simple: the average daily net flow over
// the ledger's calendar span is extrapolated from the last running balance
// for a fixed horizon. Recent activity is not weighted over older activity.
package forecast

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/forgeflow-dev/forgeflow/internal/model"
)

// HorizonDays is the number of days projected past the last ledger date.
const HorizonDays = 90

// ErrEmptyLedger is returned when there is nothing to forecast from.
var ErrEmptyLedger = errors.New("empty ledger: at least one dated transaction is required")

// Projection is the result of a forecast run.
type Projection struct {
	History     []model.BalancePoint  // one per transaction, chronological
	Points      []model.ForecastPoint // HorizonDays entries
	Start       time.Time             // earliest ledger date
	End         time.Time             // latest ledger date
	TotalDays   int                   // calendar days spanned by the ledger, inclusive
	Net         decimal.Decimal       // sum of all amounts
	AvgDailyNet decimal.Decimal
	LastBalance decimal.Decimal
}

// History sorts a copy of the ledger by date and returns the running
// balance after each transaction. Same-day transactions keep their input
// order, so the last one listed for a day determines that day's balance.
func History(ledger model.Ledger) []model.BalancePoint {
	sorted := sortedCopy(ledger)
	points := make([]model.BalancePoint, len(sorted))
	running := decimal.Zero
	for i, t := range sorted {
		running = running.Add(t.Amount)
		points[i] = model.BalancePoint{Date: model.Day(t.Date), Balance: running}
	}
	return points
}

// Forecast computes the balance history and the HorizonDays projection.
// The input ledger is not modified.
func Forecast(ledger model.Ledger) (*Projection, error) {
	if len(ledger) == 0 {
		return nil, ErrEmptyLedger
	}
	for i, t := range ledger {
		if t.Date.IsZero() {
			return nil, fmt.Errorf("transaction %d (%q): missing date", i+1, t.Description)
		}
	}

	start, end := dateRange(ledger)
	totalDays := daysBetween(start, end) + 1

	net := ledger.Total()
	avg := net.Div(decimal.NewFromInt(int64(totalDays)))

	history := History(ledger)
	last := history[len(history)-1].Balance

	points := make([]model.ForecastPoint, HorizonDays)
	for i := range points {
		step := decimal.NewFromInt(int64(i + 1))
		points[i] = model.ForecastPoint{
			Date:    end.AddDate(0, 0, i+1),
			Balance: last.Add(avg.Mul(step)),
		}
	}

	return &Projection{
		History:     history,
		Points:      points,
		Start:       start,
		End:         end,
		TotalDays:   totalDays,
		Net:         net,
		AvgDailyNet: avg,
		LastBalance: last,
	}, nil
}

func sortedCopy(ledger model.Ledger) model.Ledger {
	sorted := make(model.Ledger, len(ledger))
	copy(sorted, ledger)
	sort.SliceStable(sorted, func(i, j int) bool {
		return model.Day(sorted[i].Date).Before(model.Day(sorted[j].Date))
	})
	return sorted
}

// dateRange scans every transaction for the extremes rather than relying
// on input order.
func dateRange(ledger model.Ledger) (start, end time.Time) {
	start = model.Day(ledger[0].Date)
	end = start
	for _, t := range ledger[1:] {
		d := model.Day(t.Date)
		if d.Before(start) {
			start = d
		}
		if d.After(end) {
			end = d
		}
	}
	return start, end
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
