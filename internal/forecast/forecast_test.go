package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow-dev/forgeflow/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func txn(day time.Time, desc, amount string) model.Transaction {
	return model.NewTransaction(day, desc, decimal.RequireFromString(amount))
}

func TestForecast_TwoTransactions(t *testing.T) {
	ledger := model.Ledger{
		txn(date(2025, 1, 1), "deposit", "100"),
		txn(date(2025, 1, 2), "rent", "-50"),
	}

	p, err := Forecast(ledger)
	require.NoError(t, err)

	assert.Equal(t, 2, p.TotalDays)
	assert.Equal(t, "25.00", p.AvgDailyNet.StringFixed(2))
	assert.Equal(t, "50.00", p.LastBalance.StringFixed(2))
	require.Len(t, p.Points, HorizonDays)
	assert.Equal(t, "75.00", p.Points[0].Balance.StringFixed(2))
	assert.Equal(t, "2300.00", p.Points[HorizonDays-1].Balance.StringFixed(2))
}

func TestForecast_DatesFollowLatestTransaction(t *testing.T) {
	ledger := model.Ledger{
		txn(date(2025, 2, 10), "b", "10"),
		txn(date(2025, 1, 5), "a", "10"),
		txn(date(2025, 1, 20), "c", "10"),
	}

	p, err := Forecast(ledger)
	require.NoError(t, err)

	assert.Equal(t, date(2025, 1, 5), p.Start)
	assert.Equal(t, date(2025, 2, 10), p.End)
	assert.Equal(t, 37, p.TotalDays)

	require.Len(t, p.Points, HorizonDays)
	assert.Equal(t, date(2025, 2, 11), p.Points[0].Date)
	for i := 1; i < len(p.Points); i++ {
		assert.Equal(t, p.Points[i-1].Date.AddDate(0, 0, 1), p.Points[i].Date, "point %d", i)
	}
	assert.Equal(t, date(2025, 5, 11), p.Points[HorizonDays-1].Date)
}

func TestForecast_UnsortedInputRunningBalance(t *testing.T) {
	ledger := model.Ledger{
		txn(date(2025, 1, 3), "third", "-30"),
		txn(date(2025, 1, 1), "first", "100"),
		txn(date(2025, 1, 2), "second", "-20"),
	}

	p, err := Forecast(ledger)
	require.NoError(t, err)

	require.Len(t, p.History, 3)
	assert.Equal(t, "100.00", p.History[0].Balance.StringFixed(2))
	assert.Equal(t, "80.00", p.History[1].Balance.StringFixed(2))
	assert.Equal(t, "50.00", p.History[2].Balance.StringFixed(2))
	assert.Equal(t, "50.00", p.LastBalance.StringFixed(2))
}

func TestForecast_SameDayTiesKeepInputOrder(t *testing.T) {
	ledger := model.Ledger{
		txn(date(2025, 1, 2), "late", "5"),
		txn(date(2025, 1, 1), "x", "10"),
		txn(date(2025, 1, 2), "later", "-3"),
	}

	hist := History(ledger)
	require.Len(t, hist, 3)
	assert.Equal(t, "15.00", hist[1].Balance.StringFixed(2))
	assert.Equal(t, "12.00", hist[2].Balance.StringFixed(2))
}

func TestForecast_SingleDay(t *testing.T) {
	ledger := model.Ledger{
		txn(date(2025, 1, 1), "a", "100"),
		txn(date(2025, 1, 1), "b", "-40"),
	}

	p, err := Forecast(ledger)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalDays)
	assert.Equal(t, "60.00", p.AvgDailyNet.StringFixed(2))
	assert.Equal(t, "5460.00", p.Points[HorizonDays-1].Balance.StringFixed(2))
}

func TestForecast_SingleTransaction(t *testing.T) {
	p, err := Forecast(model.Ledger{txn(date(2025, 6, 30), "only", "-12.34")})
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalDays)
	assert.Equal(t, date(2025, 7, 1), p.Points[0].Date)
	assert.Equal(t, "-24.68", p.Points[0].Balance.StringFixed(2))
}

func TestForecast_AllZeroIsFlat(t *testing.T) {
	ledger := model.Ledger{
		txn(date(2025, 1, 1), "a", "0"),
		txn(date(2025, 1, 9), "b", "0.00"),
	}

	p, err := Forecast(ledger)
	require.NoError(t, err)
	for _, pt := range p.Points {
		assert.True(t, pt.Balance.IsZero())
	}
}

func TestForecast_EmptyLedger(t *testing.T) {
	_, err := Forecast(nil)
	assert.ErrorIs(t, err, ErrEmptyLedger)

	_, err = Forecast(model.Ledger{})
	assert.ErrorIs(t, err, ErrEmptyLedger)
}

func TestForecast_MissingDate(t *testing.T) {
	_, err := Forecast(model.Ledger{{Description: "undated", Amount: decimal.NewFromInt(1)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction 1")
}

func TestForecast_DoesNotMutateInput(t *testing.T) {
	ledger := model.Ledger{
		txn(date(2025, 1, 3), "c", "3"),
		txn(date(2025, 1, 1), "a", "1"),
	}
	before := append(model.Ledger(nil), ledger...)

	_, err := Forecast(ledger)
	require.NoError(t, err)
	assert.Equal(t, before, ledger)
}

func TestForecast_Idempotent(t *testing.T) {
	ledger := model.Ledger{
		txn(date(2025, 1, 3), "c", "-7.77"),
		txn(date(2025, 1, 1), "a", "1000"),
		txn(date(2025, 1, 12), "b", "-120.50"),
	}

	first, err := Forecast(ledger)
	require.NoError(t, err)
	second, err := Forecast(ledger)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestForecast_ExtremeAmounts(t *testing.T) {
	ledger := model.Ledger{
		txn(date(2025, 1, 1), "dust", "0.000000000000000001"),
		txn(date(2025, 1, 2), "windfall", "999999999999999999"),
	}

	done := make(chan struct{})
	var p *Projection
	var err error
	go func() {
		defer close(done)
		p, err = Forecast(ledger)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("forecast did not finish")
	}

	require.NoError(t, err)
	require.Len(t, p.Points, HorizonDays)
	assert.Equal(t, "999999999999999999.000000000000000001", p.LastBalance.String())
	assert.True(t, p.Points[HorizonDays-1].Balance.GreaterThan(p.LastBalance))
}
