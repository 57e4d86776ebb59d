package insight

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/forgeflow-dev/forgeflow/internal/forecast"
	"github.com/forgeflow-dev/forgeflow/internal/model"
)

// weekDays is the window size for the weekly trend.
const weekDays = 7

// Summary holds the statistics the insight rules are evaluated against.
// It is also what a narrator receives.
type Summary struct {
	Start          time.Time
	End            time.Time
	MinBalance     decimal.Decimal
	MaxBalance     decimal.Decimal
	StartBalance   decimal.Decimal
	EndBalance     decimal.Decimal
	AvgDailyChange decimal.Decimal // (EndBalance - StartBalance) / forecast.HorizonDays
	BurnRate       decimal.Decimal // |AvgDailyChange|
	WeeklyTrend    decimal.Decimal
	FirstNegative  time.Time // zero when the balance never goes negative
	Points         int
}

// Change returns EndBalance - StartBalance.
func (s Summary) Change() decimal.Decimal {
	return s.EndBalance.Sub(s.StartBalance)
}

// Summarize computes the rule inputs for a forecast. An empty forecast
// yields a zero Summary.
func Summarize(points []model.ForecastPoint) Summary {
	if len(points) == 0 {
		return Summary{}
	}

	first, last := points[0], points[len(points)-1]
	s := Summary{
		Start:        first.Date,
		End:          last.Date,
		MinBalance:   first.Balance,
		MaxBalance:   first.Balance,
		StartBalance: first.Balance,
		EndBalance:   last.Balance,
		Points:       len(points),
	}
	for _, p := range points {
		if p.Balance.LessThan(s.MinBalance) {
			s.MinBalance = p.Balance
		}
		if p.Balance.GreaterThan(s.MaxBalance) {
			s.MaxBalance = p.Balance
		}
		if s.FirstNegative.IsZero() && p.Balance.IsNegative() {
			s.FirstNegative = p.Date
		}
	}

	s.AvgDailyChange = s.Change().Div(decimal.NewFromInt(forecast.HorizonDays))
	s.BurnRate = s.AvgDailyChange.Abs()
	s.WeeklyTrend = WeeklyTrend(points)
	return s
}

// WeeklyTrend groups points into consecutive 7-day windows starting at the
// first point, averages each window, and returns the mean change between
// consecutive window averages. A trailing window shorter than 7 points is
// averaged over the points it has. Fewer than two windows yields zero.
func WeeklyTrend(points []model.ForecastPoint) decimal.Decimal {
	var means []decimal.Decimal
	for start := 0; start < len(points); start += weekDays {
		end := min(start+weekDays, len(points))
		sum := decimal.Zero
		for _, p := range points[start:end] {
			sum = sum.Add(p.Balance)
		}
		means = append(means, sum.Div(decimal.NewFromInt(int64(end-start))))
	}
	if len(means) < 2 {
		return decimal.Zero
	}

	total := decimal.Zero
	for i := 1; i < len(means); i++ {
		total = total.Add(means[i].Sub(means[i-1]))
	}
	return total.Div(decimal.NewFromInt(int64(len(means) - 1)))
}
