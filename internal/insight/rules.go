package insight

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/forgeflow-dev/forgeflow/internal/model"
)

const dateFormat = "2006-01-02"

// Thresholds are the cut-offs of the rule ladder.
type Thresholds struct {
	LowBalance   decimal.Decimal // minimum balance under this is a liquidity warning
	Trend        decimal.Decimal // weekly trend magnitude that counts as a trend
	SurplusDelta decimal.Decimal // horizon change magnitude that counts as surplus or depletion
}

// DefaultThresholds returns the standard ladder: 5000 / 50 / 5000.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowBalance:   decimal.NewFromInt(5000),
		Trend:        decimal.NewFromInt(50),
		SurplusDelta: decimal.NewFromInt(5000),
	}
}

// RuleBased derives insights from a forecast using only the threshold
// ladder. It has no external dependencies and always returns the header,
// balance-level, Low, High, trend, BurnRate and Advice lines.
func RuleBased(points []model.ForecastPoint, th Thresholds) Insight {
	s := Summarize(points)
	in := Insight{Source: SourceRules}

	in.add(TagHeader, "Advanced Cashflow Analysis:")
	in.add(TagHeader, fmt.Sprintf("Forecast range: %s to %s", formatDate(s.Start), formatDate(s.End)))

	switch {
	case s.MinBalance.IsNegative():
		in.add(TagCritical, fmt.Sprintf("[CRITICAL] Cash is expected to drop below zero on %s. Immediate financial action required.", formatDate(s.FirstNegative)))
	case s.MinBalance.LessThan(th.LowBalance):
		in.add(TagWarning, fmt.Sprintf("[WARNING] Projected minimum cash balance is under %s, indicating potential liquidity stress.", formatThreshold(th.LowBalance)))
	default:
		in.add(TagOk, "[OK] Adequate cash levels projected across the forecast period.")
	}

	in.add(TagLow, "[LOW] Lowest projected cash balance: $"+s.MinBalance.StringFixed(2))
	in.add(TagHigh, "[HIGH] Highest projected cash balance: $"+s.MaxBalance.StringFixed(2))

	switch {
	case s.WeeklyTrend.LessThan(th.Trend.Neg()):
		in.add(TagTrendWarning, "[WARNING] Negative weekly trend detected. Evaluate expense reduction opportunities or revenue acceleration strategies.")
	case s.WeeklyTrend.GreaterThan(th.Trend):
		in.add(TagTrendPositive, "[TREND] Positive weekly cashflow trend observed. Evaluate strategic investment or savings opportunities.")
	default:
		in.add(TagTrendStable, "[STABLE] Cashflow is steady week-over-week, indicating stability.")
	}

	in.add(TagBurnRate, "[NOTE] Estimated daily cash burn rate: $"+s.BurnRate.StringFixed(2))

	switch change := s.Change(); {
	case change.GreaterThan(th.SurplusDelta):
		in.add(TagSurplus, "[IDEA] Significant cash surplus projected. Explore opportunities for investment, debt repayment, or expansion.")
	case change.LessThan(th.SurplusDelta.Neg()):
		in.add(TagDepletion, "[CAUTION] Significant cash depletion projected. Immediate review of cash management strategies recommended.")
	}

	in.add(TagAdvice, "[ADVICE] Continual weekly cashflow review is strongly advised to proactively manage financial health.")
	return in
}

func formatDate(t time.Time) string {
	return t.Format(dateFormat)
}

// formatThreshold renders a threshold with grouping, e.g. "$5,000" or
// "$1,234.50".
func formatThreshold(d decimal.Decimal) string {
	printer := message.NewPrinter(language.English)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	fixed := d.Abs().Round(2)
	whole := fixed.Truncate(0)
	out := sign + printer.Sprintf("$%d", whole.IntPart())
	if !fixed.Equal(whole) {
		out += strings.TrimPrefix(fixed.Sub(whole).StringFixed(2), "0")
	}
	return out
}
