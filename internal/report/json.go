package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/forgeflow-dev/forgeflow/internal/insight"
)

// JSON renders insights and, when present, the forecast points.
type JSON struct{}

type jsonPoint struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"forecasted_balance"`
}

type jsonForecast struct {
	TotalDays   int             `json:"total_days"`
	AvgDailyNet decimal.Decimal `json:"avg_daily_net"`
	LastBalance decimal.Decimal `json:"last_balance"`
	Points      []jsonPoint     `json:"points"`
}

type jsonReport struct {
	Title    string         `json:"title"`
	Source   insight.Source `json:"source"`
	Insights []insight.Line `json:"insights"`
	Forecast *jsonForecast  `json:"forecast,omitempty"`
}

// Render writes the JSON document to w.
func (JSON) Render(w io.Writer, r Report) error {
	doc := jsonReport{
		Title:    r.title(),
		Source:   r.Insight.Source,
		Insights: r.Insight.Lines,
	}
	if p := r.Projection; p != nil {
		f := &jsonForecast{
			TotalDays:   p.TotalDays,
			AvgDailyNet: p.AvgDailyNet.Round(2),
			LastBalance: p.LastBalance,
			Points:      make([]jsonPoint, len(p.Points)),
		}
		for i, pt := range p.Points {
			f.Points[i] = jsonPoint{Date: pt.Date.Format(dateFormat), Balance: pt.Balance.Round(2)}
		}
		doc.Forecast = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing json report: %w", err)
	}
	return nil
}

// ContentType returns the MIME type.
func (JSON) ContentType() string { return "application/json" }

// Extension returns the file extension.
func (JSON) Extension() string { return ".json" }
