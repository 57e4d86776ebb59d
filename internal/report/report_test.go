package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow-dev/forgeflow/internal/forecast"
	"github.com/forgeflow-dev/forgeflow/internal/insight"
	"github.com/forgeflow-dev/forgeflow/internal/model"
)

func testReport(t *testing.T) Report {
	t.Helper()
	ledger := model.Ledger{
		model.NewTransaction(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "deposit", decimal.NewFromInt(100)),
		model.NewTransaction(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), "rent", decimal.NewFromInt(-50)),
	}
	p, err := forecast.Forecast(ledger)
	require.NoError(t, err)
	return Report{
		Insight:    insight.RuleBased(p.Points, insight.DefaultThresholds()),
		Projection: p,
	}
}

func TestPDF_Render(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF{}.Render(&buf, testReport(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "application/pdf", PDF{}.ContentType())
}

func TestText_Render(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text{}.Render(&buf, testReport(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, DefaultTitle, lines[0])
	assert.Equal(t, "Advanced Cashflow Analysis:", lines[2])
	assert.Contains(t, buf.String(), "[HIGH] Highest projected cash balance: $2300.00")
}

func TestJSON_Render(t *testing.T) {
	var buf bytes.Buffer
	r := testReport(t)
	r.Title = "Q1 outlook"
	require.NoError(t, JSON{}.Render(&buf, r))

	var doc struct {
		Title    string `json:"title"`
		Source   string `json:"source"`
		Insights []struct {
			Tag  string `json:"tag"`
			Text string `json:"text"`
		} `json:"insights"`
		Forecast struct {
			TotalDays   int    `json:"total_days"`
			AvgDailyNet string `json:"avg_daily_net"`
			Points      []struct {
				Date    string `json:"date"`
				Balance string `json:"forecasted_balance"`
			} `json:"points"`
		} `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "Q1 outlook", doc.Title)
	assert.Equal(t, "rules", doc.Source)
	assert.Equal(t, "header", doc.Insights[0].Tag)
	assert.Equal(t, 2, doc.Forecast.TotalDays)
	assert.Equal(t, "25", doc.Forecast.AvgDailyNet)
	require.Len(t, doc.Forecast.Points, forecast.HorizonDays)
	assert.Equal(t, "2025-01-03", doc.Forecast.Points[0].Date)
	assert.Equal(t, "2300", doc.Forecast.Points[89].Balance)
}

func TestJSON_NoProjection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON{}.Render(&buf, Report{Insight: insight.RuleBased(nil, insight.DefaultThresholds())}))
	assert.NotContains(t, buf.String(), "\"forecast\"")
}

func TestWriteForecastCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteForecastCSV(&buf, testReport(t).Projection.Points))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, forecast.HorizonDays+1)
	assert.Equal(t, ForecastHeader, lines[0])
	assert.Equal(t, "2025-01-03,75.00", lines[1])
	assert.Equal(t, "2025-04-02,2300.00", lines[90])
}

func TestForName(t *testing.T) {
	for name, want := range map[string]string{"pdf": ".pdf", "": ".pdf", "TEXT": ".txt", "json": ".json"} {
		r, err := ForName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, r.Extension(), name)
	}
	_, err := ForName("docx")
	assert.Error(t, err)
}
