package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/forgeflow-dev/forgeflow/internal/model"
)

// ForecastHeader is the CSV header written by WriteForecastCSV.
const ForecastHeader = "date,forecasted_balance"

const dateFormat = "2006-01-02"

// WriteForecastCSV writes one row per forecast point (including header).
func WriteForecastCSV(w io.Writer, points []model.ForecastPoint) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(ForecastHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, p := range points {
		if err := cw.Write([]string{p.Date.Format(dateFormat), p.Balance.StringFixed(2)}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
