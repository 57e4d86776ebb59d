package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/forgeflow-dev/forgeflow/internal/model"
)

// CSVParser parses tabular ledger exports with at least Date and Amount
// columns. Columns are matched by header name, case-insensitively.
type CSVParser struct{}

const (
	colDate        = "date"
	colAmount      = "amount"
	colDescription = "description"
)

var errUnrecognizedDate = errors.New("unrecognized date format")

// dateFormats are tried in order for the Date column.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2 2006",
	time.RFC3339,
}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads a ledger CSV. A header-only or empty file yields a nil ledger.
func (p *CSVParser) Parse(r io.Reader) (model.Ledger, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}
	cr.FieldsPerRecord = len(header)

	var ledger model.Ledger
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ledger CSV: %w", err)
		}
		row, _ := cr.FieldPos(0)
		txn, err := parseLedgerRow(rec, cols, row)
		if err != nil {
			return nil, err
		}
		ledger = append(ledger, txn)
	}
	return ledger, nil
}

type columns struct {
	date   int
	amount int
	desc   int // -1 when absent
}

func indexColumns(header []string) (columns, error) {
	cols := columns{date: -1, amount: -1, desc: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case colDate:
			cols.date = i
		case colAmount:
			cols.amount = i
		case colDescription:
			cols.desc = i
		}
	}
	if cols.date < 0 {
		return cols, &ColumnError{Column: "Date"}
	}
	if cols.amount < 0 {
		return cols, &ColumnError{Column: "Amount"}
	}
	return cols, nil
}

func parseLedgerRow(rec []string, cols columns, row int) (model.Transaction, error) {
	date, err := ParseDate(rec[cols.date])
	if err != nil {
		return model.Transaction{}, &RowError{Row: row, Field: "Date", Value: rec[cols.date], Err: err}
	}

	amount, err := ParseAmount(rec[cols.amount])
	if err != nil {
		return model.Transaction{}, &RowError{Row: row, Field: "Amount", Value: rec[cols.amount], Err: err}
	}

	desc := ""
	if cols.desc >= 0 {
		desc = strings.TrimSpace(rec[cols.desc])
	}
	return model.NewTransaction(date, desc, amount), nil
}

// ParseDate parses a ledger date in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, errUnrecognizedDate
}
