package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/forgeflow-dev/forgeflow/internal/model"
)

// TextParser turns loosely structured OCR text into a ledger. Lines whose
// last token is not an amount are dropped without error.
type TextParser struct {
	// Now supplies the processing date. OCR text carries no reliable date,
	// so every recovered transaction is dated today. Defaults to time.Now.
	Now func() time.Time
}

// Format returns the parser name.
func (p *TextParser) Format() string { return "text" }

// Parse reads all of r and returns the recovered transactions.
func (p *TextParser) Parse(r io.Reader) (model.Ledger, error) {
	ledger, _, err := p.ParseCounted(r)
	return ledger, err
}

// ParseCounted is Parse plus the number of dropped lines.
func (p *TextParser) ParseCounted(r io.Reader) (model.Ledger, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("reading text: %w", err)
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	ledger, dropped := ParseText(string(data), now())
	return ledger, dropped, nil
}

// ParseText parses raw OCR text line by line. It returns the recovered
// ledger and the number of non-empty lines that were dropped.
func ParseText(raw string, today time.Time) (model.Ledger, int) {
	var ledger model.Ledger
	dropped := 0
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		txn, ok := parseTextLine(fields, today)
		if !ok {
			dropped++
			continue
		}
		ledger = append(ledger, txn)
	}
	return ledger, dropped
}

func parseTextLine(fields []string, today time.Time) (model.Transaction, bool) {
	if len(fields) < 2 {
		return model.Transaction{}, false
	}
	last := len(fields) - 1
	amount, err := ParseAmount(fields[last])
	if err != nil {
		return model.Transaction{}, false
	}
	return model.NewTransaction(today, strings.Join(fields[:last], " "), amount), true
}
