package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry records one processed input.
type Entry struct {
	Timestamp     time.Time
	RunID         string
	Source        string
	Format        string
	Transactions  int
	DroppedLines  int
	InsightSource string
	Report        string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,run_id,source,format,transactions,dropped_lines,insight_source,report"

const (
	numFields = 8
	logDir    = "logs"
	logFile   = "logs/run-log.csv"

	colTimestamp     = 0
	colRunID         = 1
	colSource        = 2
	colFormat        = 3
	colTransactions  = 4
	colDroppedLines  = 5
	colInsightSource = 6
	colReport        = 7
)

// Path returns the run log location under root.
func Path(root string) string {
	return filepath.Join(root, logFile)
}

func marshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colSource] = e.Source
	row[colFormat] = e.Format
	row[colTransactions] = strconv.Itoa(e.Transactions)
	row[colDroppedLines] = strconv.Itoa(e.DroppedLines)
	row[colInsightSource] = e.InsightSource
	row[colReport] = e.Report
	return row
}

func unmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	txns, err := strconv.Atoi(record[colTransactions])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing transactions %q: %w", record[colTransactions], err)
	}
	dropped, err := strconv.Atoi(record[colDroppedLines])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing dropped_lines %q: %w", record[colDroppedLines], err)
	}

	return Entry{
		Timestamp:     ts,
		RunID:         record[colRunID],
		Source:        record[colSource],
		Format:        record[colFormat],
		Transactions:  txns,
		DroppedLines:  dropped,
		InsightSource: record[colInsightSource],
		Report:        record[colReport],
	}, nil
}

// Append writes entries to <root>/logs/run-log.csv, creating the file and
// header if needed.
func Append(root string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(root, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(root)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(marshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/run-log.csv.
// Returns nil if the file does not exist.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := unmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
