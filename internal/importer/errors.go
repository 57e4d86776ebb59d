package importer

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for files the importer cannot read.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// RowError describes a ledger row whose field could not be parsed.
// Row is the 1-based line number in the file, header included.
type RowError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: invalid %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ColumnError reports a required column missing from the header row.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}
