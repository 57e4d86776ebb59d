// Package analysis wires import, OCR, forecasting and insight derivation
// into one run over an input file.
package analysis

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/forgeflow-dev/forgeflow/internal/forecast"
	"github.com/forgeflow-dev/forgeflow/internal/importer"
	"github.com/forgeflow-dev/forgeflow/internal/insight"
	"github.com/forgeflow-dev/forgeflow/internal/metrics"
	"github.com/forgeflow-dev/forgeflow/internal/model"
	"github.com/forgeflow-dev/forgeflow/internal/ocr"
)

// ErrOCRUnavailable is returned for image inputs when no recognizer is configured.
var ErrOCRUnavailable = errors.New("image input requires OCR, which is not configured")

// Result is the outcome of one analysis run.
type Result struct {
	RunID      string
	Source     string // base name of the input file
	Format     string
	Ledger     model.Ledger
	Dropped    int // text lines skipped for lack of an amount
	Projection *forecast.Projection
	Insight    insight.Insight
}

// Service runs analyses. It holds no per-run state and is safe for
// concurrent use.
type Service struct {
	registry   *importer.Registry
	recognizer ocr.Recognizer
	engine     *insight.Engine
	metrics    *metrics.Registry
	log        zerolog.Logger
}

// NewService creates a Service. recognizer and m may be nil.
func NewService(registry *importer.Registry, recognizer ocr.Recognizer, engine *insight.Engine, m *metrics.Registry, log zerolog.Logger) *Service {
	return &Service{
		registry:   registry,
		recognizer: recognizer,
		engine:     engine,
		metrics:    m,
		log:        log,
	}
}

// Analyze imports the file at path, forecasts the balance and derives
// insights.
func (s *Service) Analyze(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:  uuid.NewString(),
		Source: filepath.Base(path),
	}
	log := s.log.With().Str("run_id", res.RunID).Str("source", res.Source).Logger()

	err := s.run(ctx, path, res)
	s.observe(res, err, time.Since(start))
	if err != nil {
		log.Warn().Err(err).Str("format", res.Format).Msg("Analysis failed")
		return nil, err
	}

	log.Info().
		Str("format", res.Format).
		Int("transactions", len(res.Ledger)).
		Int("dropped_lines", res.Dropped).
		Str("insight_source", string(res.Insight.Source)).
		Dur("elapsed", time.Since(start)).
		Msg("Analysis complete")
	return res, nil
}

func (s *Service) run(ctx context.Context, path string, res *Result) error {
	format, err := importer.FormatForPath(path)
	if err != nil {
		return err
	}
	res.Format = format

	ledger, dropped, err := s.load(ctx, path, format)
	if err != nil {
		return err
	}
	res.Ledger, res.Dropped = ledger, dropped

	proj, err := forecast.Forecast(ledger)
	if err != nil {
		return fmt.Errorf("forecasting %s: %w", res.Source, err)
	}
	res.Projection = proj
	res.Insight = s.engine.Derive(ctx, proj.Points)
	return nil
}

func (s *Service) load(ctx context.Context, path, format string) (model.Ledger, int, error) {
	if format == importer.FormatImage {
		return s.loadImage(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return s.parse(f, format, filepath.Base(path))
}

func (s *Service) loadImage(ctx context.Context, path string) (model.Ledger, int, error) {
	if s.recognizer == nil {
		return nil, 0, ErrOCRUnavailable
	}
	text, err := s.recognizer.Recognize(ctx, path)
	if err != nil {
		return nil, 0, fmt.Errorf("ocr: %w", err)
	}
	return s.parse(strings.NewReader(text), "text", filepath.Base(path))
}

func (s *Service) parse(r io.Reader, format, name string) (model.Ledger, int, error) {
	p := s.registry.Get(format)
	if p == nil {
		return nil, 0, fmt.Errorf("%w: no parser for %s", importer.ErrUnsupportedFormat, format)
	}
	if dc, ok := p.(importer.DropCounter); ok {
		ledger, dropped, err := dc.ParseCounted(r)
		if err != nil {
			return nil, 0, fmt.Errorf("parsing %s: %w", name, err)
		}
		return ledger, dropped, nil
	}
	ledger, err := p.Parse(r)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	return ledger, 0, nil
}

func (s *Service) observe(res *Result, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	format := res.Format
	if format == "" {
		format = "unknown"
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.Analyses.WithLabelValues(format, result).Inc()
	s.metrics.Duration.Observe(elapsed.Seconds())
	s.metrics.DroppedLines.Add(float64(res.Dropped))
	if err == nil {
		s.metrics.Transactions.Observe(float64(len(res.Ledger)))
		s.metrics.Insights.WithLabelValues(string(res.Insight.Source)).Inc()
	}
}

// IsUserError reports whether err stems from the input file rather than
// from the service, so callers can answer with a client error.
func IsUserError(err error) bool {
	var (
		rowErr   *importer.RowError
		colErr   *importer.ColumnError
		parseErr *csv.ParseError
	)
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, forecast.ErrEmptyLedger),
		errors.As(err, &rowErr),
		errors.As(err, &colErr),
		errors.As(err, &parseErr):
		return true
	}
	return false
}
