package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/forgeflow-dev/forgeflow/internal/model"
)

// DefaultNarrativeTimeout bounds a narrator call when the caller passes no
// timeout.
const DefaultNarrativeTimeout = 10 * time.Second

var errBlankNarrative = errors.New("narrator returned no text")

// Narrator produces a free-text narrative for a forecast summary.
// Implementations may block on the network; they must honour ctx.
type Narrator interface {
	Narrate(ctx context.Context, s Summary) (string, error)
}

// NarratorFunc adapts a function to Narrator.
type NarratorFunc func(ctx context.Context, s Summary) (string, error)

// Narrate calls f.
func (f NarratorFunc) Narrate(ctx context.Context, s Summary) (string, error) {
	return f(ctx, s)
}

// Engine derives insights, preferring the narrator when one is configured
// and falling back to the rule ladder whenever it fails.
type Engine struct {
	thresholds Thresholds
	narrator   Narrator
	timeout    time.Duration
	log        zerolog.Logger
}

// NewEngine creates an Engine. narrator may be nil to disable the
// narrative path. A non-positive timeout uses DefaultNarrativeTimeout.
func NewEngine(thresholds Thresholds, narrator Narrator, timeout time.Duration, log zerolog.Logger) *Engine {
	if timeout <= 0 {
		timeout = DefaultNarrativeTimeout
	}
	return &Engine{
		thresholds: thresholds,
		narrator:   narrator,
		timeout:    timeout,
		log:        log,
	}
}

// Derive returns the insights for a forecast. It never fails: any
// narrator error, timeout, panic or empty reply yields the rule-based
// insights.
func (e *Engine) Derive(ctx context.Context, points []model.ForecastPoint) Insight {
	if e.narrator == nil {
		return RuleBased(points, e.thresholds)
	}

	text, err := e.narrate(ctx, Summarize(points))
	if err == nil {
		if in := narrativeInsight(text); len(in.Lines) > 0 {
			return in
		}
		err = errBlankNarrative
	}

	e.log.Warn().Err(err).Dur("timeout", e.timeout).Msg("Narrative unavailable, using rule-based insights")
	return RuleBased(points, e.thresholds)
}

func (e *Engine) narrate(ctx context.Context, s Summary) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	// Buffered so the goroutine can always deliver and exit after a timeout.
	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("narrator panic: %v", r)}
			}
		}()
		text, err := e.narrator.Narrate(ctx, s)
		ch <- reply{text: text, err: err}
	}()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("narrator: %w", ctx.Err())
	}
}

func narrativeInsight(text string) Insight {
	in := Insight{Source: SourceNarrative}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			in.add(TagNarrative, line)
		}
	}
	return in
}
