package narrative

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/forgeflow-dev/forgeflow/internal/insight"
)

// Options configures the narrative backend chain.
type Options struct {
	Enabled         bool
	APIKey          string
	Model           string
	RatePerMinute   int
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// New assembles Gemini -> rate limit -> circuit breaker. It returns a nil
// narrator when the feature is disabled or no API key is available, which
// leaves the insight engine on its rule-based path.
func New(ctx context.Context, opts Options, log zerolog.Logger) (insight.Narrator, error) {
	if !opts.Enabled {
		log.Debug().Msg("Narrative insights disabled")
		return nil, nil
	}
	if opts.APIKey == "" {
		log.Warn().Msg("Narrative insights enabled but no API key configured - using rule-based insights")
		return nil, nil
	}

	gemini, err := NewGemini(ctx, opts.APIKey, opts.Model)
	if err != nil {
		return nil, fmt.Errorf("narrative backend: %w", err)
	}
	log.Info().Str("model", gemini.model).Msg("Narrative insights enabled")

	limited := NewLimited(gemini, opts.RatePerMinute)
	return NewBreaker(limited, opts.BreakerFailures, opts.BreakerCooldown), nil
}
