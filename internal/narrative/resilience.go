package narrative

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/forgeflow-dev/forgeflow/internal/insight"
)

// Breaker short-circuits a failing narrator so requests fall back to the
// rule-based insights without waiting on a dead backend.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker
	next insight.Narrator
}

// NewBreaker trips after maxFailures consecutive failures and probes the
// backend again after cooldown.
func NewBreaker(next insight.Narrator, maxFailures uint32, cooldown time.Duration) *Breaker {
	if maxFailures == 0 {
		maxFailures = 3
	}
	st := gobreaker.Settings{Name: "narrative"}
	st.MaxRequests = 1
	st.Interval = 60 * time.Second
	st.Timeout = cooldown
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= maxFailures
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(st), next: next}
}

// Narrate calls the wrapped narrator unless the breaker is open.
func (b *Breaker) Narrate(ctx context.Context, s insight.Summary) (string, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Narrate(ctx, s)
	})
	if err != nil {
		return "", fmt.Errorf("narrative breaker: %w", err)
	}
	return res.(string), nil
}

// State reports the breaker state ("closed", "open", "half-open").
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Limited caps how often the wrapped narrator is called. Waiting for a
// token honours the caller's deadline.
type Limited struct {
	limiter *rate.Limiter
	next    insight.Narrator
}

// NewLimited allows perMinute calls per minute with no burst.
func NewLimited(next insight.Narrator, perMinute int) *Limited {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &Limited{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		next:    next,
	}
}

// Narrate waits for a token, then calls the wrapped narrator.
func (l *Limited) Narrate(ctx context.Context, s insight.Summary) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("narrative rate limit: %w", err)
	}
	return l.next.Narrate(ctx, s)
}
