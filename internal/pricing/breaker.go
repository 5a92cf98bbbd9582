package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// breakerProvider trips after repeated transport failures so a dead
// provider is skipped without spending the cycle's time budget on it
type breakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

// BreakerSettings returns the default breaker tuning for a provider
func BreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:     name,
		Interval: 10 * time.Minute,
		Timeout:  5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
}

// WithBreaker wraps p in a circuit breaker. Only Unavailable results with a
// non-credential error count as failures; an open breaker reads as Unavailable.
func WithBreaker(p Provider, st gobreaker.Settings) Provider {
	if st.Name == "" {
		st.Name = p.Name()
	}
	return &breakerProvider{inner: p, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *breakerProvider) Name() string {
	return b.inner.Name()
}

func (b *breakerProvider) FetchQuote(ctx context.Context, ticker string) Result {
	var res Result
	_, err := b.cb.Execute(func() (interface{}, error) {
		res = b.inner.FetchQuote(ctx, ticker)
		if res.Outcome == OutcomeUnavailable && countsAsFailure(res.Err) {
			return nil, res.Err
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Unavailable(err)
	}
	return res
}

// State exposes the breaker state for status views
func (b *breakerProvider) State() gobreaker.State {
	return b.cb.State()
}

func countsAsFailure(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrMissingCredential) &&
		!errors.Is(err, ErrNoData) &&
		!errors.Is(err, context.Canceled)
}
