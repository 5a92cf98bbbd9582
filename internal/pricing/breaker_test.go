package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestWithBreaker_OpensAfterFailures(t *testing.T) {
	inner := newFake("A", always(Unavailable(errors.New("connection refused"))))
	p := WithBreaker(inner, BreakerSettings(""))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.Equal(t, OutcomeUnavailable, p.FetchQuote(ctx, "GME").Outcome)
	}
	assert.Equal(t, gobreaker.StateOpen, p.(*breakerProvider).State())

	res := p.FetchQuote(ctx, "GME")
	assert.Equal(t, OutcomeUnavailable, res.Outcome)
	assert.ErrorIs(t, res.Err, gobreaker.ErrOpenState)
	assert.Len(t, inner.Calls(), 3, "open breaker short-circuits the provider")
}

func TestWithBreaker_ExpectedConditionsDoNotTrip(t *testing.T) {
	tests := []struct {
		name string
		res  Result
	}{
		{"missing credential", Unavailable(ErrMissingCredential)},
		{"no data", Unavailable(ErrNoData)},
		{"rate limited", RateLimited(errors.New("429"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := newFake("A", always(tt.res))
			p := WithBreaker(inner, BreakerSettings("A"))

			for i := 0; i < 10; i++ {
				assert.Equal(t, tt.res.Outcome, p.FetchQuote(context.Background(), "GME").Outcome)
			}
			assert.Equal(t, gobreaker.StateClosed, p.(*breakerProvider).State())
			assert.Equal(t, "A", p.Name())
		})
	}
}

func TestWithBreaker_PassesThroughSuccess(t *testing.T) {
	p := WithBreaker(newFake("A", okPrice(3, 2)), BreakerSettings("A"))

	res := p.FetchQuote(context.Background(), "GME")
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, 3.0, res.Quote.Current)
}
