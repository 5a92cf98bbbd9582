// Package pricing fetches quotes through an ordered ladder of market-data
// providers with per-provider daily quotas and a last-good cache.
package pricing

import (
	"context"
	"errors"
	"net/http"

	"github.com/wonny/memestock/pkg/httputil"
)

// ErrMissingCredential marks a provider with no API key configured
var ErrMissingCredential = errors.New("provider credential not configured")

// ErrNoData marks an unknown ticker or an empty series
var ErrNoData = errors.New("no price data")

// Outcome tags a provider result
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeRateLimited
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRateLimited:
		return "rate_limited"
	default:
		return "unavailable"
	}
}

// RawQuote is what a provider reports before the ladder enriches it
type RawQuote struct {
	Current     float64
	Previous    float64
	HasPrevious bool
	Volume      int64
	CompanyName string
}

// ChangePct is ((current/previous) - 1) * 100, or 0 without a usable previous close
func (q RawQuote) ChangePct() float64 {
	if !q.HasPrevious || q.Previous == 0 {
		return 0.0
	}
	return (q.Current/q.Previous - 1) * 100
}

// Result is a provider response. Expected conditions are values, not errors.
type Result struct {
	Outcome Outcome
	Quote   RawQuote
	Err     error // reason for RateLimited / Unavailable
}

// OK wraps a successful quote
func OK(q RawQuote) Result {
	return Result{Outcome: OutcomeOK, Quote: q}
}

// RateLimited reports a provider-side quota signal
func RateLimited(err error) Result {
	return Result{Outcome: OutcomeRateLimited, Err: err}
}

// Unavailable reports any other failure (no data, network, missing key)
func Unavailable(err error) Result {
	return Result{Outcome: OutcomeUnavailable, Err: err}
}

// Provider fetches one quote. Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	FetchQuote(ctx context.Context, ticker string) Result
}

// Entry pairs a provider with its daily call ceiling (0 = unlimited)
type Entry struct {
	Provider   Provider
	DailyLimit int
}

// CloseSeries turns newest-last daily closes into a RawQuote.
// Zero/NaN gaps are ignored. ok=false when no close is available.
func CloseSeries(closes []float64) (RawQuote, bool) {
	var valid []float64
	for _, c := range closes {
		if c > 0 {
			valid = append(valid, c)
		}
	}
	switch len(valid) {
	case 0:
		return RawQuote{}, false
	case 1:
		return RawQuote{Current: valid[0]}, true
	default:
		n := len(valid)
		return RawQuote{Current: valid[n-1], Previous: valid[n-2], HasPrevious: true}, true
	}
}

// FromHTTPError maps a transport error onto a Result: 429 is a rate limit,
// 404 means the ticker has no data, anything else is unavailable.
func FromHTTPError(err error) Result {
	switch httputil.StatusCode(err) {
	case http.StatusTooManyRequests:
		return RateLimited(err)
	case http.StatusNotFound:
		return Unavailable(errors.Join(ErrNoData, err))
	default:
		return Unavailable(err)
	}
}
