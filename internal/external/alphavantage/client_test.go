package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/memestock/internal/pricing"
	"github.com/wonny/memestock/pkg/httputil"
	"github.com/wonny/memestock/pkg/logger"
)

func newTestClient(t *testing.T, key string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(httputil.New(logger.Nop()).DisableRetry(), srv.URL, key, logger.Nop())
}

func TestFetchQuote(t *testing.T) {
	c := newTestClient(t, "k1", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "TIME_SERIES_DAILY", q.Get("function"))
		assert.Equal(t, "AMC", q.Get("symbol"))
		assert.Equal(t, "k1", q.Get("apikey"))
		_, _ = w.Write([]byte(`{
			"Meta Data": {"2. Symbol": "AMC"},
			"Time Series (Daily)": {
				"2026-01-07": {"4. close": "5.5000", "5. volume": "9000"},
				"2026-01-05": {"4. close": "4.0000", "5. volume": "7000"},
				"2026-01-06": {"4. close": "5.0000", "5. volume": "8000"}
			}}`))
	})

	res := c.FetchQuote(context.Background(), "AMC")
	require.Equal(t, pricing.OutcomeOK, res.Outcome, "err: %v", res.Err)
	assert.Equal(t, 5.5, res.Quote.Current)
	assert.Equal(t, 5.0, res.Quote.Previous)
	assert.InDelta(t, 10.0, res.Quote.ChangePct(), 1e-9)
	assert.Equal(t, int64(9000), res.Quote.Volume)
}

func TestFetchQuote_MissingKeySkipsNetwork(t *testing.T) {
	var hits int32
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	res := c.FetchQuote(context.Background(), "AMC")
	assert.Equal(t, pricing.OutcomeUnavailable, res.Outcome)
	assert.ErrorIs(t, res.Err, pricing.ErrMissingCredential)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestFetchQuote_InBandSignals(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		outcome pricing.Outcome
		noData  bool
	}{
		{"note", `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`, pricing.OutcomeRateLimited, false},
		{"information", `{"Information": "daily rate limit reached"}`, pricing.OutcomeRateLimited, false},
		{"invalid symbol", `{"Error Message": "Invalid API call"}`, pricing.OutcomeUnavailable, true},
		{"empty series", `{"Time Series (Daily)": {}}`, pricing.OutcomeUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, "k1", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			res := c.FetchQuote(context.Background(), "AMC")
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, tt.noData, errors.Is(res.Err, pricing.ErrNoData))
		})
	}
}

func TestFetchQuote_HTTP429(t *testing.T) {
	c := newTestClient(t, "k1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	assert.Equal(t, pricing.OutcomeRateLimited, c.FetchQuote(context.Background(), "AMC").Outcome)
}
