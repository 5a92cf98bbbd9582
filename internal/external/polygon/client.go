// Package polygon implements the second keyed backup price provider using
// daily aggregate bars.
package polygon

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/memestock/internal/pricing"
	"github.com/wonny/memestock/pkg/httputil"
	"github.com/wonny/memestock/pkg/logger"
)

// Name is the provider key used for quota tracking
const Name = "polygon"

// DefaultBaseURL is the public API host
const DefaultBaseURL = "https://api.polygon.io"

// lookback covers weekends and holidays so two closes are available
const lookback = 7 * 24 * time.Hour

// Client handles communication with Polygon.io
// ⭐ SSOT: Polygon 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
	now        func() time.Time
}

var _ pricing.Provider = (*Client)(nil)

// NewClient creates a new Polygon client
func NewClient(httpClient *httputil.Client, baseURL, apiKey string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent(Name),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		now:        time.Now,
	}
}

// Name implements pricing.Provider
func (c *Client) Name() string {
	return Name
}

type aggsResponse struct {
	Ticker       string `json:"ticker"`
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Results      []struct {
		Close  float64 `json:"c"`
		Volume float64 `json:"v"`
		Time   int64   `json:"t"`
	} `json:"results"`
}

// FetchQuote reads the last week of daily aggregates, oldest first
func (c *Client) FetchQuote(ctx context.Context, ticker string) pricing.Result {
	if c.apiKey == "" {
		return pricing.Unavailable(pricing.ErrMissingCredential)
	}

	to := c.now().UTC()
	from := to.Add(-lookback)

	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("sort", "asc")
	params.Set("apiKey", c.apiKey)
	target := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?%s",
		c.baseURL, url.PathEscape(ticker), from.Format("2006-01-02"), to.Format("2006-01-02"), params.Encode())

	var resp aggsResponse
	if err := c.httpClient.GetJSON(ctx, target, nil, &resp); err != nil {
		return pricing.FromHTTPError(err)
	}

	if len(resp.Results) == 0 {
		return pricing.Unavailable(fmt.Errorf("%w: status %s", pricing.ErrNoData, resp.Status))
	}

	closes := make([]float64, 0, len(resp.Results))
	for _, bar := range resp.Results {
		closes = append(closes, bar.Close)
	}
	raw, ok := pricing.CloseSeries(closes)
	if !ok {
		return pricing.Unavailable(pricing.ErrNoData)
	}
	raw.Volume = int64(resp.Results[len(resp.Results)-1].Volume)

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"close":  raw.Current,
		"bars":   len(resp.Results),
	}).Debug("Polygon quote fetched")

	return pricing.OK(raw)
}
