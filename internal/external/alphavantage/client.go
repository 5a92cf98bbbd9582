// Package alphavantage implements the keyed backup price provider.
package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/wonny/memestock/internal/pricing"
	"github.com/wonny/memestock/pkg/httputil"
	"github.com/wonny/memestock/pkg/logger"
)

// Name is the provider key used for quota tracking
const Name = "alpha_vantage"

// DefaultBaseURL is the public API host
const DefaultBaseURL = "https://www.alphavantage.co"

// Client handles communication with Alpha Vantage
// ⭐ SSOT: Alpha Vantage 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

var _ pricing.Provider = (*Client)(nil)

// NewClient creates a new Alpha Vantage client. An empty apiKey makes every
// fetch immediately unavailable.
func NewClient(httpClient *httputil.Client, baseURL, apiKey string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent(Name),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Name implements pricing.Provider
func (c *Client) Name() string {
	return Name
}

type dailyBar struct {
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type dailyResponse struct {
	Series       map[string]dailyBar `json:"Time Series (Daily)"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
	ErrorMessage string              `json:"Error Message"`
}

// FetchQuote reads TIME_SERIES_DAILY for ticker
func (c *Client) FetchQuote(ctx context.Context, ticker string) pricing.Result {
	if c.apiKey == "" {
		return pricing.Unavailable(pricing.ErrMissingCredential)
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", ticker)
	params.Set("outputsize", "compact")
	params.Set("apikey", c.apiKey)
	target := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	var resp dailyResponse
	if err := c.httpClient.GetJSON(ctx, target, nil, &resp); err != nil {
		return pricing.FromHTTPError(err)
	}

	// throttling is reported in-band with HTTP 200
	if msg := firstNonEmpty(resp.Note, resp.Information); msg != "" {
		return pricing.RateLimited(fmt.Errorf("alpha vantage: %s", msg))
	}
	if resp.ErrorMessage != "" {
		return pricing.Unavailable(fmt.Errorf("%w: %s", pricing.ErrNoData, resp.ErrorMessage))
	}

	raw, ok := fromSeries(resp.Series)
	if !ok {
		return pricing.Unavailable(pricing.ErrNoData)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"close":  raw.Current,
	}).Debug("Alpha Vantage quote fetched")

	return pricing.OK(raw)
}

// fromSeries orders bars by date (YYYY-MM-DD sorts lexically) and keeps the last two
func fromSeries(series map[string]dailyBar) (pricing.RawQuote, bool) {
	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if len(dates) > 2 {
		dates = dates[len(dates)-2:]
	}

	closes := make([]float64, 0, len(dates))
	for _, d := range dates {
		v, err := strconv.ParseFloat(series[d].Close, 64)
		if err != nil {
			continue
		}
		closes = append(closes, v)
	}

	raw, ok := pricing.CloseSeries(closes)
	if !ok {
		return raw, false
	}
	if len(dates) > 0 {
		raw.Volume, _ = strconv.ParseInt(series[dates[len(dates)-1]].Volume, 10, 64)
	}
	return raw, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
