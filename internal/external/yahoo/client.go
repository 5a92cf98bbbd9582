// Package yahoo implements the keyless primary price provider on top of the
// Yahoo Finance chart endpoint.
package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/memestock/internal/pricing"
	"github.com/wonny/memestock/pkg/httputil"
	"github.com/wonny/memestock/pkg/logger"
)

// Name is the provider key used for quota tracking
const Name = "yahoo"

// DefaultBaseURL is the public chart API host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

var _ pricing.Provider = (*Client)(nil)

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent(Name),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name implements pricing.Provider
func (c *Client) Name() string {
	return Name
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		LongName           string  `json:"longName"`
		ShortName          string  `json:"shortName"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Indicators struct {
		Quote []struct {
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// FetchQuote reads the last five daily bars for ticker
func (c *Client) FetchQuote(ctx context.Context, ticker string) pricing.Result {
	params := url.Values{}
	params.Set("range", "5d")
	params.Set("interval", "1d")
	target := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, target, nil, &resp); err != nil {
		return pricing.FromHTTPError(err)
	}

	if resp.Chart.Error != nil {
		return pricing.Unavailable(fmt.Errorf("%w: %s", pricing.ErrNoData, resp.Chart.Error.Description))
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return pricing.Unavailable(pricing.ErrNoData)
	}

	res := resp.Chart.Result[0]
	q := res.Indicators.Quote[0]

	closes := make([]float64, 0, len(q.Close))
	for _, v := range q.Close {
		if v != nil {
			closes = append(closes, *v)
		}
	}
	raw, ok := pricing.CloseSeries(closes)
	if !ok {
		return pricing.Unavailable(pricing.ErrNoData)
	}

	for i := len(q.Volume) - 1; i >= 0; i-- {
		if q.Volume[i] != nil {
			raw.Volume = *q.Volume[i]
			break
		}
	}

	raw.CompanyName = res.Meta.LongName
	if raw.CompanyName == "" {
		raw.CompanyName = res.Meta.ShortName
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"close":  raw.Current,
	}).Debug("Yahoo quote fetched")

	return pricing.OK(raw)
}
