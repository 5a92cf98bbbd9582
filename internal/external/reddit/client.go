package reddit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/wonny/memestock/internal/forum"
	"github.com/wonny/memestock/pkg/config"
	"github.com/wonny/memestock/pkg/httputil"
	"github.com/wonny/memestock/pkg/logger"
)

// ErrNoCredentials is returned when the client id/secret are not configured
var ErrNoCredentials = errors.New("reddit credentials not configured")

// tokenSkew refreshes tokens slightly before Reddit expires them
const tokenSkew = time.Minute

// Client handles communication with the Reddit OAuth API
// ⭐ SSOT: Reddit API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	creds      config.RedditConfig
	baseURL    string
	authURL    string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
	now         func() time.Time
}

var _ forum.Client = (*Client)(nil)

// NewClient creates a new Reddit client
func NewClient(httpClient *httputil.Client, cfg config.RedditConfig, log *logger.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://oauth.reddit.com"
	}
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = "https://www.reddit.com/api/v1/access_token"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("reddit"),
		creds:      cfg,
		baseURL:    baseURL,
		authURL:    authURL,
		now:        time.Now,
	}
}

// token returns a valid bearer token, refreshing it when needed
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	if c.creds.ClientID == "" || c.creds.ClientSecret == "" {
		return "", ErrNoCredentials
	}

	// script apps use the password grant, everything else app-only
	form := url.Values{}
	if c.creds.Username != "" && c.creds.Password != "" {
		form.Set("grant_type", "password")
		form.Set("username", c.creds.Username)
		form.Set("password", c.creds.Password)
	} else {
		form.Set("grant_type", "client_credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create oauth request: %w", err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("oauth request failed: %w", err)
	}
	defer resp.Body.Close()

	var tok oauthResponse
	if err := httputil.DecodeJSON(resp, &tok); err != nil {
		return "", fmt.Errorf("oauth token exchange failed: %w", err)
	}
	if tok.Error != "" {
		return "", fmt.Errorf("oauth token exchange failed: %s", tok.Error)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("oauth token exchange returned no token")
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSkew)

	c.logger.WithField("expires_in", tok.ExpiresIn).Debug("Reddit OAuth token refreshed")
	return c.accessToken, nil
}

// getJSON performs an authenticated GET and maps forum-level failures
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+tok)
	headers.Set("User-Agent", c.creds.UserAgent)

	err = c.httpClient.GetJSON(ctx, fullURL, headers, out)
	switch httputil.StatusCode(err) {
	case 0:
		return err
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, forum.ErrNotFound)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", path, forum.ErrForbidden)
	case http.StatusUnauthorized:
		c.invalidateToken()
		return fmt.Errorf("%s: unauthorized: %w", path, err)
	default:
		return err
	}
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}
