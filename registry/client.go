package registry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var (
	ErrServiceUnavailable = errors.New("registry service unavailable")
	ErrMalformedPayload   = errors.New("malformed registry payload")
	ErrTokenRejected      = errors.New("registry rejected credentials")
)

const (
	// Expiry margin keeps us from presenting a token that dies mid-request.
	tokenExpiryMargin = 30 * time.Second

	defaultPollInterval = 5 * time.Second
	defaultHTTPTimeout  = 30 * time.Second
)

// Client talks to the business-registry provider. All responses are
// decoded into typed payloads at this boundary; nothing downstream
// handles raw maps.
type Client struct {
	baseURL      string
	username     string
	password     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	pollInterval time.Duration

	mu    sync.Mutex
	token *token
}

// ClientOption is a functional option for Client
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPollInterval sets the delay between status polls
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithOAuthApp sets the OAuth client credentials used for the token grant
func WithOAuthApp(id, secret string) ClientOption {
	return func(c *Client) {
		c.clientID = id
		c.clientSecret = secret
	}
}

// NewClient creates a registry client
func NewClient(baseURL, username, password string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		username:     username,
		password:     password,
		clientID:     "web_app",
		clientSecret: "qwerty",
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type token struct {
	accessToken  string
	refreshToken string
	expiry       time.Time
}

func (t *token) valid() bool {
	return t != nil && time.Now().Before(t.expiry)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// accessToken returns a live access token, logging in or refreshing as needed.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.valid() {
		return c.token.accessToken, nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.username},
		"password":   {c.password},
	}
	if c.token != nil && c.token.refreshToken != "" {
		form = url.Values{
			"grant_type":    {"refresh_token"},
			"username":      {c.username},
			"password":      {c.password},
			"refresh_token": {c.token.refreshToken},
		}
	}

	tok, err := c.requestToken(ctx, form)
	if err != nil {
		// A stale refresh token is not fatal: fall back to a fresh login.
		if c.token != nil && errors.Is(err, ErrTokenRejected) {
			c.token = nil
			tok, err = c.requestToken(ctx, url.Values{
				"grant_type": {"password"},
				"username":   {c.username},
				"password":   {c.password},
			})
		}
		if err != nil {
			return "", err
		}
	}

	c.token = tok
	return tok.accessToken, nil
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (*token, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return nil, ErrTokenRejected
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("token endpoint returned %d: %w", resp.StatusCode, ErrServiceUnavailable)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", ErrMalformedPayload)
	}
	if tr.AccessToken == "" || tr.RefreshToken == "" || tr.ExpiresIn <= 0 {
		return nil, fmt.Errorf("incomplete token response: %w", ErrMalformedPayload)
	}

	return &token{
		accessToken:  tr.AccessToken,
		refreshToken: tr.RefreshToken,
		expiry:       time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpiryMargin),
	}, nil
}

// getJSON performs an authenticated GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, "GET", path, nil, out)
}

// postJSON performs an authenticated POST with a JSON body and decodes
// the response into out. out may be nil for fire-and-forget endpoints.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = strings.NewReader(string(data))
	}
	return c.doJSON(ctx, "POST", path, reader, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	tok, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError,
		resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%s %s returned %d: %w", method, path, resp.StatusCode, ErrServiceUnavailable)
	case resp.StatusCode != http.StatusOK:
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, ErrMalformedPayload)
	}
	return nil
}
