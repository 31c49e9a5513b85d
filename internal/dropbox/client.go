package dropbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"zappavault/internal/config"
	"zappavault/internal/logging"
	"zappavault/internal/normalize"
	"zappavault/internal/services"
)

const (
	defaultTokenURL       = "https://api.dropbox.com/oauth2/token"
	defaultAPIBaseURL     = "https://api.dropboxapi.com/2"
	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	tokenRefreshLeeway    = time.Minute
)

// Config captures the credentials and endpoints the client needs.
type Config struct {
	AppKey         string
	AppSecret      string
	RefreshToken   string
	TokenURL       string
	APIBaseURL     string
	TimeoutSeconds int
}

// ConfigFrom builds a client config from the application config.
func ConfigFrom(cfg *config.Config) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{
		AppKey:         cfg.Dropbox.AppKey,
		AppSecret:      cfg.Dropbox.AppSecret,
		RefreshToken:   cfg.Dropbox.RefreshToken,
		TimeoutSeconds: cfg.Dropbox.TimeoutSeconds,
	}
}

// Client talks to the Dropbox HTTP API.
type Client struct {
	cfg        Config
	paths      normalize.PathNormalizer
	httpClient *http.Client
	logger     *slog.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(context.Context, time.Duration) error
	now              func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithPathNormalizer sets how recorded paths are turned into remote paths.
func WithPathNormalizer(paths normalize.PathNormalizer) Option {
	return func(c *Client) {
		c.paths = paths
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "dropbox")
	}
}

// WithRetry overrides the retry count and backoff delays.
func WithRetry(attempts int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// NewClient constructs a Dropbox client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			AppKey:         strings.TrimSpace(cfg.AppKey),
			AppSecret:      strings.TrimSpace(cfg.AppSecret),
			RefreshToken:   strings.TrimSpace(cfg.RefreshToken),
			TokenURL:       strings.TrimSpace(cfg.TokenURL),
			APIBaseURL:     strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		paths:            normalize.NewPathNormalizer(normalize.DefaultRootMarker, ""),
		httpClient:       &http.Client{Timeout: timeout},
		logger:           logging.NewNop(),
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
		sleeper:          sleepContext,
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.cfg.TokenURL == "" {
		client.cfg.TokenURL = defaultTokenURL
	}
	if client.cfg.APIBaseURL == "" {
		client.cfg.APIBaseURL = defaultAPIBaseURL
	}
	return client
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a cached access token, refreshing it when it is about to
// expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiresAt.Add(-tokenRefreshLeeway)) {
		return c.accessToken, nil
	}
	if c.cfg.AppKey == "" || c.cfg.AppSecret == "" || c.cfg.RefreshToken == "" {
		return "", services.Wrap(services.ErrConfiguration, "dropbox", "refresh token",
			"app key, app secret and refresh token are required", nil)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.cfg.RefreshToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("dropbox token: new request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AppKey, c.cfg.AppSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "dropbox", "refresh token", "http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "dropbox", "refresh token", "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		marker := services.ErrExternal
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			marker = services.ErrConfiguration
		}
		return "", services.Wrap(marker, "dropbox", "refresh token",
			fmt.Sprintf("http %d: %s", resp.StatusCode, snippet(body)), nil)
	}
	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrExternal, "dropbox", "refresh token", "decode response", err)
	}
	if parsed.AccessToken == "" {
		return "", services.Wrap(services.ErrExternal, "dropbox", "refresh token", "response has no access token", nil)
	}
	c.accessToken = parsed.AccessToken
	if parsed.ExpiresIn > 0 {
		c.expiresAt = c.now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	} else {
		c.expiresAt = c.now().Add(time.Hour)
	}
	c.logger.Debug("access token refreshed", logging.Time("expires_at", c.expiresAt))
	return c.accessToken, nil
}

// CheckAuth refreshes an access token without touching any file. It is the
// cheapest call that proves the app credentials work.
func (c *Client) CheckAuth(ctx context.Context) error {
	_, err := c.token(ctx)
	return err
}

// rpc posts payload to an API endpoint and decodes a successful response
// into out. Rate limits and server errors are retried.
func (c *Client) rpc(ctx context.Context, endpoint string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("dropbox %s: encode body: %w", endpoint, err)
	}
	attempts := c.retryMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.post(ctx, endpoint, encoded)
		if err == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("dropbox %s: decode response: %w", endpoint, err)
			}
			return nil
		}
		lastErr = err
		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return err
		}
		c.logger.Debug("retrying dropbox request",
			logging.String("endpoint", endpoint),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay))
		if err := c.sleeper(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("dropbox %s: failed after %d attempts: %w", endpoint, attempts, lastErr)
}

func (c *Client) post(ctx context.Context, endpoint string, encoded []byte) ([]byte, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBaseURL+endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("dropbox %s: new request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dropbox %s: http error: %w", endpoint, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dropbox %s: read body: %w", endpoint, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		if resp.StatusCode == http.StatusUnauthorized {
			c.invalidateToken()
		}
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return body, newAPIError(endpoint, resp.StatusCode, body, retryAfter)
	}
	return body, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized,
			apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode >= http.StatusInternalServerError:
			if apiErr.RetryAfter > 0 {
				return c.capDelay(apiErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if c.retryMaxDelay > 0 && delay > c.retryMaxDelay {
		return c.retryMaxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if d := time.Until(when); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		return text[:200] + "..."
	}
	return text
}
