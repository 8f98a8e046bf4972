// Package resolve looks up the latest published and the currently installed
// version of an Atlassian product.
package resolve

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultFeedBaseURL is the base URL of the Atlassian download feeds
	DefaultFeedBaseURL = "https://my.atlassian.com/download/feeds/current"

	// DefaultTimeout is the default per-request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is the default User-Agent header
	DefaultUserAgent = "check-atlassian-version/1.0"

	// maxBodySize caps how much of a response body is read
	maxBodySize = 16 << 20
)

// HTTPClient defines the interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds configuration shared by the resolvers
type Config struct {
	FeedBaseURL string
	UserAgent   string
	Timeout     time.Duration
	HTTPClient  HTTPClient
	Logger      *slog.Logger
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		FeedBaseURL: DefaultFeedBaseURL,
		UserAgent:   DefaultUserAgent,
		Timeout:     DefaultTimeout,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		Logger: slog.Default(),
	}
}

func (c Config) withDefaults() Config {
	if c.FeedBaseURL == "" {
		c.FeedBaseURL = DefaultFeedBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout: c.Timeout,
		}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Credentials authenticate requests against the product server
type Credentials struct {
	Username string
	Password string
	Token    string
}

// ParseCredentials interprets a credential string.
// "user:password" becomes basic auth, anything else is sent as a bearer token.
// An empty string yields nil.
func ParseCredentials(s string) *Credentials {
	if s == "" {
		return nil
	}
	if user, pass, ok := strings.Cut(s, ":"); ok {
		return &Credentials{Username: user, Password: pass}
	}
	return &Credentials{Token: s}
}

func (c *Credentials) apply(req *http.Request) {
	if c == nil {
		return
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
		return
	}
	req.SetBasicAuth(c.Username, c.Password)
}

// fetch performs a single GET and returns the body of a 2xx response.
// Failures are returned as ResolveError with ErrNetwork.
func (c Config) fetch(ctx context.Context, op, productName, rawURL, accept string, creds *Credentials) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	networkErr := func(status int, cause error) error {
		return ResolveError{
			Op:         op,
			Product:    productName,
			URL:        rawURL,
			StatusCode: status,
			Err:        ErrNetwork,
			Cause:      cause,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, networkErr(0, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.UserAgent)
	creds.apply(req)

	c.Logger.Debug("sending request", "op", op, "product", productName, "url", rawURL)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Warn("request failed", "op", op, "url", rawURL, "error", err)
		return nil, networkErr(0, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.Logger.Debug("received response", "op", op, "url", rawURL, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Warn("unexpected status", "op", op, "url", rawURL, "status", resp.StatusCode)
		return nil, networkErr(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, networkErr(0, fmt.Errorf("failed to read response body: %w", err))
	}
	return body, nil
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown Status"
}
