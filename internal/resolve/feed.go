package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/clean-dependency-project/check-atlassian-version/internal/product"
	"github.com/clean-dependency-project/check-atlassian-version/internal/version"
)

// feedCallback is the JSONP callback the download feeds are wrapped in
const feedCallback = "downloads"

// enterpriseMarker in an edition marks an LTS (Enterprise) release
const enterpriseMarker = "Enterprise"

// ErrFeedWrapper indicates a feed body without the expected callback wrapper
var ErrFeedWrapper = errors.New("feed body is not wrapped in " + feedCallback + "(...)")

// ReleaseEntry is one published release in a download feed
type ReleaseEntry struct {
	Description  string `json:"description"`
	Edition      string `json:"edition"`
	ZipURL       string `json:"zipUrl"`
	TarURL       string `json:"tarUrl"`
	MD5          string `json:"md5"`
	Size         string `json:"size"`
	Released     string `json:"released"`
	Type         string `json:"type"`
	Platform     string `json:"platform"`
	Version      string `json:"version"`
	ReleaseNotes string `json:"releaseNotes"`
	UpgradeNotes string `json:"upgradeNotes"`
}

// IsLTS reports whether the entry is an LTS (Enterprise) release
func (r ReleaseEntry) IsLTS() bool {
	return strings.Contains(r.Edition, enterpriseMarker)
}

// StripFeedWrapper removes the downloads(...) callback around a feed body.
// Only that exact wrapper is accepted; surrounding whitespace is ignored.
func StripFeedWrapper(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	prefix := []byte(feedCallback + "(")
	if !bytes.HasPrefix(trimmed, prefix) || !bytes.HasSuffix(trimmed, []byte(")")) {
		return nil, ErrFeedWrapper
	}
	return trimmed[len(prefix) : len(trimmed)-1], nil
}

// ParseFeed decodes a wrapped download feed into its release entries
func ParseFeed(body []byte) ([]ReleaseEntry, error) {
	payload, err := StripFeedWrapper(body)
	if err != nil {
		return nil, err
	}

	var entries []ReleaseEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	return entries, nil
}

// FilterEdition returns the entries whose LTS status equals wantLTS, preserving order
func FilterEdition(entries []ReleaseEntry, wantLTS bool) []ReleaseEntry {
	filtered := make([]ReleaseEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsLTS() == wantLTS {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// FeedClient resolves the latest published version from the Atlassian download feeds
type FeedClient struct {
	config Config
}

// NewFeedClient creates a new feed client
func NewFeedClient(config Config) *FeedClient {
	return &FeedClient{config: config.withDefaults()}
}

// FeedURL returns the download feed URL for p
func (c *FeedClient) FeedURL(p product.Product) (string, error) {
	d, err := p.Describe()
	if err != nil {
		return "", err
	}
	return url.JoinPath(c.config.FeedBaseURL, d.FeedFile)
}

// ResolveLatest returns the greatest version published for p in the requested edition.
// Exactly one request is made.
func (c *FeedClient) ResolveLatest(ctx context.Context, p product.Product, wantLTS bool) (string, error) {
	feedURL, err := c.FeedURL(p)
	if err != nil {
		if errors.Is(err, product.ErrUnknownProduct) {
			return "", ResolveError{Op: OpResolveLatest, Product: p.String(), Err: ErrUnknownProduct, Cause: err}
		}
		return "", ResolveError{Op: OpResolveLatest, Product: p.String(), Err: ErrMalformedResponse, Cause: fmt.Errorf("failed to construct feed URL: %w", err)}
	}

	body, err := c.config.fetch(ctx, OpResolveLatest, p.String(), feedURL, "application/json, application/javascript", nil)
	if err != nil {
		return "", err
	}

	entries, err := ParseFeed(body)
	if err != nil {
		c.config.Logger.Warn("failed to parse feed", "product", p.String(), "url", feedURL, "error", err)
		return "", ResolveError{Op: OpResolveLatest, Product: p.String(), URL: feedURL, Err: ErrMalformedResponse, Cause: err}
	}

	candidates := FilterEdition(entries, wantLTS)
	raws := make([]string, 0, len(candidates))
	for _, entry := range candidates {
		raws = append(raws, entry.Version)
	}

	latest, err := version.Latest(raws)
	if err != nil {
		c.config.Logger.Warn("no usable release in feed",
			"product", p.String(),
			"lts", wantLTS,
			"entries", len(entries),
			"candidates", len(candidates))
		return "", ResolveError{Op: OpResolveLatest, Product: p.String(), URL: feedURL, Err: ErrEmpty, Cause: err}
	}

	c.config.Logger.Debug("resolved latest version",
		"product", p.String(),
		"lts", wantLTS,
		"version", latest,
		"candidates", len(candidates))

	return latest, nil
}
