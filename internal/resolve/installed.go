package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/clean-dependency-project/check-atlassian-version/internal/product"
)

// ServerClient resolves the version a product server reports about itself
type ServerClient struct {
	config Config
}

// NewServerClient creates a new server client
func NewServerClient(config Config) *ServerClient {
	return &ServerClient{config: config.withDefaults()}
}

// InstalledURL returns the version endpoint for p below baseURL
func InstalledURL(baseURL string, p product.Product) (string, error) {
	d, err := p.Describe()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(baseURL, "/") + d.InstalledPath, nil
}

// ResolveInstalled queries the server at baseURL for its running version.
// creds may be nil. Exactly one request is made.
func (c *ServerClient) ResolveInstalled(ctx context.Context, baseURL string, p product.Product, creds *Credentials) (string, error) {
	d, err := p.Describe()
	if err != nil {
		return "", ResolveError{Op: OpResolveInstalled, Product: p.String(), Err: ErrUnknownProduct, Cause: err}
	}

	endpoint, err := InstalledURL(baseURL, p)
	if err != nil {
		return "", ResolveError{Op: OpResolveInstalled, Product: p.String(), Err: ErrUnknownProduct, Cause: err}
	}

	accept := "application/json"
	if d.Shape == product.ShapeHTMLMeta {
		accept = "text/html"
	}

	body, err := c.config.fetch(ctx, OpResolveInstalled, d.Name, endpoint, accept, creds)
	if err != nil {
		return "", err
	}

	var raw string
	switch d.Shape {
	case product.ShapeJSONVersion:
		raw, err = extractJSONVersion(body)
	case product.ShapeHTMLMeta:
		raw, err = extractMetaVersion(body, d.MetaName)
	default:
		err = fmt.Errorf("%w: unsupported response shape %s", ErrMalformedResponse, d.Shape)
	}
	if err != nil {
		kind := ErrMalformedResponse
		if errors.Is(err, ErrNotFound) {
			kind = ErrNotFound
		}
		c.config.Logger.Warn("failed to extract installed version", "product", d.Name, "url", endpoint, "error", err)
		return "", ResolveError{Op: OpResolveInstalled, Product: d.Name, URL: endpoint, Err: kind, Cause: err}
	}

	if d.TrimQualifier {
		raw, _, _ = strings.Cut(raw, "-")
	}

	c.config.Logger.Debug("resolved installed version", "product", d.Name, "url", endpoint, "version", raw)
	return raw, nil
}

type versionPayload struct {
	Version *string `json:"version"`
}

func extractJSONVersion(body []byte) (string, error) {
	var payload versionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if payload.Version == nil || *payload.Version == "" {
		return "", fmt.Errorf("%w: response has no version field", ErrNotFound)
	}
	return *payload.Version, nil
}

func extractMetaVersion(body []byte, metaName string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	content, ok := doc.Find(fmt.Sprintf("meta[name=%q]", metaName)).First().Attr("content")
	if !ok || strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: no %s meta tag", ErrNotFound, metaName)
	}
	return strings.TrimSpace(content), nil
}
