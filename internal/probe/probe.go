// Package probe runs one version check: it resolves the installed and the latest
// version of a product and classifies the pair.
package probe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clean-dependency-project/check-atlassian-version/internal/check"
	"github.com/clean-dependency-project/check-atlassian-version/internal/product"
	"github.com/clean-dependency-project/check-atlassian-version/internal/resolve"
)

// unknownPrefix marks a resolver failure in place of a version string
const unknownPrefix = "UNKNOWN: "

// InstalledResolver looks up the version a product server is running
type InstalledResolver interface {
	ResolveInstalled(ctx context.Context, baseURL string, p product.Product, creds *resolve.Credentials) (string, error)
}

// LatestResolver looks up the latest published version of a product
type LatestResolver interface {
	ResolveLatest(ctx context.Context, p product.Product, wantLTS bool) (string, error)
}

// Target describes what to check
type Target struct {
	Host        string
	UseTLS      bool
	Product     product.Product
	Credentials *resolve.Credentials
	LTS         bool
}

// BaseURL returns the server base URL built from the scheme flag and host
func (t Target) BaseURL() string {
	scheme := "http"
	if t.UseTLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, t.Host)
}

// Probe orchestrates the resolvers and the comparator
type Probe struct {
	installed InstalledResolver
	latest    LatestResolver
	logger    *slog.Logger
}

// New creates a probe. A nil logger falls back to slog.Default().
func New(installed InstalledResolver, latest LatestResolver, logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{
		installed: installed,
		latest:    latest,
		logger:    logger,
	}
}

// Run resolves both versions sequentially and classifies them.
// Resolver failures never abort the run; they become "UNKNOWN: <cause>" strings
// which classify as UNKNOWN.
func (p *Probe) Run(ctx context.Context, target Target) check.Result {
	baseURL := target.BaseURL()

	installed, err := p.installed.ResolveInstalled(ctx, baseURL, target.Product, target.Credentials)
	if err != nil {
		p.logger.Warn("failed to resolve installed version",
			"product", target.Product.String(),
			"base_url", baseURL,
			"error", err)
		installed = unknownPrefix + err.Error()
	}

	latest, err := p.latest.ResolveLatest(ctx, target.Product, target.LTS)
	if err != nil {
		p.logger.Warn("failed to resolve latest version",
			"product", target.Product.String(),
			"lts", target.LTS,
			"error", err)
		latest = unknownPrefix + err.Error()
	}

	result := check.Evaluate(installed, latest)

	p.logger.Info("version check complete",
		"product", target.Product.String(),
		"installed", installed,
		"latest", latest,
		"status", result.Severity.String())

	return result
}
