package cli

import (
	"context"

	"github.com/clean-dependency-project/check-atlassian-version/internal/product"
	"github.com/clean-dependency-project/check-atlassian-version/internal/resolve"
)

// recordingInstalled captures the arguments of the installed-version lookup.
type recordingInstalled struct {
	version string
	baseURL string
	product product.Product
	creds   *resolve.Credentials
}

func (r *recordingInstalled) ResolveInstalled(ctx context.Context, baseURL string, p product.Product, creds *resolve.Credentials) (string, error) {
	r.baseURL, r.product, r.creds = baseURL, p, creds
	return r.version, nil
}
