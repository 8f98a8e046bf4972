package resolve

import (
	"context"

	"github.com/clean-dependency-project/check-atlassian-version/internal/product"
)

// MockResolver returns fixed answers for both lookups, for testing
type MockResolver struct {
	Installed    string
	InstalledErr error
	Latest       string
	LatestErr    error

	InstalledCalls int
	LatestCalls    int
}

func (m *MockResolver) ResolveInstalled(ctx context.Context, baseURL string, p product.Product, creds *Credentials) (string, error) {
	m.InstalledCalls++
	if m.InstalledErr != nil {
		return "", m.InstalledErr
	}
	return m.Installed, nil
}

func (m *MockResolver) ResolveLatest(ctx context.Context, p product.Product, wantLTS bool) (string, error) {
	m.LatestCalls++
	if m.LatestErr != nil {
		return "", m.LatestErr
	}
	return m.Latest, nil
}
