package resolve

import (
	"errors"
	"fmt"

	"github.com/clean-dependency-project/check-atlassian-version/internal/product"
)

// String constants for operations (used in ResolveError)
const (
	OpResolveLatest    = "resolve_latest"
	OpResolveInstalled = "resolve_installed"
)

// Error kinds. A ResolveError matches exactly one of these with errors.Is.
var (
	// ErrNetwork indicates a failed request: transport error, timeout or non-2xx status
	ErrNetwork = errors.New("request error")

	// ErrNotFound indicates a successful response without the expected version field or tag
	ErrNotFound = errors.New("version not found")

	// ErrEmpty indicates the release feed had no parsable version for the requested edition
	ErrEmpty = errors.New("no valid version found")

	// ErrUnknownProduct indicates a product outside the supported set
	ErrUnknownProduct = product.ErrUnknownProduct

	// ErrMalformedResponse indicates a response body that could not be decoded
	ErrMalformedResponse = errors.New("malformed response")
)

// ResolveError describes a failed version lookup
type ResolveError struct {
	Op         string
	Product    string
	URL        string
	StatusCode int
	Err        error // one of the error kinds above
	Cause      error
}

func (e ResolveError) Error() string {
	switch e.Err {
	case ErrNetwork:
		if e.StatusCode != 0 {
			return fmt.Sprintf("Request error - %d %s for url: %s", e.StatusCode, statusText(e.StatusCode), e.URL)
		}
		return fmt.Sprintf("Request error - %v", e.Cause)
	case ErrNotFound:
		return "Version not found"
	case ErrEmpty:
		return "No valid version found"
	case ErrUnknownProduct:
		return "Unknown product"
	case ErrMalformedResponse:
		return fmt.Sprintf("Malformed response from %s - %v", e.URL, e.Cause)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Product, e.Cause)
		}
		return fmt.Sprintf("%s failed for %s", e.Op, e.Product)
	}
}

func (e ResolveError) Unwrap() error {
	return e.Cause
}

func (e ResolveError) Is(target error) bool {
	return e.Err != nil && target == e.Err
}
