// Package product defines the closed set of Atlassian products the probe can check
// and the static endpoint table each one is resolved through.
package product

import (
	"errors"
	"fmt"
	"strings"
)

// String constants for product identifiers as accepted on the command line
const (
	JiraString            = "jira"
	ConfluenceString      = "confluence"
	JiraServiceDeskString = "jira-service-desk"
)

// ErrUnknownProduct indicates an identifier outside the supported set
var ErrUnknownProduct = errors.New("unknown product")

// Product identifies one of the supported Atlassian products.
// The zero value is not a valid product.
type Product int

const (
	Jira Product = iota + 1
	Confluence
	JiraServiceDesk
)

// ResponseShape describes how the installed version is carried by the product's own endpoint
type ResponseShape int

const (
	// ShapeJSONVersion is a JSON object with a top-level "version" field
	ShapeJSONVersion ResponseShape = iota + 1
	// ShapeHTMLMeta is an HTML page carrying a version meta tag
	ShapeHTMLMeta
)

func (s ResponseShape) String() string {
	switch s {
	case ShapeJSONVersion:
		return "json"
	case ShapeHTMLMeta:
		return "html"
	default:
		return fmt.Sprintf("ResponseShape(%d)", int(s))
	}
}

// Descriptor holds everything needed to resolve versions for a product
type Descriptor struct {
	Name string

	// FeedFile is the release feed file name below the feed base URL
	FeedFile string

	// InstalledPath is appended to the server base URL to reach the version endpoint
	InstalledPath string

	Shape ResponseShape

	// MetaName is the name attribute of the version meta tag (ShapeHTMLMeta only)
	MetaName string

	// TrimQualifier drops everything from the first '-' of the installed version.
	// Service desk builds report versions such as 5.11.3-REL-0001.
	TrimQualifier bool
}

// Describe returns the static descriptor for p.
func (p Product) Describe() (Descriptor, error) {
	switch p {
	case Jira:
		return Descriptor{
			Name:          JiraString,
			FeedFile:      "jira-software.json",
			InstalledPath: "/rest/api/2/serverInfo",
			Shape:         ShapeJSONVersion,
		}, nil
	case Confluence:
		return Descriptor{
			Name:          ConfluenceString,
			FeedFile:      "confluence.json",
			InstalledPath: "/",
			Shape:         ShapeHTMLMeta,
			MetaName:      "ajs-version-number",
		}, nil
	case JiraServiceDesk:
		return Descriptor{
			Name:          JiraServiceDeskString,
			FeedFile:      "jira-servicedesk.json",
			InstalledPath: "/rest/servicedeskapi/info",
			Shape:         ShapeJSONVersion,
			TrimQualifier: true,
		}, nil
	default:
		return Descriptor{}, fmt.Errorf("%w: %d", ErrUnknownProduct, int(p))
	}
}

// String returns the command-line identifier of p
func (p Product) String() string {
	d, err := p.Describe()
	if err != nil {
		return fmt.Sprintf("Product(%d)", int(p))
	}
	return d.Name
}

// All returns every supported product in declaration order
func All() []Product {
	return []Product{Jira, Confluence, JiraServiceDesk}
}

// Names returns the command-line identifiers of all supported products
func Names() []string {
	all := All()
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.String())
	}
	return names
}

// Parse maps a command-line identifier to a Product.
func Parse(name string) (Product, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case JiraString:
		return Jira, nil
	case ConfluenceString:
		return Confluence, nil
	case JiraServiceDeskString:
		return JiraServiceDesk, nil
	default:
		return 0, fmt.Errorf("%w %q, must be one of %s", ErrUnknownProduct, name, strings.Join(Names(), ", "))
	}
}
