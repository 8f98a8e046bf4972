// Package version provides lenient semantic version parsing and numeric ordering
// for the version strings reported by Atlassian feeds and servers.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// String constants for operations (used in ErrVersionParseFailed)
const (
	OpParse         = "parse"
	OpParsePrefix   = "parse_prefix"
	OpSelectLatest  = "select_latest"
	OpParseVersion1 = "parse_version1"
	OpParseVersion2 = "parse_version2"
)

// Custom error types for better error handling and comparison
var (
	ErrInvalidVersion     = errors.New("invalid version format")
	ErrEmptyVersion       = errors.New("version string is empty")
	ErrNoVersionsProvided = errors.New("no valid versions provided")
)

// ErrVersionParseFailed represents a version parsing error
type ErrVersionParseFailed struct {
	Version string
	Op      string
	Cause   error
}

func (e ErrVersionParseFailed) Error() string {
	return fmt.Sprintf("failed to parse version %q in operation %s: %v", e.Version, e.Op, e.Cause)
}

func (e ErrVersionParseFailed) Unwrap() error {
	return e.Cause
}

func (e ErrVersionParseFailed) Is(target error) bool {
	var parseErr ErrVersionParseFailed
	return errors.As(target, &parseErr)
}

// numericPrefix matches a dotted numeric prefix of up to three components.
// Whatever follows the prefix is kept verbatim as the qualifier.
var numericPrefix = regexp.MustCompile(`^[vV]?(\d+)(?:\.(\d+))?(?:\.(\d+))?(.*)$`)

// Version is a parsed version. Ordering only looks at Major, Minor and Patch.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64

	// Qualifier is the unclassified remainder after the numeric part,
	// including its leading separator (e.g. "-Enterprise", ".1", "+build5").
	Qualifier string

	// Original is the raw string the version was parsed from
	Original string
}

// Parse parses raw into a Version.
// Strict semantic versions are handled by semver; anything else that starts with
// a dotted numeric prefix (e.g. "9.4.2.1", "8.5_hotfix") falls back to prefix parsing.
// Parse never panics; unparsable input yields ErrVersionParseFailed.
func Parse(raw string) (Version, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Version{}, ErrVersionParseFailed{
			Version: raw,
			Op:      OpParse,
			Cause:   ErrEmptyVersion,
		}
	}

	if sv, err := semver.NewVersion(trimmed); err == nil {
		v := Version{
			Major:    sv.Major(),
			Minor:    sv.Minor(),
			Patch:    sv.Patch(),
			Original: raw,
		}
		if pre := sv.Prerelease(); pre != "" {
			v.Qualifier += "-" + pre
		}
		if meta := sv.Metadata(); meta != "" {
			v.Qualifier += "+" + meta
		}
		return v, nil
	}

	return parsePrefix(raw, trimmed)
}

func parsePrefix(raw, trimmed string) (Version, error) {
	m := numericPrefix.FindStringSubmatch(trimmed)
	if m == nil {
		return Version{}, ErrVersionParseFailed{
			Version: raw,
			Op:      OpParsePrefix,
			Cause:   ErrInvalidVersion,
		}
	}

	var parts [3]uint64
	for i, s := range m[1:4] {
		if s == "" {
			continue
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Version{}, ErrVersionParseFailed{
				Version: raw,
				Op:      OpParsePrefix,
				Cause:   fmt.Errorf("%w: %v", ErrInvalidVersion, err),
			}
		}
		parts[i] = n
	}

	return Version{
		Major:     parts[0],
		Minor:     parts[1],
		Patch:     parts[2],
		Qualifier: m[4],
		Original:  raw,
	}, nil
}

// String formats v as major.minor.patch followed by its qualifier
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.Qualifier)
}

// Compare returns -1, 0 or 1 comparing v to o by (major, minor, patch).
// Qualifiers are ignored.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpUint(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpUint(v.Minor, o.Minor)
	default:
		return cmpUint(v.Patch, o.Patch)
	}
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareVersions parses and compares two raw versions (-1 if v1 < v2, 0 if equal, 1 if v1 > v2)
func CompareVersions(v1, v2 string) (int, error) {
	ver1, err := Parse(v1)
	if err != nil {
		return 0, ErrVersionParseFailed{Version: v1, Op: OpParseVersion1, Cause: err}
	}
	ver2, err := Parse(v2)
	if err != nil {
		return 0, ErrVersionParseFailed{Version: v2, Op: OpParseVersion2, Cause: err}
	}
	return ver1.Compare(ver2), nil
}

// Latest returns the raw string of the numerically greatest version in raws.
// Unparsable entries are skipped. When several entries compare equal the first one wins.
func Latest(raws []string) (string, error) {
	var (
		best  Version
		found bool
	)
	for _, raw := range raws {
		v, err := Parse(raw)
		if err != nil {
			continue
		}
		if !found || v.Compare(best) > 0 {
			best = v
			found = true
		}
	}

	if !found {
		return "", ErrVersionParseFailed{
			Op:    OpSelectLatest,
			Cause: ErrNoVersionsProvided,
		}
	}
	return best.Original, nil
}
