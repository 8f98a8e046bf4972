// Package check classifies an installed version against the latest published one
// and renders the result using the Nagios/Icinga plugin conventions.
package check

import (
	"fmt"

	"github.com/clean-dependency-project/check-atlassian-version/internal/version"
)

// Severity is a monitoring status, ordered by escalation
type Severity int

const (
	OK Severity = iota
	Warning
	Critical
	Unknown
)

// String returns the upper-case status label used in plugin output
func (s Severity) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the plugin exit code for s.
// Values outside the known range map to the UNKNOWN code.
func (s Severity) ExitCode() int {
	switch s {
	case OK, Warning, Critical:
		return int(s)
	default:
		return int(Unknown)
	}
}

// Worse returns the more severe of a and b
func Worse(a, b Severity) Severity {
	if a.ExitCode() >= b.ExitCode() {
		return a
	}
	return b
}

// Classify compares the installed version with the latest one.
//
// If either side fails to parse the strings are compared verbatim: equal strings are OK,
// anything else is UNKNOWN. Otherwise a lower major or a lower minor is CRITICAL and a
// lower patch is WARNING.
//
// The minor check deliberately ignores the major relationship, so an installed 10.0.0
// against a latest 9.5.0 is CRITICAL. This matches the behaviour existing monitoring
// setups depend on and is kept until a product owner decides otherwise.
func Classify(installed, latest string) Severity {
	iv, ierr := version.Parse(installed)
	lv, lerr := version.Parse(latest)
	if ierr != nil || lerr != nil {
		if installed == latest {
			return OK
		}
		return Unknown
	}

	if iv.Major < lv.Major || iv.Minor < lv.Minor {
		return Critical
	}
	if iv.Patch < lv.Patch {
		return Warning
	}
	return OK
}

// Result is the outcome of one probe run
type Result struct {
	Severity  Severity
	Installed string
	Latest    string
}

// Evaluate classifies installed against latest and returns the full result
func Evaluate(installed, latest string) Result {
	return Result{
		Severity:  Classify(installed, latest),
		Installed: installed,
		Latest:    latest,
	}
}

// Message renders the single status line expected by the monitoring system
func (r Result) Message() string {
	switch r.Severity {
	case OK:
		return fmt.Sprintf("OK: Installed version %s is up-to-date", r.Installed)
	case Warning:
		return fmt.Sprintf("WARNING: Installed version %s differs in patch version from the latest %s", r.Installed, r.Latest)
	case Critical:
		return fmt.Sprintf("CRITICAL: Installed version %s is significantly out of date compared to the latest %s", r.Installed, r.Latest)
	default:
		return fmt.Sprintf("UNKNOWN: Error encountered - %s", r.Installed)
	}
}

// ExitCode returns the plugin exit code for the result
func (r Result) ExitCode() int {
	return r.Severity.ExitCode()
}
