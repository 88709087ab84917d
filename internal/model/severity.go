package model

import "strings"

// Severity represents the impact level of an accessibility finding.
// The vocabulary follows the axe impact scale so that raw engine output
// maps directly onto it.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. ParseSeverity bridges from the
// string form carried in Finding.Impact.
type Severity int

const (
	// SeverityUnknown is returned for impact strings the parser does not
	// recognize. Unknown severities never gate a run.
	SeverityUnknown Severity = iota

	// SeverityMinor indicates cosmetic issues with minimal user impact.
	SeverityMinor

	// SeverityModerate indicates issues that degrade the experience for
	// some assistive-technology users but leave content reachable.
	SeverityModerate

	// SeveritySerious indicates issues that block meaningful access for
	// some users (e.g. images without text alternatives).
	SeveritySerious

	// SeverityCritical indicates issues that make content unusable with
	// assistive technology.
	SeverityCritical
)

// String returns the lowercase impact label used in report JSON.
func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "minor"
	case SeverityModerate:
		return "moderate"
	case SeveritySerious:
		return "serious"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseSeverity converts an impact string to a Severity.
// Matching is case-insensitive; unrecognized values map to SeverityUnknown.
func ParseSeverity(impact string) Severity {
	switch strings.ToLower(strings.TrimSpace(impact)) {
	case "minor":
		return SeverityMinor
	case "moderate":
		return SeverityModerate
	case "serious":
		return SeveritySerious
	case "critical":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// standardTagPrefixes lists tag prefixes that indicate a finding maps to a
// recognized external accessibility standard. Tags outside this set (such
// as "best-practice" or "experimental") carry no standard coverage.
var standardTagPrefixes = []string{
	"wcag",
	"section508",
	"en-301-549",
	"act",
}

// HasStandardTag reports whether at least one tag maps to a recognized
// external standard. Matching is case-insensitive.
func HasStandardTag(tags []string) bool {
	for _, tag := range tags {
		lower := strings.ToLower(strings.TrimSpace(tag))
		for _, prefix := range standardTagPrefixes {
			if strings.HasPrefix(lower, prefix) {
				return true
			}
		}
	}
	return false
}
