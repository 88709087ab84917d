package model

// Finding is a single raw accessibility finding produced by a page auditor.
// Findings are immutable once returned by the auditor; classification into
// gating/advisory/best-practice tiers happens downstream and never mutates
// the finding itself.
type Finding struct {
	// ID is the rule identifier (e.g. "image-alt").
	ID string `json:"id"`

	// Impact is the raw severity label reported by the audit engine
	// (minor, moderate, serious, critical). Kept as a string because it
	// is engine output; use Severity() for comparisons.
	Impact string `json:"impact"`

	// Tags are the standard-coverage and category tags attached to the
	// rule (e.g. "wcag2a", "wcag111", "best-practice").
	Tags []string `json:"tags,omitempty"`

	// NodeCount is the number of DOM nodes that triggered the rule.
	NodeCount int `json:"nodeCount"`

	// HelpURL points at the rule documentation.
	HelpURL string `json:"helpUrl,omitempty"`
}

// Severity returns the parsed impact level of the finding.
func (f Finding) Severity() Severity {
	return ParseSeverity(f.Impact)
}

// HasStandardCoverage reports whether the finding carries at least one
// recognized standard-coverage tag.
func (f Finding) HasStandardCoverage() bool {
	return HasStandardTag(f.Tags)
}
