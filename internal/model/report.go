package model

// Stability records the outcome of the render-stability probe for a page.
type Stability struct {
	// OK is true if some strategy judged the page stable.
	OK bool `json:"ok"`

	// Strategy names the strategy that succeeded (or the last one tried).
	Strategy string `json:"strategy"`

	// DurationMs is the wall-clock time spent probing, in milliseconds.
	DurationMs int64 `json:"durationMs"`
}

// PageReport is the durable record of one page audited in one project.
// It is created once when the page's audit concludes (success or any
// failure path) and never mutated or deleted afterwards.
//
// Design decision: We use a single flat struct rather than nested
// sub-reports to keep the on-disk JSON trivially diffable and to simplify
// retrieval-side sorting, which only needs Index and RunToken.
type PageReport struct {
	// Page is the site-relative path of the audited page.
	Page string `json:"page"`

	// Index is the 1-based position of the page in the configured page
	// order. Within one (project, runToken) pair indices are unique, and
	// all readers sort by this field rather than trusting write order.
	Index int `json:"index"`

	// RunToken correlates the report with one audit invocation and
	// isolates it from stale reports of earlier runs in the same tree.
	RunToken string `json:"runToken"`

	// Status is the resolved lifecycle state of the page audit.
	Status PageStatus `json:"status"`

	// HTTPStatus is the response status code observed during navigation,
	// zero if navigation never produced a response.
	HTTPStatus int `json:"httpStatus,omitempty"`

	// Stability is the render-stability probe result, nil if the probe
	// never ran (e.g. navigation failed first).
	Stability *Stability `json:"stability"`

	// Notes carries free-form diagnostics (truncated scan errors,
	// navigation messages) surfaced to report consumers.
	Notes []string `json:"notes,omitempty"`

	// Violations are the gating findings for the page.
	Violations []Finding `json:"violations"`

	// Advisory are sub-threshold findings with standard coverage.
	Advisory []Finding `json:"advisory"`

	// BestPractice are sub-threshold findings without standard coverage.
	BestPractice []Finding `json:"bestPractice"`

	// ProjectName is the browser/viewport execution context that audited
	// the page.
	ProjectName string `json:"projectName"`
}

// NewPageReport creates a report in its initial state for one page of one
// project, correlated with the given run.
func NewPageReport(project, page string, index int, runToken string) *PageReport {
	return &PageReport{
		Page:         page,
		Index:        index,
		RunToken:     runToken,
		Status:       StatusSkipped,
		Violations:   []Finding{},
		Advisory:     []Finding{},
		BestPractice: []Finding{},
		ProjectName:  project,
	}
}

// AllFindings returns the page's findings across all three tiers.
// The result is a fresh slice; mutating it does not affect the report.
func (r *PageReport) AllFindings() []Finding {
	out := make([]Finding, 0, len(r.Violations)+len(r.Advisory)+len(r.BestPractice))
	out = append(out, r.Violations...)
	out = append(out, r.Advisory...)
	out = append(out, r.BestPractice...)
	return out
}
