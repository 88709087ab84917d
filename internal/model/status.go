package model

import "fmt"

// PageStatus is the lifecycle state of a page audit.
//
// The state machine is:
//
//	skipped (initial) → http-error | stability-timeout | scan-error |
//	                    violations | passed   (all terminal)
//
// A report still in the initial state at persistence time is resolved by a
// StatusResolver; the default policy interprets it as passed ("nothing
// disqualifying was observed"), which is distinct from "verified clean".
type PageStatus string

const (
	// StatusSkipped is the initial state: no audit outcome recorded yet.
	StatusSkipped PageStatus = "skipped"

	// StatusHTTPError marks a page whose navigation failed or returned
	// an HTTP status >= 400. The scan is not attempted.
	StatusHTTPError PageStatus = "http-error"

	// StatusStabilityTimeout marks a page that never reached a stable
	// render within the configured budget. The scan is not attempted.
	StatusStabilityTimeout PageStatus = "stability-timeout"

	// StatusScanError marks a page whose scan itself failed.
	StatusScanError PageStatus = "scan-error"

	// StatusViolations marks a successfully scanned page with at least
	// one gating finding.
	StatusViolations PageStatus = "violations"

	// StatusPassed marks a successfully scanned page with zero gating
	// findings.
	StatusPassed PageStatus = "passed"
)

// Terminal reports whether the status is a terminal state.
func (s PageStatus) Terminal() bool {
	switch s {
	case StatusHTTPError, StatusStabilityTimeout, StatusScanError, StatusViolations, StatusPassed:
		return true
	default:
		return false
	}
}

// Valid reports whether the status is a known state.
func (s PageStatus) Valid() bool {
	return s == StatusSkipped || s.Terminal()
}

// Failed reports whether the status is a forced page failure: an outcome
// that counts against the run in gate mode even without gating findings.
func (s PageStatus) Failed() bool {
	switch s {
	case StatusHTTPError, StatusStabilityTimeout, StatusScanError:
		return true
	default:
		return false
	}
}

// StatusResolver decides the terminal status of a report that is still in
// its initial state when it reaches the store. The resolver is an explicit,
// overridable policy rather than an implicit fallthrough.
type StatusResolver func(r *PageReport) PageStatus

// DefaultStatusResolver interprets a still-skipped report as passed:
// nothing disqualifying was observed for the page.
func DefaultStatusResolver(_ *PageReport) PageStatus {
	return StatusPassed
}

// Resolve transitions the report from the initial state to a terminal one.
// Transitions out of a terminal state are rejected so a resolved outcome can
// never be overwritten.
func (r *PageReport) Resolve(next PageStatus) error {
	if !next.Terminal() {
		return fmt.Errorf("page %q: cannot transition to non-terminal status %q", r.Page, next)
	}
	if r.Status.Terminal() {
		return fmt.Errorf("page %q: status already resolved to %q", r.Page, r.Status)
	}
	r.Status = next
	return nil
}

// Finalize applies the resolver if the report is still in its initial
// state. Reports already resolved are left untouched. A nil resolver falls
// back to DefaultStatusResolver.
func (r *PageReport) Finalize(resolve StatusResolver) {
	if r.Status.Terminal() {
		return
	}
	if resolve == nil {
		resolve = DefaultStatusResolver
	}
	r.Status = resolve(r)
}
