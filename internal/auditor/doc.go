// Package auditor defines the page auditor collaborator interface and a
// built-in HTTP implementation. The auditor scans one page in one project
// and returns a raw finding list plus page-load diagnostics; everything
// downstream (classification, persistence, coordination) is handled by the
// caller.
//
// The built-in auditor fetches the page over plain HTTP(S), probes render
// stability through an ordered list of strategies, and runs a small set of
// generic WCAG document checks over the DOM. It is deliberately not a
// substitute for a full browser-based engine; it exists so the CLI can
// audit real sites end to end without one.
package auditor
