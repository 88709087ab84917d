// Package model defines the core data structures shared across the audit
// coordinator: raw findings, per-page reports with their status lifecycle,
// run correlation tokens, and the sitewide summary consumed by the
// reporting layer.
package model
