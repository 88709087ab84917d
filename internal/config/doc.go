// Package config provides configuration for the audit coordinator: the
// flat runtime Config populated from CLI flags, and the YAML site file
// describing the site under test (pages, projects, gating thresholds and
// stability strategies).
package config
