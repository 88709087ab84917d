// Package log provides a slog handler that redacts site credentials
// before they reach log output. Site configurations can carry cookies and
// authorization headers for auditing access-protected pages; those values
// must never leak into CI logs.
package log
