// Package database provides SQLite-backed run history. Every published
// sitewide summary is recorded locally so the compare command can diff
// runs over time: new rules, resolved rules, and the overall direction of
// the site's accessibility posture.
package database
