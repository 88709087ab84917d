// Package main provides the entry point for the a11ygate CLI.
//
// a11ygate audits the pages of a site for accessibility issues across
// multiple browser/viewport projects in parallel, coordinates the workers
// through a shared results tree, and publishes one consolidated sitewide
// summary per run.
//
// Usage:
//
//	a11ygate audit
//	a11ygate audit --project desktop --run-token <token>
//
// See --help for all available options.
package main

// main is the entry point for a11ygate.
func main() {
	Execute()
}
