// Package pipeline orchestrates an audit run: it audits a project's pages
// concurrently, drives each page through its status lifecycle, persists
// the reports, and then performs the cross-project coordination dance —
// wait on its own project, attempt sitewide aggregation, race to publish
// the summary.
//
// The site runner fans out one goroutine per project as an in-process
// stand-in for one-OS-process-per-project scheduling. Coordination still
// goes exclusively through the filesystem, so the same binary invoked once
// per project by an external scheduler (with a shared run token) behaves
// identically.
package pipeline
