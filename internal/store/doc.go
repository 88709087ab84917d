// Package store persists per-page audit reports on a shared filesystem
// tree and retrieves them for coordination. The tree is the only medium
// shared by otherwise isolated worker processes, so the layout doubles as
// the coordination protocol: one JSON file per (project, page-index) under
// a project directory, plus a reserved __global directory for the per-run
// summary artifacts.
//
// Every write targets a filename unique to (project, index), so concurrent
// writers never contend and no locking is needed.
package store
