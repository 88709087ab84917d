// Package coordinate implements cross-worker result coordination over a
// shared filesystem tree: waiting for a project's pages to complete,
// discovering and merging sibling projects of the same run, and publishing
// the sitewide summary exactly once despite racing workers.
//
// Workers share no memory and no notification channel; polling the shared
// directory is the portability baseline, at the cost of latency bounded by
// the poll interval. The one genuine write race, summary publication, is
// resolved with an atomic exclusive-create of the flag file.
package coordinate
