package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSite is returned when the site file does not name the site.
	ErrNoSite = errors.New("site configuration missing 'site' name")

	// ErrNoBaseURL is returned when the site file omits the base URL.
	ErrNoBaseURL = errors.New("site configuration missing 'baseURL'")

	// ErrNoPages is returned when the site file lists no pages to audit.
	ErrNoPages = errors.New("site configuration lists no pages")

	// ErrNoProjects is returned when the site file lists no projects.
	ErrNoProjects = errors.New("site configuration lists no projects")

	// ErrInvalidMode is returned for a mode other than gate or audit.
	ErrInvalidMode = errors.New("invalid mode: must be 'gate' or 'audit'")

	// ErrDuplicateProject is returned when two projects share a name.
	ErrDuplicateProject = errors.New("duplicate project name in site configuration")

	// ErrInvalidConcurrency is returned when the page concurrency is not
	// positive.
	ErrInvalidConcurrency = errors.New("invalid page concurrency: must be positive")

	// ErrInvalidWaitTimeout is returned when the wait timeout is not
	// positive.
	ErrInvalidWaitTimeout = errors.New("invalid wait timeout: must be positive")

	// ErrInvalidPollInterval is returned when the poll interval is not
	// positive.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
