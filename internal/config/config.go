package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "a11ygate"

	// DefaultConfigFile is the default site configuration file name.
	DefaultConfigFile = ".a11ygate.yaml"

	// DefaultResultsRoot is the default output tree for page reports and
	// summaries, relative to the working directory.
	DefaultResultsRoot = "a11ygate-results"

	// DefaultPageConcurrency bounds concurrent page audits per project.
	// Pages within one project race on nothing but the network, so a
	// small fan-out is enough to hide latency.
	DefaultPageConcurrency = 4

	// DefaultPageBudget is the per-page audit budget. It is deliberately
	// generous: a slow or hung site under test is itself a finding, and
	// must not be conflated with a timeout of the coordination layer.
	DefaultPageBudget = 2 * time.Hour

	// DefaultWaitTimeout bounds how long the coordination layer waits
	// for a project to complete.
	DefaultWaitTimeout = 300 * time.Second

	// DefaultPollInterval is the base interval for directory polling.
	DefaultPollInterval = 1 * time.Second
)

// Config holds all runtime options for an audit invocation.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
type Config struct {
	// ConfigPath is an explicit site configuration file path. Empty
	// means search the default locations.
	ConfigPath string

	// ResultsRoot is the output tree shared by all workers of a run.
	ResultsRoot string

	// RunToken is an externally supplied run token. Empty means generate
	// a fresh one; a scheduler running one process per project passes
	// the token it generated for the whole invocation.
	RunToken string

	// Project restricts the invocation to a single named project, for
	// one-process-per-project deployments. Empty runs all projects.
	Project string

	// PageConcurrency bounds concurrent page audits within a project.
	PageConcurrency int

	// PageBudget is the wall-clock budget for one page audit.
	PageBudget time.Duration

	// WaitTimeout bounds the project-completion wait.
	WaitTimeout time.Duration

	// PollInterval is the base directory-poll interval.
	PollInterval time.Duration

	// Verbose enables debug-level log output.
	Verbose bool

	// JSON selects JSON summary output (mutually exclusive with Markdown).
	JSON bool

	// Markdown selects Markdown summary output.
	Markdown bool

	// OutputFile writes the rendered summary to a file instead of stdout.
	OutputFile string

	// SkipHistory disables recording the published summary in the local
	// run-history database.
	SkipHistory bool
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		ResultsRoot:     DefaultResultsRoot,
		PageConcurrency: DefaultPageConcurrency,
		PageBudget:      DefaultPageBudget,
		WaitTimeout:     DefaultWaitTimeout,
		PollInterval:    DefaultPollInterval,
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.PageConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.WaitTimeout <= 0 {
		return ErrInvalidWaitTimeout
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.JSON && c.Markdown {
		return ErrConflictingReportFormats
	}
	return nil
}

// XDGDataDir returns the per-user data directory used for the run-history
// database.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
