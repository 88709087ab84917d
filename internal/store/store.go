package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/a11ygate/a11ygate/internal/model"
)

// GlobalDirName is the reserved directory under the site root that holds
// per-run summary artifacts. Project discovery must never treat it as a
// project.
const GlobalDirName = "__global"

// Store reads and writes page reports for one site under a results root.
// It is safe for concurrent use: writers never target the same file
// because each key is unique per (project, index), and readers tolerate
// partially populated directories.
type Store struct {
	// siteDir is <results-root>/<site-slug>.
	siteDir string

	// resolver decides the terminal status of reports persisted while
	// still in their initial state.
	resolver model.StatusResolver

	// logger is used for structured logging.
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithStatusResolver overrides the policy applied to reports that reach
// Persist without a resolved status. The default maps them to passed.
func WithStatusResolver(resolver model.StatusResolver) Option {
	return func(s *Store) {
		s.resolver = resolver
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store rooted at <resultsRoot>/<slug(site)>.
func New(resultsRoot, site string, opts ...Option) *Store {
	s := &Store{
		siteDir:  filepath.Join(resultsRoot, Slug(site)),
		resolver: model.DefaultStatusResolver,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// SiteDir returns the site-scoped root directory.
func (s *Store) SiteDir() string {
	return s.siteDir
}

// ProjectDir returns the directory holding one project's page reports.
func (s *Store) ProjectDir(project string) string {
	return filepath.Join(s.siteDir, Slug(project))
}

// GlobalDir returns the reserved directory for per-run summary artifacts.
func (s *Store) GlobalDir() string {
	return filepath.Join(s.siteDir, GlobalDirName)
}

// FlagPath returns the path of the summary flag for a run. The flag's
// existence is the publish-once synchronization point between workers.
func (s *Store) FlagPath(runToken string) string {
	return filepath.Join(s.GlobalDir(), runToken+"-summary.json")
}

// SummaryPath returns the path of the sitewide summary artifact for a run.
func (s *Store) SummaryPath(runToken string) string {
	return filepath.Join(s.GlobalDir(), runToken+"-sitewide.json")
}

// ReportFileName builds the collision-free key for one page report:
// a 4-digit zero-padded index joined with the page slug.
func ReportFileName(index int, page string) string {
	return fmt.Sprintf("%04d-%s.json", index, Slug(page))
}

// Persist writes the report under its (project, index) key. A report still
// in its initial state is resolved through the store's status policy
// before it hits disk, so "skipped" never survives to readers.
// Returns the path the report was written to.
func (s *Store) Persist(project string, index int, report *model.PageReport) (string, error) {
	report.Finalize(s.resolver)

	dir := s.ProjectDir(project)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal page report: %w", err)
	}

	path := filepath.Join(dir, ReportFileName(index, report.Page))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write page report: %w", err)
	}

	s.logger.Debug("persisted page report",
		"project", project,
		"page", report.Page,
		"index", index,
		"status", report.Status,
		"path", path,
	)

	return path, nil
}

// Retrieve lists and parses all stored reports for a project, in directory
// order (callers sort by Index; write order and listing order carry no
// guarantee). A missing project directory yields an empty list, not an
// error: the project may simply not have started writing yet. Files that
// fail to parse are skipped with a warning so one torn or foreign file
// cannot wedge the whole run.
func (s *Store) Retrieve(project string) ([]model.PageReport, error) {
	dir := s.ProjectDir(project)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.PageReport{}, nil
		}
		return nil, fmt.Errorf("failed to list project directory: %w", err)
	}

	reports := make([]model.PageReport, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path) //nolint:gosec // Path is store-derived, not user input
		if err != nil {
			s.logger.Warn("failed to read page report", "path", path, "error", err)
			continue
		}

		var report model.PageReport
		if err := json.Unmarshal(data, &report); err != nil {
			s.logger.Warn("skipping unparsable page report", "path", path, "error", err)
			continue
		}

		reports = append(reports, report)
	}

	return reports, nil
}

// ListProjectDirs returns the names of all project directories under the
// site root, excluding the reserved global directory. A missing site root
// yields an empty list.
func (s *Store) ListProjectDirs() ([]string, error) {
	entries, err := os.ReadDir(s.siteDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list site directory: %w", err)
	}

	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == GlobalDirName {
			continue
		}
		dirs = append(dirs, entry.Name())
	}

	return dirs, nil
}

// ReadSummary loads a previously published sitewide summary for a run.
func (s *Store) ReadSummary(runToken string) (*model.SiteSummary, error) {
	data, err := os.ReadFile(s.SummaryPath(runToken)) //nolint:gosec // Path is store-derived
	if err != nil {
		return nil, fmt.Errorf("failed to read sitewide summary: %w", err)
	}

	var summary model.SiteSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse sitewide summary: %w", err)
	}

	return &summary, nil
}
