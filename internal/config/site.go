package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Run modes.
const (
	// ModeGate fails the run when the merged results contain gating
	// findings or forced page failures.
	ModeGate = "gate"

	// ModeAudit records the identical data without failing the run.
	ModeAudit = "audit"
)

// Default classification and stability settings applied when the site
// file omits them.
var (
	// DefaultFailOnSeverities gates on the two highest impact levels.
	DefaultFailOnSeverities = []string{"critical", "serious"}

	// DefaultStabilityStrategies is the ordered heuristic list: strict
	// first, unconditional fallback last.
	DefaultStabilityStrategies = []string{"content-hash", "node-count", "quiet-period"}
)

// Project describes one browser-engine/viewport execution context.
// Pages are audited once per project.
type Project struct {
	// Name identifies the project and names its report directory.
	Name string `yaml:"name"`

	// Viewport is a free-form viewport description (e.g. "1280x720"),
	// surfaced to auditors that can apply it.
	Viewport string `yaml:"viewport,omitempty"`
}

// SiteConfig describes the site under test, loaded from the YAML site
// file. All coordination parameters derive from it: the page list fixes
// the expected report count and the 1-based page indices, and the project
// list fixes the sibling set.
type SiteConfig struct {
	// Site is the site name; its slug roots the output tree.
	Site string `yaml:"site"`

	// BaseURL is the absolute URL page paths are resolved against.
	BaseURL string `yaml:"baseURL"`

	// Pages are the site-relative paths to audit, in index order.
	Pages []string `yaml:"pages"`

	// Projects are the execution contexts to audit every page in.
	Projects []Project `yaml:"projects"`

	// Mode selects gate or audit behavior. Defaults to gate.
	Mode string `yaml:"mode,omitempty"`

	// FailOnSeverities lists the severities that gate, matched
	// case-insensitively. Defaults to critical and serious.
	FailOnSeverities []string `yaml:"failOnSeverities,omitempty"`

	// IgnoreRuleIDs lists rule ids dropped before classification.
	IgnoreRuleIDs []string `yaml:"ignoreRuleIds,omitempty"`

	// StabilityStrategies is the ordered list of heuristics used to
	// decide a page is render-stable.
	StabilityStrategies []string `yaml:"stabilityStrategies,omitempty"`

	// Headers are extra HTTP headers sent with every page request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Cookie is an HTTP cookie sent with every page request.
	// Format: "name=value" or "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`
}

// ApplyDefaults fills in unset optional fields.
func (sc *SiteConfig) ApplyDefaults() {
	if sc.Mode == "" {
		sc.Mode = ModeGate
	}
	if len(sc.FailOnSeverities) == 0 {
		sc.FailOnSeverities = append([]string{}, DefaultFailOnSeverities...)
	}
	if len(sc.StabilityStrategies) == 0 {
		sc.StabilityStrategies = append([]string{}, DefaultStabilityStrategies...)
	}
}

// Validate checks the site configuration for completeness.
func (sc *SiteConfig) Validate() error {
	if strings.TrimSpace(sc.Site) == "" {
		return ErrNoSite
	}
	if strings.TrimSpace(sc.BaseURL) == "" {
		return ErrNoBaseURL
	}
	if u, err := url.Parse(sc.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid baseURL %q: must be an absolute URL", sc.BaseURL)
	}
	if len(sc.Pages) == 0 {
		return ErrNoPages
	}
	if len(sc.Projects) == 0 {
		return ErrNoProjects
	}
	if sc.Mode != ModeGate && sc.Mode != ModeAudit {
		return fmt.Errorf("%w: got %q", ErrInvalidMode, sc.Mode)
	}

	seen := make(map[string]bool, len(sc.Projects))
	for _, p := range sc.Projects {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return ErrNoProjects
		}
		if seen[name] {
			return fmt.Errorf("%w: %q", ErrDuplicateProject, name)
		}
		seen[name] = true
	}

	return nil
}

// FindProject returns the project with the given name.
func (sc *SiteConfig) FindProject(name string) (Project, bool) {
	for _, p := range sc.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

// PageURL resolves a configured page path against the base URL.
func (sc *SiteConfig) PageURL(page string) string {
	base := strings.TrimSuffix(sc.BaseURL, "/")
	if page == "" || page == "/" {
		return base + "/"
	}
	return base + "/" + strings.TrimPrefix(page, "/")
}
