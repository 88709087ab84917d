package auditor

import (
	"context"

	"github.com/a11ygate/a11ygate/internal/model"
)

// PageTarget identifies one page to audit within one project.
type PageTarget struct {
	// URL is the absolute URL of the page.
	URL string

	// Page is the site-relative path, as configured.
	Page string

	// Project is the browser/viewport execution context name.
	Project string

	// Headers are extra request headers from site configuration.
	Headers map[string]string

	// Cookie is an optional Cookie header value from site configuration.
	Cookie string
}

// PageResult holds the raw outcome of auditing one page: the finding list
// plus page-load diagnostics. Findings are unclassified; tiering is the
// caller's concern.
type PageResult struct {
	// HTTPStatus is the response status code, zero if navigation never
	// produced a response.
	HTTPStatus int

	// Stability is the render-stability probe outcome, nil if the probe
	// never ran.
	Stability *model.Stability

	// Findings is the raw finding list from the document checks.
	Findings []model.Finding

	// Notes carries free-form diagnostics for the report.
	Notes []string
}

// PageAuditor scans one page in one project.
//
// Implementations must be safe for concurrent use: the pipeline audits a
// project's pages in parallel through a single auditor instance.
type PageAuditor interface {
	// Audit scans the target page. A navigation or scan failure is
	// returned as an error; an HTTP error status or failed stability
	// probe is a successful audit whose PageResult records the outcome.
	Audit(ctx context.Context, target PageTarget) (*PageResult, error)
}
