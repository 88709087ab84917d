package auditor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Default HTTP auditor parameters.
const (
	// DefaultMaxBodySize caps the response body read per fetch. 5MB is
	// sufficient for any sane HTML document.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultStabilityBudget bounds the whole stability probe for one
	// page. A page that never settles within this budget is reported as
	// stability-timeout, not retried.
	DefaultStabilityBudget = 30 * time.Second

	// DefaultUserAgent identifies the auditor in HTTP requests.
	DefaultUserAgent = "a11ygate/1.0 (+https://github.com/a11ygate/a11ygate)"
)

// HTTPAuditor is the built-in PageAuditor. It fetches pages over plain
// HTTP(S) and runs the generic document checks.
//
// Design decision: We require an external http.Client rather than
// creating one internally so connection pooling is shared across the
// project's concurrent page audits and tests can inject a transport.
type HTTPAuditor struct {
	// client is the shared HTTP client.
	client *http.Client

	// strategies are the ordered render-stability heuristics.
	strategies []StabilityStrategy

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize limits the response body size per fetch.
	maxBodySize int64

	// stabilityBudget bounds the stability probe per page.
	stabilityBudget time.Duration

	// logger is used for structured logging.
	logger *slog.Logger
}

// HTTPAuditorOption configures an HTTPAuditor.
type HTTPAuditorOption func(*HTTPAuditor)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) HTTPAuditorOption {
	return func(a *HTTPAuditor) {
		a.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size per fetch.
func WithMaxBodySize(size int64) HTTPAuditorOption {
	return func(a *HTTPAuditor) {
		a.maxBodySize = size
	}
}

// WithStabilityBudget bounds the stability probe per page.
func WithStabilityBudget(budget time.Duration) HTTPAuditorOption {
	return func(a *HTTPAuditor) {
		a.stabilityBudget = budget
	}
}

// WithAuditorLogger sets a custom logger for the auditor.
func WithAuditorLogger(logger *slog.Logger) HTTPAuditorOption {
	return func(a *HTTPAuditor) {
		a.logger = logger
	}
}

// NewHTTPAuditor creates an HTTPAuditor using the given client and
// stability strategies.
func NewHTTPAuditor(client *http.Client, strategies []StabilityStrategy, opts ...HTTPAuditorOption) *HTTPAuditor {
	a := &HTTPAuditor{
		client:          client,
		strategies:      strategies,
		userAgent:       DefaultUserAgent,
		maxBodySize:     DefaultMaxBodySize,
		stabilityBudget: DefaultStabilityBudget,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Audit fetches the page, probes stability and runs the document checks.
//
// An HTTP error status or a failed stability probe is a successful audit
// whose result records the outcome; the returned error is reserved for
// navigation and scan failures. When an error is returned alongside a
// non-nil result, the result carries the diagnostics gathered so far.
func (a *HTTPAuditor) Audit(ctx context.Context, target PageTarget) (*PageResult, error) {
	body, status, err := a.fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("navigation failed for %s: %w", target.URL, err)
	}

	result := &PageResult{HTTPStatus: status}

	if status >= 400 {
		result.Notes = append(result.Notes, fmt.Sprintf("navigation returned HTTP %d", status))
		return result, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, a.stabilityBudget)
	defer cancel()

	refetch := func(ctx context.Context) ([]byte, error) {
		b, _, err := a.fetch(ctx, target)
		return b, err
	}
	result.Stability = ProbeStability(probeCtx, a.strategies, body, refetch, a.logger)

	if !result.Stability.OK {
		result.Notes = append(result.Notes,
			fmt.Sprintf("page did not stabilize within %s", a.stabilityBudget))
		return result, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return result, fmt.Errorf("scan failed for %s: %w", target.URL, err)
	}

	result.Findings = runDocumentChecks(doc)

	a.logger.Debug("page audited",
		"project", target.Project,
		"page", target.Page,
		"http_status", status,
		"findings", len(result.Findings),
	)

	return result, nil
}

// fetch performs one GET of the target and returns the size-capped body
// and status code.
func (a *HTTPAuditor) fetch(ctx context.Context, target PageTarget) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("User-Agent", a.userAgent)
	for name, value := range target.Headers {
		req.Header.Set(name, value)
	}
	if target.Cookie != "" {
		req.Header.Set("Cookie", target.Cookie)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close() //nolint:errcheck // Read error dominates close error

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}
