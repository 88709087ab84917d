package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/a11ygate/a11ygate/internal/auditor"
	"github.com/a11ygate/a11ygate/internal/classify"
	"github.com/a11ygate/a11ygate/internal/config"
	"github.com/a11ygate/a11ygate/internal/coordinate"
	"github.com/a11ygate/a11ygate/internal/model"
	"github.com/a11ygate/a11ygate/internal/report"
	"github.com/a11ygate/a11ygate/internal/store"
)

// DefaultPageConcurrency bounds concurrent page audits within one project
// when no option overrides it.
const DefaultPageConcurrency = 4

// DefaultPageBudget is the per-page audit budget when no option overrides
// it. Deliberately generous: a slow site under test is a finding, not an
// infrastructure fault.
const DefaultPageBudget = 2 * time.Hour

// Runner executes audit runs over one site.
//
// Design decision: A single Runner serves all projects of a run rather
// than one Runner per project, because every dependency it holds (auditor,
// store, coordination primitives) is safe for concurrent use and sharing
// keeps HTTP connection pooling effective across projects.
type Runner struct {
	auditor    auditor.PageAuditor
	classifier *classify.Classifier
	store      *store.Store
	waiter     *coordinate.Waiter
	aggregator *coordinate.Aggregator
	gate       *coordinate.Gate

	// concurrency bounds concurrent page audits within one project.
	concurrency int

	// pageBudget is the wall-clock budget for one page audit.
	pageBudget time.Duration

	// waitOpts controls the own-project completion wait.
	waitOpts coordinate.WaitOptions

	// logger is used for structured logging.
	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithPageConcurrency bounds concurrent page audits within one project.
func WithPageConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithPageBudget overrides the per-page audit budget.
func WithPageBudget(budget time.Duration) RunnerOption {
	return func(r *Runner) {
		if budget > 0 {
			r.pageBudget = budget
		}
	}
}

// WithWaitOptions overrides the own-project completion wait parameters.
func WithWaitOptions(opts coordinate.WaitOptions) RunnerOption {
	return func(r *Runner) {
		r.waitOpts = opts
	}
}

// WithRunnerLogger sets a custom logger for the runner.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(
	pageAuditor auditor.PageAuditor,
	classifier *classify.Classifier,
	st *store.Store,
	waiter *coordinate.Waiter,
	aggregator *coordinate.Aggregator,
	gate *coordinate.Gate,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		auditor:     pageAuditor,
		classifier:  classifier,
		store:       st,
		waiter:      waiter,
		aggregator:  aggregator,
		gate:        gate,
		concurrency: DefaultPageConcurrency,
		pageBudget:  DefaultPageBudget,
		waitOpts:    coordinate.DefaultWaitOptions(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// RunProject executes one project end to end: audit all configured pages
// concurrently, persist their reports, wait for the project's completion
// set, attempt sitewide aggregation, and race to publish the summary.
//
// Returns true if this project's worker won the publish race. A sibling
// project still being incomplete is not an error: the attempt is simply
// not ready and some other worker will publish.
func (r *Runner) RunProject(ctx context.Context, run model.RunContext, site *config.SiteConfig, project config.Project) (bool, error) {
	r.logger.Info("starting project audit",
		"project", project.Name,
		"pages", len(site.Pages),
		"run_token", run.Token,
	)

	g, pageCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, page := range site.Pages {
		page := page
		index := i + 1
		g.Go(func() error {
			// Page failures soft-continue via report status; only
			// persistence failures propagate, because an unwritable
			// results tree breaks coordination for everyone.
			rep := r.auditPage(pageCtx, run, site, project, page, index)
			if _, err := r.store.Persist(project.Name, index, rep); err != nil {
				return fmt.Errorf("project %q page %q: %w", project.Name, page, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return false, err
	}

	// Reports may have been written out of order; the waiter re-reads
	// them sorted by index and confirms this project's completion set.
	if _, err := r.waiter.Wait(ctx, run, project.Name, len(site.Pages), r.waitOpts); err != nil {
		return false, err
	}

	merged, err := r.aggregator.Aggregate(ctx, run, len(site.Pages))
	if err != nil {
		if errors.Is(err, coordinate.ErrNotReady) {
			r.logger.Info("sibling projects not ready, leaving publish to another worker",
				"project", project.Name,
				"run_token", run.Token,
			)
			return false, nil
		}
		return false, err
	}

	published, err := r.gate.TryPublish(ctx, run, project.Name, func(context.Context) (*model.SiteSummary, error) {
		return report.BuildSiteSummary(site, run, merged, r.classifier), nil
	})
	if err != nil {
		return false, err
	}

	return published, nil
}

// RunSite executes all configured projects concurrently, one goroutine per
// project, and returns the published sitewide summary.
//
// If every project's aggregation attempt found a sibling incomplete (a
// timing artifact possible when attempts race the last writes), a final
// aggregation with the full wait window publishes the summary before
// returning.
func (r *Runner) RunSite(ctx context.Context, run model.RunContext, site *config.SiteConfig) (*model.SiteSummary, error) {
	start := time.Now()

	g, projectCtx := errgroup.WithContext(ctx)
	for _, project := range site.Projects {
		project := project
		g.Go(func() error {
			published, err := r.RunProject(projectCtx, run, site, project)
			if err != nil {
				return err
			}
			if published {
				r.logger.Info("project won publish race",
					"project", project.Name,
					"run_token", run.Token,
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary, err := r.store.ReadSummary(run.Token)
	if err == nil {
		r.logger.Info("site audit complete",
			"site", site.Site,
			"pages", summary.PageCount,
			"elapsed", time.Since(start),
		)
		return summary, nil
	}

	// No worker published: aggregate once more with the full window.
	merged, err := r.aggregator.Aggregate(ctx, run, len(site.Pages))
	if err != nil {
		return nil, fmt.Errorf("final aggregation failed: %w", err)
	}

	if _, err := r.gate.TryPublish(ctx, run, "coordinator", func(context.Context) (*model.SiteSummary, error) {
		return report.BuildSiteSummary(site, run, merged, r.classifier), nil
	}); err != nil {
		return nil, err
	}

	return r.store.ReadSummary(run.Token)
}
