package coordinate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/a11ygate/a11ygate/internal/model"
	"github.com/a11ygate/a11ygate/internal/store"
)

// Default aggregation attempt parameters. The attempt window is short on
// purpose: a worker whose siblings are not done yet abandons the attempt
// and retries later instead of blocking, so workers can never deadlock
// waiting on each other.
const (
	DefaultAttemptTimeout = 10 * time.Second
	DefaultAttemptPoll    = 1 * time.Second
)

// Aggregator discovers sibling projects participating in the same run and
// merges their completed report sets.
type Aggregator struct {
	store  *store.Store
	waiter *Waiter
	logger *slog.Logger

	// attemptTimeout bounds the per-project wait inside one aggregation
	// attempt.
	attemptTimeout time.Duration

	// attemptPoll is the poll interval used within an attempt.
	attemptPoll time.Duration
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithAttemptWindow overrides the per-project wait window of one
// aggregation attempt.
func WithAttemptWindow(timeout, poll time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if timeout > 0 {
			a.attemptTimeout = timeout
		}
		if poll > 0 {
			a.attemptPoll = poll
		}
	}
}

// WithAggregatorLogger sets a custom logger for the aggregator.
func WithAggregatorLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// NewAggregator creates an Aggregator over the given store and waiter.
func NewAggregator(st *store.Store, waiter *Waiter, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		store:          st,
		waiter:         waiter,
		attemptTimeout: DefaultAttemptTimeout,
		attemptPoll:    DefaultAttemptPoll,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// DiscoverProjects lists the project directories under the site root,
// excluding the reserved global directory, and keeps those containing at
// least one report tagged with the active run. If token filtering yields
// nothing (the very first read can race the first writes), all discovered
// directories are returned as a bootstrap fallback.
func (a *Aggregator) DiscoverProjects(run model.RunContext) ([]string, error) {
	dirs, err := a.store.ListProjectDirs()
	if err != nil {
		return nil, err
	}

	active := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		reports, err := a.store.Retrieve(dir)
		if err != nil {
			return nil, err
		}
		for _, r := range reports {
			if r.RunToken == run.Token {
				active = append(active, dir)
				break
			}
		}
	}

	if len(active) == 0 {
		a.logger.Debug("no projects matched run token, falling back to all directories",
			"run_token", run.Token,
			"directories", len(dirs),
		)
		return dirs, nil
	}

	return active, nil
}

// Aggregate waits on every discovered project within the short attempt
// window and returns the concatenation of their completion sets, each
// truncated to expectedPerProject to protect against stray duplicate
// writes. If any project is not ready in time the whole attempt returns
// ErrNotReady so the caller can retry cheaply.
func (a *Aggregator) Aggregate(ctx context.Context, run model.RunContext, expectedPerProject int) ([]model.PageReport, error) {
	projects, err := a.DiscoverProjects(run)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("no project directories found: %w", ErrNotReady)
	}

	opts := WaitOptions{
		Timeout:      a.attemptTimeout,
		PollInterval: a.attemptPoll,
	}

	merged := make([]model.PageReport, 0, len(projects)*expectedPerProject)
	for _, project := range projects {
		set, err := a.waiter.Wait(ctx, run, project, expectedPerProject, opts)
		if err != nil {
			if errors.Is(err, ErrWaitTimeout) {
				a.logger.Debug("aggregation attempt abandoned",
					"project", project,
					"run_token", run.Token,
				)
				return nil, fmt.Errorf("project %q incomplete: %w", project, ErrNotReady)
			}
			return nil, err
		}
		merged = append(merged, set...)
	}

	a.logger.Info("aggregated sibling projects",
		"projects", len(projects),
		"reports", len(merged),
		"run_token", run.Token,
	)

	return merged, nil
}
