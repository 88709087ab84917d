package coordinate

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/a11ygate/a11ygate/internal/model"
	"github.com/a11ygate/a11ygate/internal/store"
)

// Default wait parameters.
const (
	// DefaultWaitTimeout bounds how long a worker waits for a project to
	// complete. Five minutes covers slow pages without hanging forever.
	DefaultWaitTimeout = 300 * time.Second

	// DefaultPollInterval is the base directory-poll interval.
	DefaultPollInterval = 1 * time.Second

	// DefaultMaxPollInterval caps the backoff so a nearly-complete
	// project is still noticed promptly.
	DefaultMaxPollInterval = 5 * time.Second

	// DefaultBackoffFactor is the multiplicative poll backoff.
	DefaultBackoffFactor = 1.5
)

// WaitOptions controls one wait loop.
type WaitOptions struct {
	// Timeout is the wall-clock deadline for the whole wait.
	Timeout time.Duration

	// PollInterval is the initial sleep between polls.
	PollInterval time.Duration

	// MaxPollInterval caps the backed-off interval. Zero means no cap
	// beyond Timeout itself.
	MaxPollInterval time.Duration

	// BackoffFactor multiplies the interval after each empty poll.
	// Values <= 1 disable backoff.
	BackoffFactor float64
}

// DefaultWaitOptions returns the standard polling parameters.
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{
		Timeout:         DefaultWaitTimeout,
		PollInterval:    DefaultPollInterval,
		MaxPollInterval: DefaultMaxPollInterval,
		BackoffFactor:   DefaultBackoffFactor,
	}
}

// Waiter polls the report store until a project has produced the expected
// number of reports for the active run.
//
// Design decision: Polling over the shared directory is the simplest
// correct mechanism between processes that share no memory and no
// notification channel. The added latency is bounded by the poll interval;
// backoff keeps long waits cheap.
type Waiter struct {
	store  *store.Store
	logger *slog.Logger
}

// WaiterOption configures a Waiter.
type WaiterOption func(*Waiter)

// WithWaiterLogger sets a custom logger for the waiter.
func WithWaiterLogger(logger *slog.Logger) WaiterOption {
	return func(w *Waiter) {
		w.logger = logger
	}
}

// NewWaiter creates a Waiter over the given store.
func NewWaiter(st *store.Store, opts ...WaiterOption) *Waiter {
	w := &Waiter{store: st}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = slog.Default()
	}

	return w
}

// CompletionSet filters reports to the active run and valid indices,
// sorts them ascending by index and drops duplicate indices (first wins).
// The result is strictly ordered with no duplicates, which is what makes
// out-of-order concurrent writes safe to read.
func CompletionSet(reports []model.PageReport, runToken string) []model.PageReport {
	matched := make([]model.PageReport, 0, len(reports))
	for _, r := range reports {
		if r.RunToken != runToken || r.Index < 1 {
			continue
		}
		matched = append(matched, r)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Index < matched[j].Index
	})

	deduped := matched[:0]
	lastIndex := 0
	for _, r := range matched {
		if r.Index == lastIndex {
			continue
		}
		deduped = append(deduped, r)
		lastIndex = r.Index
	}

	return deduped
}

// Wait polls until the project has at least expected reports matching the
// run, then returns the first expected reports ordered by index. Exceeding
// the deadline returns a TimeoutError naming the expected count; this is a
// hard, surfaced failure of the coordination layer.
func (w *Waiter) Wait(ctx context.Context, run model.RunContext, project string, expected int, opts WaitOptions) ([]model.PageReport, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultWaitTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	start := time.Now()
	deadline := start.Add(opts.Timeout)
	interval := opts.PollInterval

	for {
		reports, err := w.store.Retrieve(project)
		if err != nil {
			return nil, err
		}

		ready := CompletionSet(reports, run.Token)
		if len(ready) >= expected {
			w.logger.Debug("project complete",
				"project", project,
				"expected", expected,
				"have", len(ready),
				"waited", time.Since(start),
			)
			return ready[:expected], nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &TimeoutError{
				Project:  project,
				Expected: expected,
				Have:     len(ready),
				Elapsed:  time.Since(start),
			}
		}

		sleep := interval
		if sleep > remaining {
			sleep = remaining
		}

		w.logger.Debug("project incomplete, polling again",
			"project", project,
			"expected", expected,
			"have", len(ready),
			"next_poll", sleep,
		)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		if opts.BackoffFactor > 1 {
			interval = time.Duration(float64(interval) * opts.BackoffFactor)
			if opts.MaxPollInterval > 0 && interval > opts.MaxPollInterval {
				interval = opts.MaxPollInterval
			}
		}
	}
}
