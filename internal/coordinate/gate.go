package coordinate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/a11ygate/a11ygate/internal/model"
	"github.com/a11ygate/a11ygate/internal/store"
)

// SummaryBuilder computes the sitewide summary for a run. It is invoked at
// most once per run by the gate: only the worker that wins the flag claim
// ever calls it.
type SummaryBuilder func(ctx context.Context) (*model.SiteSummary, error)

// Gate guarantees the sitewide summary is published once per run.
//
// Design decision: The flag file is claimed with an atomic exclusive
// create (O_CREATE|O_EXCL) before the summary is computed, not after. A
// check-then-act sequence would leave a window where two workers both
// observe "flag absent" and both publish; claiming first closes that
// window and also bounds the summary computation to one worker. If the
// build or the artifact write fails after the claim, the flag is removed
// so a sibling can retry.
type Gate struct {
	store  *store.Store
	logger *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithGateLogger sets a custom logger for the gate.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a Gate over the given store.
func NewGate(st *store.Store, opts ...GateOption) *Gate {
	g := &Gate{store: st}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g
}

// TryPublish attempts to publish the sitewide summary for the run on
// behalf of the named project. It returns false with no error if another
// worker already holds the flag; in that case the builder is never
// invoked. It returns true once the summary artifact is durably written.
func (g *Gate) TryPublish(ctx context.Context, run model.RunContext, project string, build SummaryBuilder) (bool, error) {
	if err := os.MkdirAll(g.store.GlobalDir(), 0750); err != nil {
		return false, fmt.Errorf("failed to create global directory: %w", err)
	}

	flagPath := g.store.FlagPath(run.Token)

	// Atomic claim: exactly one worker can create the flag.
	f, err := os.OpenFile(flagPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600) //nolint:gosec // Path is store-derived
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			g.logger.Debug("summary already published, skipping",
				"run_token", run.Token,
				"project", project,
			)
			return false, nil
		}
		return false, fmt.Errorf("failed to claim summary flag: %w", err)
	}

	flag := model.SummaryFlag{
		AttachedAt: time.Now().UTC(),
		Project:    project,
	}

	if err := writeFlag(f, flag); err != nil {
		g.release(flagPath)
		return false, err
	}

	summary, err := build(ctx)
	if err != nil {
		g.release(flagPath)
		return false, fmt.Errorf("failed to build sitewide summary: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		g.release(flagPath)
		return false, fmt.Errorf("failed to marshal sitewide summary: %w", err)
	}

	if err := os.WriteFile(g.store.SummaryPath(run.Token), data, 0600); err != nil {
		g.release(flagPath)
		return false, fmt.Errorf("failed to write sitewide summary: %w", err)
	}

	g.logger.Info("published sitewide summary",
		"run_token", run.Token,
		"project", project,
		"pages", summary.PageCount,
		"gating", summary.GatingCount,
	)

	return true, nil
}

// writeFlag serializes the marker record into the claimed flag file.
func writeFlag(f *os.File, flag model.SummaryFlag) error {
	defer f.Close() //nolint:errcheck // Close error is surfaced via Encode or Sync

	if err := json.NewEncoder(f).Encode(flag); err != nil {
		return fmt.Errorf("failed to write summary flag: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync summary flag: %w", err)
	}
	return nil
}

// release removes the claimed flag so a sibling worker can retry after a
// failed publish attempt.
func (g *Gate) release(flagPath string) {
	if err := os.Remove(flagPath); err != nil {
		g.logger.Warn("failed to release summary flag", "path", flagPath, "error", err)
	}
}
