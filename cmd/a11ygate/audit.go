package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/a11ygate/a11ygate/internal/auditor"
	"github.com/a11ygate/a11ygate/internal/classify"
	"github.com/a11ygate/a11ygate/internal/config"
	"github.com/a11ygate/a11ygate/internal/coordinate"
	"github.com/a11ygate/a11ygate/internal/database"
	applog "github.com/a11ygate/a11ygate/internal/log"
	"github.com/a11ygate/a11ygate/internal/model"
	"github.com/a11ygate/a11ygate/internal/pipeline"
	"github.com/a11ygate/a11ygate/internal/report"
	"github.com/a11ygate/a11ygate/internal/store"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit a site's pages for accessibility issues",
		Long: `Audit runs the configured pages of a site through every configured
browser/viewport project, persists one report per (project, page), and
publishes a single consolidated sitewide summary per run.

In gate mode the command fails when the merged results contain gating
findings or pages that could not be audited; in audit mode the identical
data is recorded without failing.

Examples:
  # Audit the site described by .a11ygate.yaml
  a11ygate audit

  # Audit with a specific site configuration
  a11ygate audit -c mysite.yaml

  # Run a single project in its own process, sharing a run token
  # generated by the scheduler
  a11ygate audit --project desktop --run-token 20260831T120000Z-ab12cd34

  # Output the summary as JSON
  a11ygate audit --json

  # Write the summary to a file
  a11ygate audit -m -o summary.md`,
		Args: cobra.NoArgs,
		RunE: runAuditCmd,
	}

	// Configuration and output tree
	cmd.Flags().StringP("config", "c", "",
		"Site configuration file path (default: .a11ygate.yaml in current or home directory)")
	cmd.Flags().StringP("results", "r", config.DefaultResultsRoot,
		"Results tree shared by all workers of a run")

	// Run coordination flags
	cmd.Flags().String("run-token", "",
		"Run token shared by all worker processes (default: generate a fresh one)")
	cmd.Flags().String("project", "",
		"Run only the named project (for one-process-per-project scheduling)")
	cmd.Flags().Duration("wait-timeout", config.DefaultWaitTimeout,
		"Deadline for a project's completion wait")
	cmd.Flags().Duration("poll-interval", config.DefaultPollInterval,
		"Base interval for polling the shared results tree")

	// Audit behavior flags
	cmd.Flags().IntP("concurrency", "n", config.DefaultPageConcurrency,
		"Number of concurrent page audits per project")
	cmd.Flags().Duration("page-budget", config.DefaultPageBudget,
		"Wall-clock budget for a single page audit")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write summary to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-history", false,
		"Skip recording the published summary in the local run-history database")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	site, err := loadSiteConfig(cfg)
	if err != nil {
		return err
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	var run model.RunContext
	if cfg.RunToken != "" {
		run = model.RunContextFromToken(cfg.RunToken)
	} else {
		run = model.NewRunContext()
	}

	return runAudit(ctx, cfg, site, run, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigPath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.ResultsRoot, err = cmd.Flags().GetString("results")
	if err != nil {
		return nil, err
	}

	cfg.RunToken, err = cmd.Flags().GetString("run-token")
	if err != nil {
		return nil, err
	}

	cfg.Project, err = cmd.Flags().GetString("project")
	if err != nil {
		return nil, err
	}

	cfg.WaitTimeout, err = cmd.Flags().GetDuration("wait-timeout")
	if err != nil {
		return nil, err
	}

	cfg.PollInterval, err = cmd.Flags().GetDuration("poll-interval")
	if err != nil {
		return nil, err
	}

	cfg.PageConcurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.PageBudget, err = cmd.Flags().GetDuration("page-budget")
	if err != nil {
		return nil, err
	}

	cfg.JSON, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.Markdown, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.SkipHistory, err = cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadSiteConfig resolves and loads the site configuration file.
// An explicitly specified path that does not exist is an error; otherwise
// the default search locations are tried.
func loadSiteConfig(cfg *config.Config) (*config.SiteConfig, error) {
	path := config.FindConfigFile(cfg.ConfigPath)
	if path == "" {
		if cfg.ConfigPath != "" {
			return nil, fmt.Errorf("site configuration file not found: %s", cfg.ConfigPath)
		}
		return nil, fmt.Errorf("no site configuration found (run 'a11ygate init' to create %s)", config.DefaultConfigFile)
	}

	site, err := config.LoadSiteFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load site configuration %s: %w", path, err)
	}

	return site, nil
}

// runAudit wires the audit pipeline and executes the run.
func runAudit(ctx context.Context, cfg *config.Config, site *config.SiteConfig, run model.RunContext, logger *slog.Logger) error {
	st := store.New(cfg.ResultsRoot, site.Site, store.WithLogger(logger))
	waiter := coordinate.NewWaiter(st, coordinate.WithWaiterLogger(logger))
	aggregator := coordinate.NewAggregator(st, waiter, coordinate.WithAggregatorLogger(logger))
	gate := coordinate.NewGate(st, coordinate.WithGateLogger(logger))
	classifier := classify.New(site.FailOnSeverities, site.IgnoreRuleIDs)

	strategies, err := auditor.ParseStrategies(site.StabilityStrategies, 0)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	pageAuditor := auditor.NewHTTPAuditor(
		&http.Client{},
		strategies,
		auditor.WithAuditorLogger(logger),
	)

	waitOpts := coordinate.DefaultWaitOptions()
	waitOpts.Timeout = cfg.WaitTimeout
	waitOpts.PollInterval = cfg.PollInterval

	runner := pipeline.NewRunner(
		pageAuditor, classifier, st, waiter, aggregator, gate,
		pipeline.WithPageConcurrency(cfg.PageConcurrency),
		pipeline.WithPageBudget(cfg.PageBudget),
		pipeline.WithWaitOptions(waitOpts),
		pipeline.WithRunnerLogger(logger),
	)

	logger.Info("starting audit run",
		"site", site.Site,
		"run_token", run.Token,
		"projects", len(site.Projects),
		"pages", len(site.Pages),
		"mode", site.Mode,
	)

	var summary *model.SiteSummary

	if cfg.Project != "" {
		project, ok := site.FindProject(cfg.Project)
		if !ok {
			return fmt.Errorf("project %q not found in site configuration", cfg.Project)
		}

		published, err := runner.RunProject(ctx, run, site, project)
		if err != nil {
			return err
		}
		if !published {
			logger.Info("project reports persisted; summary left to a sibling worker",
				"project", project.Name,
				"run_token", run.Token,
			)
			return nil
		}

		summary, err = st.ReadSummary(run.Token)
		if err != nil {
			return err
		}
	} else {
		summary, err = runner.RunSite(ctx, run, site)
		if err != nil {
			return err
		}
	}

	if !cfg.SkipHistory {
		saveHistory(ctx, summary, logger)
	}

	if err := writeSummary(cfg, summary); err != nil {
		return err
	}

	return report.Verdict(summary)
}

// saveHistory records the summary in the local run-history database.
// History is a convenience for the compare command; failures are logged,
// never fatal to the run.
func saveHistory(ctx context.Context, summary *model.SiteSummary, logger *slog.Logger) {
	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open run-history database", "error", err)
		return
	}
	defer db.Close() //nolint:errcheck // Best-effort history write

	if err := db.SaveSummary(ctx, summary); err != nil {
		logger.Warn("failed to record run in history", "error", err)
	}
}

// writeSummary renders the summary in the selected format to stdout or
// the configured output file.
func writeSummary(cfg *config.Config, summary *model.SiteSummary) error {
	var out io.Writer = os.Stdout

	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Write error dominates
		out = f
	}

	var writer report.Writer
	switch {
	case cfg.JSON:
		writer = report.NewJSONWriter(out, report.WithPrettyPrint())
	default:
		// Markdown is the default human-facing format.
		writer = report.NewMarkdownWriter(out)
	}

	if _, err := writer.WriteSummary(summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	return nil
}
