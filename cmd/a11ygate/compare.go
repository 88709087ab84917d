package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/a11ygate/a11ygate/internal/config"
	"github.com/a11ygate/a11ygate/internal/database"
)

// NewCompareCmd creates the compare command.
// This command compares published run summaries stored in the local
// run-history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [site]",
		Short: "Compare audit runs with historical data",
		Long: `Compare displays differences between two recorded audit runs of a site.

This command retrieves run history from the local database and shows:
- New rules that started reporting findings since the base run
- Resolved rules that no longer report findings
- Whether the gating-finding count improved, worsened or stayed flat

The comparison requires at least two recorded runs for the specified site.
Use 'a11ygate audit' to record runs (runs are recorded automatically unless
--no-history is passed).

Examples:
  # Compare the latest two runs for a site
  a11ygate compare example

  # List recorded runs for a site
  a11ygate compare --list example

  # Compare the latest run against a specific base run
  a11ygate compare --with-run 20260830T120000Z-ab12cd34 example

  # Output comparison in JSON format
  a11ygate compare --json example

  # List all sites in the database
  a11ygate compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List run history for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all sites recorded in the database")

	// Comparison target flags
	cmd.Flags().StringP("with-run", "w", "",
		"Compare the latest run against this run token (use --list to see tokens)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so a usage error
	// cannot leave a lock behind.
	var site string
	if !listSites {
		if len(args) == 0 {
			return errors.New("site name is required (use --list-sites to see recorded sites)")
		}
		site = args[0]
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open run-history database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Read-mostly command

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if listSites {
		return listRecordedSites(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listRunHistory(ctx, db, site)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	baseToken, err := cmd.Flags().GetString("with-run")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, site, baseToken, jsonOutput)
}

// listRecordedSites lists all sites that have run records in the database.
func listRecordedSites(ctx context.Context, db *database.HistoryDB) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Println("No recorded runs found in the database.")
		fmt.Println("\nUse 'a11ygate audit' to audit a site and record the run.")
		return nil
	}

	fmt.Printf("Recorded sites (%d):\n\n", len(sites))
	for _, s := range sites {
		fmt.Printf("  • %s\n", s)
	}
	fmt.Println("\nUse 'a11ygate compare --list <site>' to see run history for a site.")

	return nil
}

// listRunHistory lists all recorded runs for a site.
func listRunHistory(ctx context.Context, db *database.HistoryDB, site string) error {
	runs, err := db.ListRuns(ctx, site, 0)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No run history found for %s\n", site)
		fmt.Println("\nUse 'a11ygate audit' to audit this site.")
		return nil
	}

	fmt.Printf("Run history for %s (%d runs):\n\n", site, len(runs))
	fmt.Printf("  %-28s  %-20s  %-6s  %s\n", "Run Token", "Date", "Mode", "Findings")
	fmt.Println("  " + strings.Repeat("-", 72))

	for _, run := range runs {
		fmt.Printf("  %-28s  %-20s  %-6s  %s\n",
			run.RunToken,
			run.GeneratedAt.Format("2006-01-02 15:04:05"),
			run.Mode,
			formatFindingCounts(run),
		)
	}

	fmt.Println("\nUse 'a11ygate compare <site>' to compare the latest two runs.")
	fmt.Println("Use 'a11ygate compare --with-run <token> <site>' to compare against a specific run.")

	return nil
}

// formatFindingCounts formats a run's finding counts for the history table.
func formatFindingCounts(run database.RunRecord) string {
	var parts []string
	if run.Gating > 0 {
		parts = append(parts, fmt.Sprintf("G:%d", run.Gating))
	}
	if run.Advisory > 0 {
		parts = append(parts, fmt.Sprintf("A:%d", run.Advisory))
	}
	if run.BestPractice > 0 {
		parts = append(parts, fmt.Sprintf("BP:%d", run.BestPractice))
	}
	if run.FailedPages > 0 {
		parts = append(parts, fmt.Sprintf("failed-pages:%d", run.FailedPages))
	}
	if len(parts) == 0 {
		return "No findings"
	}
	return strings.Join(parts, " ")
}

// runComparison resolves the base and target runs and prints the diff.
func runComparison(ctx context.Context, db *database.HistoryDB, site, baseToken string, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, site, 2)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		return fmt.Errorf("no run history found for %s", site)
	}
	if len(runs) < 2 && baseToken == "" {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}

	// The newest run is always the comparison target.
	targetToken := runs[0].RunToken
	if baseToken == "" {
		baseToken = runs[1].RunToken
	}
	if baseToken == targetToken {
		return fmt.Errorf("base run %q is the latest run; nothing to compare against", baseToken)
	}

	comparison, err := db.CompareRuns(ctx, baseToken, targetToken)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// outputComparisonJSON writes the comparison result as indented JSON.
func outputComparisonJSON(comparison *database.RunComparison) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(comparison); err != nil {
		return fmt.Errorf("failed to encode comparison: %w", err)
	}
	return nil
}

// outputComparisonText writes the comparison result in human-readable form.
func outputComparisonText(comparison *database.RunComparison) error {
	base := comparison.Base
	target := comparison.Target

	fmt.Printf("Comparison for %s\n", target.Site)
	fmt.Printf("  Base:   %s (%s)\n", base.RunToken, base.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Target: %s (%s)\n", target.RunToken, target.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Println()

	fmt.Printf("Gating findings: %d -> %d (%s)\n", base.Gating, target.Gating, comparison.Direction)
	fmt.Printf("Advisory findings: %d -> %d\n", base.Advisory, target.Advisory)
	fmt.Printf("Best-practice findings: %d -> %d\n", base.BestPractice, target.BestPractice)
	fmt.Printf("Failed pages: %d -> %d\n", base.FailedPages, target.FailedPages)

	if len(comparison.NewRules) > 0 {
		fmt.Printf("\nNew rules (%d):\n", len(comparison.NewRules))
		for _, rule := range comparison.NewRules {
			fmt.Printf("  + %s (%s, %d nodes on %d pages)\n",
				rule.RuleID, rule.Impact, rule.Nodes, rule.Pages)
		}
	}

	if len(comparison.ResolvedRules) > 0 {
		fmt.Printf("\nResolved rules (%d):\n", len(comparison.ResolvedRules))
		for _, rule := range comparison.ResolvedRules {
			fmt.Printf("  - %s (%s)\n", rule.RuleID, rule.Impact)
		}
	}

	if len(comparison.NewRules) == 0 && len(comparison.ResolvedRules) == 0 {
		fmt.Println("\nNo rule-level changes between the two runs.")
	}

	return nil
}
