package database

import (
	"context"
	"testing"
	"time"

	"github.com/a11ygate/a11ygate/internal/model"
)

// openTestDB opens a history database in a temp directory.
func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return db
}

// sampleSummary returns a summary for history tests.
func sampleSummary(site, token string, generatedAt time.Time, gating int) *model.SiteSummary {
	return &model.SiteSummary{
		Site:        site,
		RunToken:    token,
		GeneratedAt: generatedAt,
		Mode:        "gate",
		Projects:    []string{"desktop", "mobile"},
		PageCount:   4,
		GatingCount: gating,
		FailedPages: 1,
		Rules: []model.RuleRollup{
			{RuleID: "image-alt", Impact: "critical", HelpURL: "https://example.test/image-alt",
				Nodes: 4, Pages: 2, Projects: []string{"desktop", "mobile"}},
			{RuleID: "link-name", Impact: "serious", Nodes: 1, Pages: 1, Projects: []string{"desktop"}},
		},
	}
}

// TestOpenMissingWithoutCreate tests the no-create open mode.
func TestOpenMissingWithoutCreate(t *testing.T) {
	t.Parallel()

	opts := Options{CreateIfNotExists: false}
	if _, err := Open(t.TempDir(), opts); err == nil {
		t.Error("expected error opening a missing database without create")
	}
}

// TestSaveAndListRuns tests the summary persistence roundtrip.
func TestSaveAndListRuns(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	if err := db.SaveSummary(ctx, sampleSummary("example", "t1", base, 3)); err != nil {
		t.Fatalf("SaveSummary() error: %v", err)
	}
	if err := db.SaveSummary(ctx, sampleSummary("example", "t2", base.Add(time.Hour), 1)); err != nil {
		t.Fatalf("SaveSummary() error: %v", err)
	}

	runs, err := db.ListRuns(ctx, "example", 0)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, expected 2", len(runs))
	}

	// Newest first
	if runs[0].RunToken != "t2" || runs[1].RunToken != "t1" {
		t.Errorf("run order = [%s %s], expected newest first", runs[0].RunToken, runs[1].RunToken)
	}
	if runs[0].Gating != 1 || runs[0].PageCount != 4 || runs[0].ProjectCount != 2 {
		t.Errorf("run record mismatch: %+v", runs[0])
	}
	if !runs[1].GeneratedAt.Equal(base) {
		t.Errorf("GeneratedAt = %s, expected %s", runs[1].GeneratedAt, base)
	}

	// Limit applies
	limited, err := db.ListRuns(ctx, "example", 1)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(limited) != 1 || limited[0].RunToken != "t2" {
		t.Errorf("limited runs = %v", limited)
	}
}

// TestSaveSummaryIdempotent tests upsert semantics on the run token.
func TestSaveSummaryIdempotent(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	if err := db.SaveSummary(ctx, sampleSummary("example", "t1", at, 3)); err != nil {
		t.Fatalf("SaveSummary() error: %v", err)
	}
	// A rerun of the persistence step replaces the previous rows
	if err := db.SaveSummary(ctx, sampleSummary("example", "t1", at, 5)); err != nil {
		t.Fatalf("second SaveSummary() error: %v", err)
	}

	runs, err := db.ListRuns(ctx, "example", 0)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, expected 1", len(runs))
	}
	if runs[0].Gating != 5 {
		t.Errorf("Gating = %d, expected the replacement value 5", runs[0].Gating)
	}

	rollups, err := db.GetRollups(ctx, "t1")
	if err != nil {
		t.Fatalf("GetRollups() error: %v", err)
	}
	if len(rollups) != 2 {
		t.Errorf("len(rollups) = %d, expected 2 (no duplicates)", len(rollups))
	}
}

// TestGetRun tests single-run lookup.
func TestGetRun(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveSummary(ctx, sampleSummary("example", "t1", time.Now().UTC(), 2)); err != nil {
		t.Fatalf("SaveSummary() error: %v", err)
	}

	record, err := db.GetRun(ctx, "t1")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if record == nil || record.Site != "example" {
		t.Errorf("GetRun() = %+v", record)
	}

	missing, err := db.GetRun(ctx, "absent")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for an unknown run token")
	}
}

// TestGetRollups tests rollup retrieval including the project list.
func TestGetRollups(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveSummary(ctx, sampleSummary("example", "t1", time.Now().UTC(), 2)); err != nil {
		t.Fatalf("SaveSummary() error: %v", err)
	}

	rollups, err := db.GetRollups(ctx, "t1")
	if err != nil {
		t.Fatalf("GetRollups() error: %v", err)
	}
	if len(rollups) != 2 {
		t.Fatalf("len(rollups) = %d, expected 2", len(rollups))
	}

	byID := make(map[string]model.RuleRollup, len(rollups))
	for _, r := range rollups {
		byID[r.RuleID] = r
	}
	imageAlt := byID["image-alt"]
	if imageAlt.Nodes != 4 || imageAlt.Pages != 2 {
		t.Errorf("image-alt rollup = %+v", imageAlt)
	}
	if len(imageAlt.Projects) != 2 {
		t.Errorf("image-alt projects = %v, expected 2 entries", imageAlt.Projects)
	}
}

// TestListSites tests distinct-site listing.
func TestListSites(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, pair := range []struct{ site, token string }{
		{"alpha", "a1"}, {"beta", "b1"}, {"alpha", "a2"},
	} {
		if err := db.SaveSummary(ctx, sampleSummary(pair.site, pair.token, now.Add(time.Duration(i)*time.Minute), 0)); err != nil {
			t.Fatalf("SaveSummary() error: %v", err)
		}
	}

	sites, err := db.ListSites(ctx)
	if err != nil {
		t.Fatalf("ListSites() error: %v", err)
	}
	if len(sites) != 2 || sites[0] != "alpha" || sites[1] != "beta" {
		t.Errorf("sites = %v, expected [alpha beta]", sites)
	}
}
