package coordinate

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/a11ygate/a11ygate/internal/model"
	"github.com/a11ygate/a11ygate/internal/store"
)

// newTestAggregator builds an aggregator with a short attempt window so
// not-ready attempts fail fast in tests.
func newTestAggregator(st *store.Store) *Aggregator {
	waiter := NewWaiter(st)
	return NewAggregator(st, waiter,
		WithAttemptWindow(300*time.Millisecond, 50*time.Millisecond))
}

// TestDiscoverProjects tests sibling discovery keyed on the run token.
func TestDiscoverProjects(t *testing.T) {
	t.Parallel()

	st := store.New(t.TempDir(), "example")
	run := model.RunContextFromToken("t1")

	persistReport(t, st, "desktop", "t1", 1)
	persistReport(t, st, "mobile", "t1", 1)
	// A directory holding only a stale run must not be discovered once
	// active projects exist
	persistReport(t, st, "tablet", "t0", 1)

	ag := newTestAggregator(st)
	projects, err := ag.DiscoverProjects(run)
	if err != nil {
		t.Fatalf("DiscoverProjects() error: %v", err)
	}

	sort.Strings(projects)
	if len(projects) != 2 || projects[0] != "desktop" || projects[1] != "mobile" {
		t.Errorf("projects = %v, expected [desktop mobile]", projects)
	}
}

// TestDiscoverProjectsBootstrapFallback tests that when no directory has
// a matching report yet, all directories are returned so an early reader
// does not conclude the run is empty.
func TestDiscoverProjectsBootstrapFallback(t *testing.T) {
	t.Parallel()

	st := store.New(t.TempDir(), "example")
	run := model.RunContextFromToken("t-new")

	persistReport(t, st, "desktop", "t-old", 1)

	ag := newTestAggregator(st)
	projects, err := ag.DiscoverProjects(run)
	if err != nil {
		t.Fatalf("DiscoverProjects() error: %v", err)
	}
	if len(projects) != 1 || projects[0] != "desktop" {
		t.Errorf("projects = %v, expected fallback to [desktop]", projects)
	}
}

// TestAggregate tests merging the completion sets of two complete
// projects and the idempotence of a repeat aggregation.
func TestAggregate(t *testing.T) {
	t.Parallel()

	st := store.New(t.TempDir(), "example")
	run := model.RunContextFromToken("t1")

	for _, project := range []string{"desktop", "mobile"} {
		for i := 1; i <= 2; i++ {
			persistReport(t, st, project, "t1", i)
		}
	}

	ag := newTestAggregator(st)

	merged, err := ag.Aggregate(context.Background(), run, 2)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if len(merged) != 4 {
		t.Fatalf("len(merged) = %d, expected 4", len(merged))
	}

	// Aggregating again over unchanged data yields the same set
	again, err := ag.Aggregate(context.Background(), run, 2)
	if err != nil {
		t.Fatalf("second Aggregate() error: %v", err)
	}
	if len(again) != len(merged) {
		t.Errorf("second aggregation returned %d reports, expected %d", len(again), len(merged))
	}
}

// TestAggregateNotReady tests that an incomplete sibling abandons the
// attempt with ErrNotReady instead of blocking.
func TestAggregateNotReady(t *testing.T) {
	t.Parallel()

	st := store.New(t.TempDir(), "example")
	run := model.RunContextFromToken("t1")

	persistReport(t, st, "desktop", "t1", 1)
	persistReport(t, st, "desktop", "t1", 2)
	persistReport(t, st, "mobile", "t1", 1) // mobile is one report short

	ag := newTestAggregator(st)

	_, err := ag.Aggregate(context.Background(), run, 2)
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

// TestAggregateEmptyTree tests that a tree with no project directories
// reports not-ready rather than succeeding with zero reports.
func TestAggregateEmptyTree(t *testing.T) {
	t.Parallel()

	st := store.New(t.TempDir(), "example")
	run := model.RunContextFromToken("t1")

	ag := newTestAggregator(st)

	_, err := ag.Aggregate(context.Background(), run, 2)
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

// TestAggregateTruncatesStrayDuplicates tests that duplicate indices in a
// project cannot inflate the merged set past expectedPerProject.
func TestAggregateTruncatesStrayDuplicates(t *testing.T) {
	t.Parallel()

	st := store.New(t.TempDir(), "example")
	run := model.RunContextFromToken("t1")

	persistReport(t, st, "desktop", "t1", 1)
	persistReport(t, st, "desktop", "t1", 2)
	// A stray extra index beyond the expected count
	persistReport(t, st, "desktop", "t1", 3)

	ag := newTestAggregator(st)

	merged, err := ag.Aggregate(context.Background(), run, 2)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if len(merged) != 2 {
		t.Errorf("len(merged) = %d, expected 2 (truncated to the expected count)", len(merged))
	}
}
