package model

import "testing"

// TestPageStatusTerminal tests terminal-state detection.
func TestPageStatusTerminal(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status   PageStatus
		terminal bool
	}{
		{StatusSkipped, false},
		{StatusHTTPError, true},
		{StatusStabilityTimeout, true},
		{StatusScanError, true},
		{StatusViolations, true},
		{StatusPassed, true},
		{PageStatus("bogus"), false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(string(tc.status), func(t *testing.T) {
			t.Parallel()
			if got := tc.status.Terminal(); got != tc.terminal {
				t.Errorf("Terminal() = %v, expected %v", got, tc.terminal)
			}
		})
	}
}

// TestPageStatusValid tests known-state detection.
func TestPageStatusValid(t *testing.T) {
	t.Parallel()

	valid := []PageStatus{
		StatusSkipped, StatusHTTPError, StatusStabilityTimeout,
		StatusScanError, StatusViolations, StatusPassed,
	}
	for _, status := range valid {
		if !status.Valid() {
			t.Errorf("%q should be valid", status)
		}
	}

	if PageStatus("error").Valid() {
		t.Error("unknown status should not be valid")
	}
}

// TestPageStatusFailed tests forced-failure detection.
func TestPageStatusFailed(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status PageStatus
		failed bool
	}{
		{StatusHTTPError, true},
		{StatusStabilityTimeout, true},
		{StatusScanError, true},
		{StatusViolations, false},
		{StatusPassed, false},
		{StatusSkipped, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(string(tc.status), func(t *testing.T) {
			t.Parallel()
			if got := tc.status.Failed(); got != tc.failed {
				t.Errorf("Failed() = %v, expected %v", got, tc.failed)
			}
		})
	}
}

// TestPageReportResolve tests the status transition rules.
func TestPageReportResolve(t *testing.T) {
	t.Parallel()

	t.Run("initial to terminal succeeds", func(t *testing.T) {
		t.Parallel()

		report := NewPageReport("desktop", "/about", 2, "run1")
		if report.Status != StatusSkipped {
			t.Fatalf("new report status = %q, expected %q", report.Status, StatusSkipped)
		}

		if err := report.Resolve(StatusViolations); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Status != StatusViolations {
			t.Errorf("status = %q, expected %q", report.Status, StatusViolations)
		}
	})

	t.Run("transition to non-terminal is rejected", func(t *testing.T) {
		t.Parallel()

		report := NewPageReport("desktop", "/", 1, "run1")
		if err := report.Resolve(StatusSkipped); err == nil {
			t.Error("expected error for transition to non-terminal status")
		}
	})

	t.Run("double resolution is rejected", func(t *testing.T) {
		t.Parallel()

		report := NewPageReport("desktop", "/", 1, "run1")
		if err := report.Resolve(StatusPassed); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := report.Resolve(StatusScanError); err == nil {
			t.Error("expected error for second resolution")
		}
		if report.Status != StatusPassed {
			t.Errorf("status = %q, expected first resolution %q to stick", report.Status, StatusPassed)
		}
	})
}

// TestPageReportFinalize tests resolver application at persistence time.
func TestPageReportFinalize(t *testing.T) {
	t.Parallel()

	t.Run("default resolver interprets skipped as passed", func(t *testing.T) {
		t.Parallel()

		report := NewPageReport("desktop", "/", 1, "run1")
		report.Finalize(nil)
		if report.Status != StatusPassed {
			t.Errorf("status = %q, expected %q", report.Status, StatusPassed)
		}
	})

	t.Run("custom resolver overrides the default policy", func(t *testing.T) {
		t.Parallel()

		report := NewPageReport("desktop", "/", 1, "run1")
		report.Finalize(func(_ *PageReport) PageStatus { return StatusScanError })
		if report.Status != StatusScanError {
			t.Errorf("status = %q, expected %q", report.Status, StatusScanError)
		}
	})

	t.Run("resolved report is left untouched", func(t *testing.T) {
		t.Parallel()

		report := NewPageReport("desktop", "/", 1, "run1")
		if err := report.Resolve(StatusHTTPError); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		report.Finalize(nil)
		if report.Status != StatusHTTPError {
			t.Errorf("status = %q, expected %q", report.Status, StatusHTTPError)
		}
	})
}
