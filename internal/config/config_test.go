package config

import (
	"errors"
	"testing"
	"time"
)

// TestNewConfig tests that defaults are populated.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if cfg.ResultsRoot != DefaultResultsRoot {
		t.Errorf("ResultsRoot = %q, expected %q", cfg.ResultsRoot, DefaultResultsRoot)
	}
	if cfg.PageConcurrency != DefaultPageConcurrency {
		t.Errorf("PageConcurrency = %d, expected %d", cfg.PageConcurrency, DefaultPageConcurrency)
	}
	if cfg.WaitTimeout != DefaultWaitTimeout {
		t.Errorf("WaitTimeout = %s, expected %s", cfg.WaitTimeout, DefaultWaitTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// TestConfigValidate tests the runtime option checks.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.PageConcurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "negative wait timeout",
			mutate:  func(c *Config) { c.WaitTimeout = -time.Second },
			wantErr: ErrInvalidWaitTimeout,
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.PollInterval = 0 },
			wantErr: ErrInvalidPollInterval,
		},
		{
			name:    "conflicting report formats",
			mutate:  func(c *Config) { c.JSON = true; c.Markdown = true },
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, expected %v", err, tc.wantErr)
			}
		})
	}
}

// TestXDGDataDir tests that the data directory is app-scoped.
func TestXDGDataDir(t *testing.T) {
	t.Parallel()

	dir := XDGDataDir()
	if dir == "" {
		t.Fatal("expected non-empty data directory")
	}
}
