package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a11ygate/a11ygate/internal/model"
	"github.com/a11ygate/a11ygate/internal/report"
)

// TestNewAuditCmd tests the audit command's flag surface.
func TestNewAuditCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAuditCmd()

	if cmd.Use != "audit" {
		t.Errorf("Use = %q, expected audit", cmd.Use)
	}

	for _, name := range []string{
		"config", "results", "run-token", "project", "wait-timeout",
		"poll-interval", "concurrency", "page-budget", "json", "markdown",
		"output", "no-history",
	} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing flag --%s", name)
		}
	}
}

// writeAuditSiteFile writes a site config pointing at the test server.
func writeAuditSiteFile(t *testing.T, baseURL, mode string) string {
	t.Helper()

	content := fmt.Sprintf(`
site: cmd-test
baseURL: %s
pages:
  - /
  - /about
projects:
  - name: desktop
mode: %s
stabilityStrategies:
  - quiet-period
`, baseURL, mode)

	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// runAuditOnce executes the audit command against the given site file.
func runAuditOnce(t *testing.T, configPath, resultsRoot, outputFile string, extra ...string) error {
	t.Helper()

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	args := append([]string{
		"audit",
		"-c", configPath,
		"-r", resultsRoot,
		"-o", outputFile,
		"--no-history",
		"--wait-timeout", "5s",
		"--poll-interval", "100ms",
	}, extra...)
	cmd.SetArgs(args)

	return cmd.Execute()
}

// TestAuditCmdGateFailure tests the end-to-end gate verdict: a page with
// gating findings fails the command and the summary artifact records it.
func TestAuditCmdGateFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Missing alt, lang and title on every page
		_, _ = w.Write([]byte(`<html><head></head><body><img src="a.png"></body></html>`))
	}))
	defer server.Close()

	configPath := writeAuditSiteFile(t, server.URL, "gate")
	outputFile := filepath.Join(t.TempDir(), "summary.json")

	err := runAuditOnce(t, configPath, t.TempDir(), outputFile, "--json")

	var gateErr *report.GateError
	if !errors.As(err, &gateErr) {
		t.Fatalf("expected *report.GateError, got %v", err)
	}

	data, readErr := os.ReadFile(outputFile)
	if readErr != nil {
		t.Fatalf("summary output missing: %v", readErr)
	}

	var summary model.SiteSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("summary output is not valid JSON: %v", err)
	}
	if summary.PageCount != 2 || summary.GatingCount == 0 {
		t.Errorf("summary = %+v, expected 2 pages with gating findings", summary)
	}
	if summary.Mode != "gate" {
		t.Errorf("Mode = %q, expected gate", summary.Mode)
	}
}

// TestAuditCmdAuditMode tests that audit mode records the same data
// without failing the command.
func TestAuditCmdAuditMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head></head><body><img src="a.png"></body></html>`))
	}))
	defer server.Close()

	configPath := writeAuditSiteFile(t, server.URL, "audit")
	outputFile := filepath.Join(t.TempDir(), "summary.md")

	if err := runAuditOnce(t, configPath, t.TempDir(), outputFile, "-m"); err != nil {
		t.Fatalf("audit mode should not fail the command: %v", err)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("summary output missing: %v", err)
	}
	if !strings.Contains(string(data), "# Accessibility Audit Summary") {
		t.Errorf("expected markdown summary, got: %s", data)
	}
}

// TestAuditCmdCleanSitePasses tests a clean site under gate mode.
func TestAuditCmdCleanSitePasses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html lang="en"><head><title>ok</title></head>
			<body><a href="/about">About</a></body></html>`))
	}))
	defer server.Close()

	configPath := writeAuditSiteFile(t, server.URL, "gate")
	outputFile := filepath.Join(t.TempDir(), "summary.json")

	if err := runAuditOnce(t, configPath, t.TempDir(), outputFile, "--json"); err != nil {
		t.Fatalf("clean site should pass the gate: %v", err)
	}
}

// TestAuditCmdUnknownProject tests the single-project flag against a
// project the site file does not define.
func TestAuditCmdUnknownProject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html lang="en"><head><title>ok</title></head><body></body></html>`))
	}))
	defer server.Close()

	configPath := writeAuditSiteFile(t, server.URL, "gate")

	err := runAuditOnce(t, configPath, t.TempDir(), filepath.Join(t.TempDir(), "s.json"),
		"--project", "tablet")
	if err == nil || !strings.Contains(err.Error(), "tablet") {
		t.Errorf("expected unknown-project error, got %v", err)
	}
}

// TestAuditCmdConflictingFormats tests mutually exclusive output flags.
func TestAuditCmdConflictingFormats(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"audit", "--json", "--markdown"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for --json with --markdown")
	}
}

// TestAuditCmdMissingConfig tests the explicit-config-missing error.
func TestAuditCmdMissingConfig(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"audit", "-c", filepath.Join(t.TempDir(), "absent.yaml")})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing config file")
	}
}
