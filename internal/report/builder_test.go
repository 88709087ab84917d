package report

import (
	"errors"
	"testing"

	"github.com/a11ygate/a11ygate/internal/classify"
	"github.com/a11ygate/a11ygate/internal/config"
	"github.com/a11ygate/a11ygate/internal/model"
)

// testSite returns a minimal gate-mode site configuration.
func testSite(mode string) *config.SiteConfig {
	return &config.SiteConfig{
		Site:    "example",
		BaseURL: "https://example.test",
		Pages:   []string{"/", "/about"},
		Mode:    mode,
	}
}

// testReports builds merged reports for two projects with mixed outcomes.
func testReports() []model.PageReport {
	imageAlt := model.Finding{
		ID: "image-alt", Impact: "critical", Tags: []string{"wcag2a"},
		NodeCount: 2, HelpURL: "https://dequeuniversity.com/rules/axe/4.10/image-alt",
	}
	region := model.Finding{
		ID: "region", Impact: "moderate", Tags: []string{"best-practice"}, NodeCount: 1,
	}

	return []model.PageReport{
		{
			ProjectName: "mobile", Page: "/about", Index: 2, RunToken: "t1",
			Status: model.StatusPassed,
		},
		{
			ProjectName: "desktop", Page: "/", Index: 1, RunToken: "t1",
			Status:     model.StatusViolations,
			Violations: []model.Finding{imageAlt}, BestPractice: []model.Finding{region},
		},
		{
			ProjectName: "desktop", Page: "/about", Index: 2, RunToken: "t1",
			Status: model.StatusHTTPError, HTTPStatus: 404,
		},
		{
			ProjectName: "mobile", Page: "/", Index: 1, RunToken: "t1",
			Status:     model.StatusViolations,
			Violations: []model.Finding{imageAlt},
		},
	}
}

// TestBuildSiteSummary tests counts, ordering and rollups.
func TestBuildSiteSummary(t *testing.T) {
	t.Parallel()

	classifier := classify.New([]string{"critical", "serious"}, nil)
	run := model.RunContextFromToken("t1")

	summary := BuildSiteSummary(testSite(config.ModeGate), run, testReports(), classifier)

	if summary.Site != "example" || summary.RunToken != "t1" || summary.Mode != config.ModeGate {
		t.Errorf("header mismatch: %+v", summary)
	}
	if summary.PageCount != 4 {
		t.Errorf("PageCount = %d, expected 4", summary.PageCount)
	}
	if len(summary.Projects) != 2 || summary.Projects[0] != "desktop" || summary.Projects[1] != "mobile" {
		t.Errorf("Projects = %v, expected [desktop mobile]", summary.Projects)
	}

	// Status counts
	if summary.StatusCounts[model.StatusViolations] != 2 {
		t.Errorf("violations count = %d, expected 2", summary.StatusCounts[model.StatusViolations])
	}
	if summary.StatusCounts[model.StatusPassed] != 1 {
		t.Errorf("passed count = %d, expected 1", summary.StatusCounts[model.StatusPassed])
	}
	if summary.FailedPages != 1 {
		t.Errorf("FailedPages = %d, expected 1 (the http error)", summary.FailedPages)
	}

	// Tier counts over the merged finding set
	if summary.GatingCount != 2 {
		t.Errorf("GatingCount = %d, expected 2", summary.GatingCount)
	}
	if summary.BestPracticeCount != 1 {
		t.Errorf("BestPracticeCount = %d, expected 1", summary.BestPracticeCount)
	}

	// Pages are ordered by project then index
	wantOrder := []struct {
		project string
		index   int
	}{
		{"desktop", 1}, {"desktop", 2}, {"mobile", 1}, {"mobile", 2},
	}
	for i, want := range wantOrder {
		got := summary.Pages[i]
		if got.Project != want.project || got.Index != want.index {
			t.Errorf("Pages[%d] = (%s, %d), expected (%s, %d)",
				i, got.Project, got.Index, want.project, want.index)
		}
	}

	// Rollups: image-alt spans both projects and leads on node count
	if len(summary.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, expected 2", len(summary.Rules))
	}
	top := summary.Rules[0]
	if top.RuleID != "image-alt" || top.Nodes != 4 || top.Pages != 2 {
		t.Errorf("top rollup = %+v, expected image-alt with 4 nodes on 2 pages", top)
	}
	if len(top.Projects) != 2 {
		t.Errorf("top rollup projects = %v, expected both", top.Projects)
	}
	if top.HelpURL == "" {
		t.Error("rollup dropped the help URL")
	}
}

// TestBuildSiteSummaryEmptyRun tests a run with no reports.
func TestBuildSiteSummaryEmptyRun(t *testing.T) {
	t.Parallel()

	classifier := classify.New(nil, nil)
	run := model.RunContextFromToken("t1")

	summary := BuildSiteSummary(testSite(config.ModeAudit), run, nil, classifier)
	if summary.PageCount != 0 || summary.GatingCount != 0 || len(summary.Rules) != 0 {
		t.Errorf("empty run summary = %+v", summary)
	}
}

// TestVerdict tests the gate-versus-audit pass/fail policy.
func TestVerdict(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		summary  model.SiteSummary
		wantFail bool
	}{
		{
			name:     "gate mode with gating findings fails",
			summary:  model.SiteSummary{Mode: config.ModeGate, GatingCount: 3, PageCount: 4},
			wantFail: true,
		},
		{
			name:     "gate mode with failed pages fails",
			summary:  model.SiteSummary{Mode: config.ModeGate, FailedPages: 1, PageCount: 4},
			wantFail: true,
		},
		{
			name:     "gate mode clean passes",
			summary:  model.SiteSummary{Mode: config.ModeGate, PageCount: 4},
			wantFail: false,
		},
		{
			name:     "audit mode never fails",
			summary:  model.SiteSummary{Mode: config.ModeAudit, GatingCount: 9, FailedPages: 2},
			wantFail: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Verdict(&tc.summary)
			if tc.wantFail {
				var gateErr *GateError
				if !errors.As(err, &gateErr) {
					t.Fatalf("expected *GateError, got %v", err)
				}
				if gateErr.Gating != tc.summary.GatingCount || gateErr.FailedPages != tc.summary.FailedPages {
					t.Errorf("GateError = %+v does not mirror the summary", gateErr)
				}
			} else if err != nil {
				t.Errorf("expected pass, got %v", err)
			}
		})
	}
}
