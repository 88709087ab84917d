package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/a11ygate/a11ygate/internal/classify"
	"github.com/a11ygate/a11ygate/internal/config"
	"github.com/a11ygate/a11ygate/internal/model"
)

// BuildSiteSummary computes the sitewide summary over the merged, ordered
// page reports of one run. The classifier is re-applied to the merged
// finding set so sitewide tier counts reflect the same thresholds as the
// per-page classification.
func BuildSiteSummary(site *config.SiteConfig, run model.RunContext, reports []model.PageReport, classifier *classify.Classifier) *model.SiteSummary {
	sorted := make([]model.PageReport, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ProjectName != sorted[j].ProjectName {
			return sorted[i].ProjectName < sorted[j].ProjectName
		}
		return sorted[i].Index < sorted[j].Index
	})

	summary := &model.SiteSummary{
		Site:         site.Site,
		RunToken:     run.Token,
		GeneratedAt:  time.Now().UTC(),
		Mode:         site.Mode,
		PageCount:    len(sorted),
		StatusCounts: make(map[model.PageStatus]int),
		Rules:        []model.RuleRollup{},
		Pages:        make([]model.PageSummary, 0, len(sorted)),
	}

	projects := make(map[string]bool)
	merged := make([]model.Finding, 0, len(sorted))

	type rollup struct {
		impact   model.Severity
		impactID string
		helpURL  string
		nodes    int
		pages    int
		projects map[string]bool
	}
	rollups := make(map[string]*rollup)

	for _, r := range sorted {
		projects[r.ProjectName] = true
		summary.StatusCounts[r.Status]++
		if r.Status.Failed() {
			summary.FailedPages++
		}

		summary.Pages = append(summary.Pages, model.PageSummary{
			Project:      r.ProjectName,
			Page:         r.Page,
			Index:        r.Index,
			Status:       r.Status,
			HTTPStatus:   r.HTTPStatus,
			Gating:       len(r.Violations),
			Advisory:     len(r.Advisory),
			BestPractice: len(r.BestPractice),
		})

		for _, f := range r.AllFindings() {
			merged = append(merged, f)

			ru := rollups[f.ID]
			if ru == nil {
				ru = &rollup{projects: make(map[string]bool)}
				rollups[f.ID] = ru
			}
			if sev := f.Severity(); sev >= ru.impact {
				ru.impact = sev
				ru.impactID = f.Impact
			}
			if f.HelpURL != "" {
				ru.helpURL = f.HelpURL
			}
			ru.nodes += f.NodeCount
			ru.pages++
			ru.projects[r.ProjectName] = true
		}
	}

	summary.Projects = sortedKeys(projects)

	classified := classifier.Classify(merged)
	summary.GatingCount = len(classified.Gating)
	summary.AdvisoryCount = len(classified.Advisory)
	summary.BestPracticeCount = len(classified.BestPractice)

	for id, ru := range rollups {
		summary.Rules = append(summary.Rules, model.RuleRollup{
			RuleID:   id,
			Impact:   ru.impactID,
			HelpURL:  ru.helpURL,
			Nodes:    ru.nodes,
			Pages:    ru.pages,
			Projects: sortedKeys(ru.projects),
		})
	}
	sort.SliceStable(summary.Rules, func(i, j int) bool {
		if summary.Rules[i].Nodes != summary.Rules[j].Nodes {
			return summary.Rules[i].Nodes > summary.Rules[j].Nodes
		}
		return summary.Rules[i].RuleID < summary.Rules[j].RuleID
	})

	return summary
}

// sortedKeys returns the map's keys in sorted order.
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GateError is the verdict of a failed gate-mode run. It carries the
// aggregate counts so callers and CI logs see the scale of the failure
// without re-reading the summary.
type GateError struct {
	// Gating is the sitewide gating finding count.
	Gating int

	// FailedPages is the count of pages with forced failure statuses.
	FailedPages int

	// Pages is the total merged page count.
	Pages int
}

// Error describes the gate failure with aggregate counts.
func (e *GateError) Error() string {
	return fmt.Sprintf("accessibility gate failed: %d gating findings, %d of %d pages failed to audit",
		e.Gating, e.FailedPages, e.Pages)
}

// Verdict computes the run's pass/fail outcome from the summary. In gate
// mode any gating finding or forced page failure fails the run; in audit
// mode the identical data is recorded without failing.
func Verdict(summary *model.SiteSummary) error {
	if summary.Mode != config.ModeGate {
		return nil
	}
	if summary.GatingCount == 0 && summary.FailedPages == 0 {
		return nil
	}
	return &GateError{
		Gating:      summary.GatingCount,
		FailedPages: summary.FailedPages,
		Pages:       summary.PageCount,
	}
}
