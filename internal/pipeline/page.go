package pipeline

import (
	"context"

	"github.com/a11ygate/a11ygate/internal/auditor"
	"github.com/a11ygate/a11ygate/internal/config"
	"github.com/a11ygate/a11ygate/internal/model"
)

// maxNoteLength caps diagnostic messages retained in page reports so a
// pathological error string cannot bloat the on-disk report.
const maxNoteLength = 500

// auditPage runs one page audit and resolves the report's terminal status:
//
//	scan or navigation failure  → scan-error
//	HTTP status >= 400          → http-error
//	stability probe exhausted   → stability-timeout
//	>= 1 gating finding         → violations
//	0 gating findings           → passed
//
// Every failure path soft-continues: the resolved report is always
// returned, never an error, so one bad page cannot abort the run for the
// others.
func (r *Runner) auditPage(ctx context.Context, run model.RunContext, site *config.SiteConfig, project config.Project, page string, index int) *model.PageReport {
	report := model.NewPageReport(project.Name, page, index, run.Token)

	pageCtx, cancel := context.WithTimeout(ctx, r.pageBudget)
	defer cancel()

	target := auditor.PageTarget{
		URL:     site.PageURL(page),
		Page:    page,
		Project: project.Name,
		Headers: site.Headers,
		Cookie:  site.Cookie,
	}

	result, err := r.auditor.Audit(pageCtx, target)
	if result != nil {
		report.HTTPStatus = result.HTTPStatus
		report.Stability = result.Stability
		for _, note := range result.Notes {
			report.Notes = append(report.Notes, truncateNote(note))
		}
	}

	switch {
	case err != nil:
		report.Notes = append(report.Notes, truncateNote(err.Error()))
		_ = report.Resolve(model.StatusScanError) //nolint:errcheck // Initial state, cannot fail
	case result.HTTPStatus >= 400:
		_ = report.Resolve(model.StatusHTTPError) //nolint:errcheck // Initial state, cannot fail
	case result.Stability != nil && !result.Stability.OK:
		_ = report.Resolve(model.StatusStabilityTimeout) //nolint:errcheck // Initial state, cannot fail
	default:
		classified := r.classifier.Apply(report, result.Findings)
		if len(classified.Gating) > 0 {
			_ = report.Resolve(model.StatusViolations) //nolint:errcheck // Initial state, cannot fail
		} else {
			_ = report.Resolve(model.StatusPassed) //nolint:errcheck // Initial state, cannot fail
		}
	}

	return report
}

// truncateNote caps a diagnostic message at maxNoteLength runes.
func truncateNote(note string) string {
	runes := []rune(note)
	if len(runes) <= maxNoteLength {
		return note
	}
	return string(runes[:maxNoteLength]) + "..."
}
