package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/a11ygate/a11ygate/internal/config"
	"github.com/a11ygate/a11ygate/internal/model"
)

// MarkdownWriter renders summaries as Markdown for documentation and CI
// job summaries.
//
// Design decision: We use the nao1215/markdown library for fluent,
// type-safe markdown generation (tables, GitHub-flavored alerts) instead
// of string concatenation.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteSummary renders the sitewide summary as Markdown.
func (w *MarkdownWriter) WriteSummary(summary *model.SiteSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeVerdict(md, summary)
	w.writeRules(md, summary)
	w.writePages(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the run overview table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.SiteSummary) {
	md.H1("Accessibility Audit Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", summary.Site},
			{"Run", "`" + summary.RunToken + "`"},
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Mode", summary.Mode},
			{"Projects", strings.Join(summary.Projects, ", ")},
			{"Pages", strconv.Itoa(summary.PageCount)},
		},
	})
	md.PlainText("")

	md.H2("Result Counts")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Tier", "Count"},
		Rows: [][]string{
			{"Gating", strconv.Itoa(summary.GatingCount)},
			{"Advisory", strconv.Itoa(summary.AdvisoryCount)},
			{"Best practice", strconv.Itoa(summary.BestPracticeCount)},
			{"Failed pages", strconv.Itoa(summary.FailedPages)},
		},
	})
	md.PlainText("")
}

// writeVerdict writes a GitHub-flavored alert matching the run outcome.
func (w *MarkdownWriter) writeVerdict(md *markdown.Markdown, summary *model.SiteSummary) {
	switch {
	case summary.Mode == config.ModeGate && summary.GatingCount > 0:
		md.Cautionf("Gate failed: %d gating finding(s) across %d page(s).",
			summary.GatingCount, summary.PageCount)
	case summary.Mode == config.ModeGate && summary.FailedPages > 0:
		md.Cautionf("Gate failed: %d page(s) could not be audited.", summary.FailedPages)
	case summary.GatingCount > 0:
		md.Warningf("%d gating finding(s) recorded (audit mode, run not failed).",
			summary.GatingCount)
	default:
		md.Tip("No gating findings detected.")
	}
	md.PlainText("")
}

// writeRules writes the per-rule rollup table.
func (w *MarkdownWriter) writeRules(md *markdown.Markdown, summary *model.SiteSummary) {
	md.H2("Rule Rollup")
	md.PlainText("")

	if len(summary.Rules) == 0 {
		md.PlainText("No findings.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.Rules))
	for _, rule := range summary.Rules {
		name := rule.RuleID
		if rule.HelpURL != "" {
			name = "[" + rule.RuleID + "](" + rule.HelpURL + ")"
		}
		rows = append(rows, []string{
			name,
			rule.Impact,
			strconv.Itoa(rule.Nodes),
			strconv.Itoa(rule.Pages),
			strings.Join(rule.Projects, ", "),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Rule", "Impact", "Nodes", "Pages", "Projects"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePages writes the ordered per-page entries.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, summary *model.SiteSummary) {
	md.H2("Pages")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.Pages))
	for _, page := range summary.Pages {
		rows = append(rows, []string{
			page.Project,
			strconv.Itoa(page.Index),
			page.Page,
			string(page.Status),
			strconv.Itoa(page.Gating),
			strconv.Itoa(page.Advisory),
			strconv.Itoa(page.BestPractice),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Project", "#", "Page", "Status", "Gating", "Advisory", "Best practice"},
		Rows:   rows,
	})
	md.PlainText("")
}
