package classify

import (
	"strings"

	"github.com/a11ygate/a11ygate/internal/model"
)

// Result is the outcome of classifying a finding list. Gating, Advisory
// and BestPractice form a total, disjoint partition of the non-ignored
// findings; together with Ignored they account for every input finding
// exactly once.
type Result struct {
	// Gating findings carry a severity in the configured fail-on set and
	// fail the run in gate mode.
	Gating []model.Finding

	// Advisory findings are below the gating threshold but map to at
	// least one recognized external standard.
	Advisory []model.Finding

	// BestPractice findings are below the threshold with no standard
	// coverage; informational only.
	BestPractice []model.Finding

	// Ignored findings matched the configured ignore-rule list and were
	// dropped before tiering.
	Ignored []model.Finding
}

// Total returns the number of findings across all four sets.
func (r Result) Total() int {
	return len(r.Gating) + len(r.Advisory) + len(r.BestPractice) + len(r.Ignored)
}

// Classifier partitions findings using a fixed severity threshold set and
// ignore list. Construct once per run from site configuration and share
// freely; the classifier is stateless after construction.
type Classifier struct {
	// failOn is the set of severities that gate, keyed by parsed level.
	failOn map[model.Severity]bool

	// ignore is the set of rule ids dropped before classification,
	// keyed by lowercase id.
	ignore map[string]bool
}

// New creates a Classifier. Severity names are matched case-insensitively;
// unrecognized names are skipped rather than rejected so that a config
// written for a newer engine does not break older binaries.
func New(failOnSeverities []string, ignoreRuleIDs []string) *Classifier {
	failOn := make(map[model.Severity]bool, len(failOnSeverities))
	for _, name := range failOnSeverities {
		if sev := model.ParseSeverity(name); sev != model.SeverityUnknown {
			failOn[sev] = true
		}
	}

	ignore := make(map[string]bool, len(ignoreRuleIDs))
	for _, id := range ignoreRuleIDs {
		id = strings.ToLower(strings.TrimSpace(id))
		if id != "" {
			ignore[id] = true
		}
	}

	return &Classifier{failOn: failOn, ignore: ignore}
}

// Classify partitions the findings. Ignored rule ids are dropped first; of
// the remainder, a finding gates if its severity is in the fail-on set,
// otherwise it is advisory if it carries standard coverage, else
// best-practice. Every input finding lands in exactly one output set.
func (c *Classifier) Classify(findings []model.Finding) Result {
	result := Result{
		Gating:       []model.Finding{},
		Advisory:     []model.Finding{},
		BestPractice: []model.Finding{},
		Ignored:      []model.Finding{},
	}

	for _, f := range findings {
		switch {
		case c.ignore[strings.ToLower(f.ID)]:
			result.Ignored = append(result.Ignored, f)
		case c.failOn[f.Severity()]:
			result.Gating = append(result.Gating, f)
		case f.HasStandardCoverage():
			result.Advisory = append(result.Advisory, f)
		default:
			result.BestPractice = append(result.BestPractice, f)
		}
	}

	return result
}

// Apply classifies the findings and records the three tiers on the report.
// The report's status is not touched; status resolution belongs to the
// page lifecycle, not to classification.
func (c *Classifier) Apply(report *model.PageReport, findings []model.Finding) Result {
	result := c.Classify(findings)
	report.Violations = result.Gating
	report.Advisory = result.Advisory
	report.BestPractice = result.BestPractice
	return result
}
