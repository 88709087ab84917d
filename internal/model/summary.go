package model

import "time"

// SummaryFlag is the marker record whose existence signals that the
// sitewide summary for a run has been published. It is the only
// synchronization point between racing workers; see the coordinate
// package for the exclusive-create protocol around it.
type SummaryFlag struct {
	// AttachedAt is when the publishing worker claimed the flag.
	AttachedAt time.Time `json:"attachedAt"`

	// Project names the worker that won the publish race.
	Project string `json:"project"`
}

// RuleRollup aggregates one rule's occurrences across all pages and
// projects of a run.
type RuleRollup struct {
	// RuleID is the rule identifier.
	RuleID string `json:"ruleId"`

	// Impact is the highest impact label observed for the rule.
	Impact string `json:"impact"`

	// HelpURL points at the rule documentation.
	HelpURL string `json:"helpUrl,omitempty"`

	// Nodes is the total affected node count across all occurrences.
	Nodes int `json:"nodes"`

	// Pages is the number of (project, page) reports the rule appeared in.
	Pages int `json:"pages"`

	// Projects lists the projects the rule appeared in, sorted.
	Projects []string `json:"projects"`
}

// PageSummary is one ordered per-page entry of the sitewide summary.
type PageSummary struct {
	Project      string     `json:"project"`
	Page         string     `json:"page"`
	Index        int        `json:"index"`
	Status       PageStatus `json:"status"`
	HTTPStatus   int        `json:"httpStatus,omitempty"`
	Gating       int        `json:"gating"`
	Advisory     int        `json:"advisory"`
	BestPractice int        `json:"bestPractice"`
}

// SiteSummary is the consolidated sitewide result of one run, published
// exactly once per run and consumed by the rendering layer.
type SiteSummary struct {
	// Site is the configured site name.
	Site string `json:"site"`

	// RunToken correlates the summary with its run.
	RunToken string `json:"runToken"`

	// GeneratedAt is when the summary was computed.
	GeneratedAt time.Time `json:"generatedAt"`

	// Mode is the run mode the verdict was computed under (gate | audit).
	Mode string `json:"mode"`

	// Projects lists the projects that contributed reports, sorted.
	Projects []string `json:"projects"`

	// PageCount is the total number of merged page reports.
	PageCount int `json:"pageCount"`

	// StatusCounts maps each page status to its occurrence count.
	StatusCounts map[PageStatus]int `json:"statusCounts"`

	// GatingCount, AdvisoryCount and BestPracticeCount are sitewide
	// finding totals after re-classifying the merged data.
	GatingCount       int `json:"gatingCount"`
	AdvisoryCount     int `json:"advisoryCount"`
	BestPracticeCount int `json:"bestPracticeCount"`

	// FailedPages counts pages whose status is a forced failure
	// (http-error, stability-timeout, scan-error).
	FailedPages int `json:"failedPages"`

	// Rules are the per-rule rollups, sorted by descending node count
	// then rule id.
	Rules []RuleRollup `json:"rules"`

	// Pages are the per-page entries ordered by project then index.
	Pages []PageSummary `json:"pages"`
}
