package database

import (
	"context"
	"fmt"

	"github.com/a11ygate/a11ygate/internal/model"
)

// Direction labels for run comparison.
const (
	DirectionImproved  = "improved"
	DirectionWorsened  = "worsened"
	DirectionUnchanged = "unchanged"
)

// RunComparison is the diff between two stored runs of the same site.
type RunComparison struct {
	// Base is the older run.
	Base RunRecord `json:"base"`

	// Target is the newer run.
	Target RunRecord `json:"target"`

	// NewRules appeared in the target but not the base.
	NewRules []model.RuleRollup `json:"newRules"`

	// ResolvedRules were present in the base but not the target.
	ResolvedRules []model.RuleRollup `json:"resolvedRules"`

	// Direction summarizes the gating-count movement:
	// improved, worsened or unchanged.
	Direction string `json:"direction"`
}

// CompareRuns diffs two stored runs by token. Both runs must exist and
// belong to the same site.
func (hdb *HistoryDB) CompareRuns(ctx context.Context, baseToken, targetToken string) (*RunComparison, error) {
	base, err := hdb.GetRun(ctx, baseToken)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, fmt.Errorf("run %q not found in history", baseToken)
	}

	target, err := hdb.GetRun(ctx, targetToken)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("run %q not found in history", targetToken)
	}

	if base.Site != target.Site {
		return nil, fmt.Errorf("cannot compare runs of different sites (%q vs %q)", base.Site, target.Site)
	}

	baseRules, err := hdb.GetRollups(ctx, baseToken)
	if err != nil {
		return nil, err
	}
	targetRules, err := hdb.GetRollups(ctx, targetToken)
	if err != nil {
		return nil, err
	}

	baseSet := make(map[string]bool, len(baseRules))
	for _, rule := range baseRules {
		baseSet[rule.RuleID] = true
	}
	targetSet := make(map[string]bool, len(targetRules))
	for _, rule := range targetRules {
		targetSet[rule.RuleID] = true
	}

	comparison := &RunComparison{
		Base:          *base,
		Target:        *target,
		NewRules:      []model.RuleRollup{},
		ResolvedRules: []model.RuleRollup{},
	}

	for _, rule := range targetRules {
		if !baseSet[rule.RuleID] {
			comparison.NewRules = append(comparison.NewRules, rule)
		}
	}
	for _, rule := range baseRules {
		if !targetSet[rule.RuleID] {
			comparison.ResolvedRules = append(comparison.ResolvedRules, rule)
		}
	}

	switch {
	case target.Gating < base.Gating:
		comparison.Direction = DirectionImproved
	case target.Gating > base.Gating:
		comparison.Direction = DirectionWorsened
	default:
		comparison.Direction = DirectionUnchanged
	}

	return comparison, nil
}
