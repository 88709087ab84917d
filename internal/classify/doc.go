// Package classify partitions raw accessibility findings into gating,
// advisory and best-practice tiers according to configured severity
// thresholds and ignore lists. Classification is pure: it depends only on
// its inputs, never on evaluation order or prior state.
package classify
