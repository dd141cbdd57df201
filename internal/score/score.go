// Package score is the aggregation engine: it folds the per-tool results of
// one report into a single deficit total with a full provenance breakdown.
package score

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/webscore/tally/internal/observability"
	"github.com/webscore/tally/internal/report"
)

// Score computes the deficit score of one report under this procedure.
//
// The call is a pure function of (report, procedure): identical inputs yield
// byte-identical records, and all aggregation state is local to the call, so
// independent reports may be scored concurrently with a shared Proc.
func (p *Proc) Score(ctx context.Context, rep *report.Report) (*Record, error) {
	ctx, span := observability.StartScoreSpan(ctx, rep.ID, p.ID)
	defer span.End()

	if err := rep.Validate(); err != nil {
		err = fmt.Errorf("scoring: %w", err)
		observability.RecordError(span, err)
		return nil, err
	}

	details := NewPackageDetails()
	preventionScores := make(map[string]float64)

	for _, act := range rep.TestActs() {
		adapter, err := p.Tools.Adapter(act.Which)
		if err != nil {
			// Not a prevention: the report names a tool this procedure does
			// not know, which is a registry-coverage gap, not a failed run.
			slog.Warn("skipping act of unsupported tool", "tool", act.Which, "report", rep.ID)
			continue
		}

		if adapter.IsPrevented(&act) {
			preventionScores[preventionKey(adapter, &act)] = p.preventionWeight(adapter)
			continue
		}

		_, toolSpan := observability.StartNormalizeSpan(ctx, act.Which)
		findings := adapter.Normalize(&act)
		for _, f := range findings {
			details.Add(act.Which, f.RuleID, f.Weight)
		}
		observability.RecordNormalizeResult(toolSpan, len(findings))
		toolSpan.End()
	}

	groupDetails, groupSummaries, soloScore := p.aggregate(details)
	preventions := preventionTotal(preventionScores)
	logScore := p.logPenalty(rep.JobData)

	total := soloScore + preventions + logScore
	for _, gs := range groupSummaries {
		total += gs.Score
	}

	rec := &Record{
		ProcID:            p.ID,
		LogWeights:        p.LogWeights,
		SoloWeight:        p.SoloWeight,
		GroupWeights:      p.GroupWeights,
		PreventionWeights: p.PreventionWeights,
		PackageDetails:    details,
		GroupDetails:      groupDetails,
		PreventionScores:  preventionScores,
		Summary: Summary{
			Total:       total,
			Log:         logScore,
			Preventions: preventions,
			Solos:       soloScore,
			Groups:      groupSummaries,
		},
	}

	observability.RecordScoreResult(span, total, logScore, preventions, soloScore, len(groupSummaries))
	return rec, nil
}
