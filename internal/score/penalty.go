package score

import (
	"math"

	"github.com/webscore/tally/internal/report"
	"github.com/webscore/tally/internal/tools"
)

// preventionWeight picks the penalty for one prevented test.
func (p *Proc) preventionWeight(a tools.Adapter) float64 {
	if a.InHouse() {
		return p.PreventionWeights.InHouse
	}
	return p.PreventionWeights.External
}

// preventionKey identifies the prevented test. Map assignment dedupes, so a
// tool prevented once counts once.
func preventionKey(a tools.Adapter, act *report.Act) string {
	if pk, ok := a.(tools.PreventionKeyer); ok {
		return pk.PreventionKey(act)
	}
	return a.Name()
}

// preventionTotal sums the recorded prevention penalties.
func preventionTotal(scores map[string]float64) int {
	var total float64
	for _, w := range scores {
		total += w
	}
	return int(math.Round(total))
}

// logPenalty scores the browser-log and navigation metadata. Only latency in
// excess of the procedure's normal baseline counts, and the result is
// floored at zero so quiet, fast runs never earn a bonus.
func (p *Proc) logPenalty(jd *report.JobData) int {
	lw := p.LogWeights
	raw := lw.Count*float64(jd.LogCount) +
		lw.Size*float64(jd.LogSize) +
		lw.ErrorCount*float64(jd.ErrorLogCount) +
		lw.ErrorSize*float64(jd.ErrorLogSize) +
		lw.Prohibited*float64(jd.ProhibitedCount) +
		lw.VisitTimeout*float64(jd.VisitTimeoutCount) +
		lw.VisitRejection*float64(jd.VisitRejectionCount) +
		lw.Latency*math.Max(0, jd.VisitLatency-p.NormalLatency)
	if raw < 0 {
		raw = 0
	}
	return int(math.Round(raw))
}
