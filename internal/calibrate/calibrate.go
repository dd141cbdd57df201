// Package calibrate derives latency baselines from historical reports.
// Baselines feed the normalLatency constant of new scoring procedures; the
// procedures already shipped stay frozen.
package calibrate

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/webscore/tally/internal/report"
)

// Baseline summarizes the visit-latency distribution of a report corpus.
type Baseline struct {
	Samples   int     `json:"samples"`
	Median    float64 `json:"median"`
	P75       float64 `json:"p75"`
	P90       float64 `json:"p90"`
	Suggested float64 `json:"suggested"`
}

// Latency computes a baseline from raw visit latencies, in seconds. The
// suggested normal latency is the 75th percentile: half the corpus being
// over the baseline would penalize typical pages, while the slowest decile
// should stay penalized.
func Latency(latencies []float64) (*Baseline, error) {
	if len(latencies) == 0 {
		return nil, fmt.Errorf("calibrate: no latency samples")
	}

	sorted := make([]float64, len(latencies))
	copy(sorted, latencies)
	sort.Float64s(sorted)

	b := &Baseline{
		Samples: len(sorted),
		Median:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P75:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		P90:     stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
	b.Suggested = b.P75
	return b, nil
}

// FromReports extracts visit latencies from a report corpus and computes the
// baseline. Reports without job metadata are skipped rather than failed:
// calibration is a survey, not a scoring call.
func FromReports(reports []*report.Report) (*Baseline, error) {
	var latencies []float64
	for _, rep := range reports {
		if rep.JobData == nil {
			continue
		}
		latencies = append(latencies, rep.JobData.VisitLatency)
	}
	return Latency(latencies)
}
