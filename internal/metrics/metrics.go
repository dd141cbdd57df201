// Package metrics collects per-invocation statistics for the CLI.
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/webscore/tally/internal/score"
)

// RunMetrics collects statistics for one scoring invocation.
type RunMetrics struct {
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at,omitempty"`
	Duration    time.Duration `json:"duration_ms,omitempty"`
	ReportID    string        `json:"report_id"`
	ProcID      string        `json:"proc_id"`
	ActCount    int           `json:"act_count"`
	TestCount   int           `json:"test_count"`
	Total       int           `json:"total"`
	Log         int           `json:"log"`
	Preventions int           `json:"preventions"`
	Solos       int           `json:"solos"`
	GroupCount  int           `json:"group_count"`
	Errors      []string      `json:"errors,omitempty"`
}

// New starts tracking a scoring run.
func New(reportID, procID string) *RunMetrics {
	return &RunMetrics{StartedAt: time.Now(), ReportID: reportID, ProcID: procID}
}

// CollectActs records how much of the report the engine looked at.
func (m *RunMetrics) CollectActs(actCount, testCount int) {
	m.ActCount = actCount
	m.TestCount = testCount
}

// Finish records the score components and closes the run.
func (m *RunMetrics) Finish(rec *score.Record, errs []string) {
	m.FinishedAt = time.Now()
	m.Duration = m.FinishedAt.Sub(m.StartedAt)
	m.Errors = errs
	if rec == nil {
		return
	}
	m.Total = rec.Summary.Total
	m.Log = rec.Summary.Log
	m.Preventions = rec.Summary.Preventions
	m.Solos = rec.Summary.Solos
	m.GroupCount = len(rec.Summary.Groups)
}

// PrintSummary writes a human-readable summary.
func (m *RunMetrics) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\n╔══════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║          TALLY SCORE REPORT          ║\n")
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ Report:      %-23s ║\n", m.ReportID)
	fmt.Fprintf(w, "║ Procedure:   %-23s ║\n", m.ProcID)
	fmt.Fprintf(w, "║ Duration:    %-23s ║\n", m.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ Acts:        %d (%d tests)\n", m.ActCount, m.TestCount)
	fmt.Fprintf(w, "║ Groups:      %d\n", m.GroupCount)
	fmt.Fprintf(w, "║ Solos:       %d\n", m.Solos)
	fmt.Fprintf(w, "║ Preventions: %d\n", m.Preventions)
	fmt.Fprintf(w, "║ Log:         %d\n", m.Log)
	fmt.Fprintf(w, "║ TOTAL:       %d\n", m.Total)
	if len(m.Errors) > 0 {
		fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
		fmt.Fprintf(w, "║ ERRORS\n")
		for _, e := range m.Errors {
			fmt.Fprintf(w, "║   • %s\n", e)
		}
	}
	fmt.Fprintf(w, "╚══════════════════════════════════════╝\n")
}

// JSON returns the metrics as formatted JSON.
func (m *RunMetrics) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
