// Package report defines the report format produced by the test runner and
// consumed by the scoring engine.
package report

import (
	"encoding/json"
	"fmt"
	"os"
)

// ActTypeTest marks acts that carry tool results. Other act types (moves,
// waits, navigations) are recorded by the runner but ignored by scoring.
const ActTypeTest = "test"

// Report is one unit of work: a single tested page with the results of every
// tool that ran against it. It is immutable input to the scoring engine; the
// engine only ever appends a score record.
type Report struct {
	ID      string          `json:"id"`
	Host    string          `json:"host,omitempty"`
	Acts    []Act           `json:"acts"`
	JobData *JobData        `json:"jobData"`
	Score   json.RawMessage `json:"score,omitempty"`
}

// Act is one recorded test execution. Result is an opaque, tool-owned
// payload; its shape is the concern of that tool's adapter.
type Act struct {
	Type   string          `json:"type"`
	Which  string          `json:"which"`
	What   string          `json:"what,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// JobData carries the navigation and browser-log metadata accumulated while
// the page was visited. The log penalty is computed from these counters.
type JobData struct {
	LogCount            int     `json:"logCount"`
	LogSize             int     `json:"logSize"`
	ErrorLogCount       int     `json:"errorLogCount"`
	ErrorLogSize        int     `json:"errorLogSize"`
	ProhibitedCount     int     `json:"prohibitedCount"`
	VisitTimeoutCount   int     `json:"visitTimeoutCount"`
	VisitRejectionCount int     `json:"visitRejectionCount"`
	VisitLatency        float64 `json:"visitLatency"`
}

// TestActs returns the acts the scoring engine cares about, in report order.
func (r *Report) TestActs() []Act {
	var acts []Act
	for _, act := range r.Acts {
		if act.Type == ActTypeTest {
			acts = append(acts, act)
		}
	}
	return acts
}

// Validate checks that the report carries everything scoring requires.
// A missing JobData indicates a malformed upstream report, not an absence of
// findings, so it is a hard error.
func (r *Report) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("report: missing id")
	}
	if r.JobData == nil {
		return fmt.Errorf("report %s: missing jobData", r.ID)
	}
	return nil
}

// Parse decodes a report from raw JSON and validates it.
func Parse(data []byte) (*Report, error) {
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	if err := rep.Validate(); err != nil {
		return nil, err
	}
	return &rep, nil
}

// Load reads and parses a report file.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	return Parse(data)
}

// AttachScore sets the report's score record. The record must already be
// JSON-encodable; encoding errors surface to the caller.
func (r *Report) AttachScore(record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding score record: %w", err)
	}
	r.Score = data
	return nil
}
