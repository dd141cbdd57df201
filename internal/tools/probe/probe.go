// Package probe adapts our own browser-driven test runner. Each probe act
// carries exactly one rule's measurements, so Normalize yields at most one
// finding.
package probe

import (
	"encoding/json"
	"math"

	"github.com/webscore/tally/internal/report"
	"github.com/webscore/tally/internal/tools"
)

// bulkThreshold is the visible-element count below which a page is not
// considered bulky at all.
const bulkThreshold = 300

type result struct {
	Rule      string `json:"rule"`
	Prevented bool   `json:"prevented"`
	Data      *data  `json:"data"`
}

type data struct {
	VisibleElements int `json:"visibleElements"`
	Discrepancy     int `json:"discrepancy"`
	MissingCount    int `json:"missingCount"`
	NonOutlineCount int `json:"nonOutlineCount"`
	MislabeledCount int `json:"mislabeledCount"`
	UnlabeledCount  int `json:"unlabeledCount"`
	ChangeCount     int `json:"changeCount"`
	UngroupedCount  int `json:"ungroupedCount"`
}

// Adapter normalizes probe results.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string  { return "probe" }
func (a *Adapter) InHouse() bool { return true }

func (a *Adapter) Normalize(act *report.Act) []tools.Finding {
	res, ok := decode(act)
	if !ok || res.Prevented || res.Rule == "" || res.Data == nil {
		return nil
	}
	d := res.Data
	var weight float64
	switch res.Rule {
	case "bulk":
		// Smooth excess over the threshold, not a per-instance count.
		weight = math.Max(0, float64(d.VisibleElements)/bulkThreshold-1)
	case "focAll":
		weight = 2 * float64(d.Discrepancy)
	case "focInd":
		weight = 3*float64(d.MissingCount) + float64(d.NonOutlineCount)
	case "labClash":
		weight = 2*float64(d.MislabeledCount) + float64(d.UnlabeledCount)
	case "motion":
		weight = 2 * float64(d.ChangeCount)
	case "radioSet":
		weight = 2 * float64(d.UngroupedCount)
	default:
		return nil
	}
	if weight == 0 {
		return nil
	}
	return []tools.Finding{{RuleID: res.Rule, Weight: weight}}
}

func (a *Adapter) IsPrevented(act *report.Act) bool {
	res, ok := decode(act)
	return !ok || res.Prevented || res.Rule == "" || res.Data == nil
}

// PreventionKey distinguishes probe preventions per rule, so one blocked
// rule does not mask another.
func (a *Adapter) PreventionKey(act *report.Act) string {
	res, ok := decode(act)
	if !ok || res.Rule == "" {
		return a.Name()
	}
	return a.Name() + ":" + res.Rule
}

func decode(act *report.Act) (result, bool) {
	if len(act.Result) == 0 {
		return result{}, false
	}
	var res result
	if err := json.Unmarshal(act.Result, &res); err != nil {
		return result{}, false
	}
	return res, true
}
