// Package ibm adapts IBM Equal Access results. The checker scans twice, once
// from page content and once from the URL; the adapter picks one mode.
package ibm

import (
	"encoding/json"

	"github.com/webscore/tally/internal/report"
	"github.com/webscore/tally/internal/tools"
)

var levelWeights = map[string]float64{
	"violation":      4,
	"recommendation": 1,
}

type result struct {
	Content *scan `json:"content"`
	URL     *scan `json:"url"`
}

type scan struct {
	Totals *totals `json:"totals"`
	Items  []item  `json:"items"`
}

type totals struct {
	Violation      int `json:"violation"`
	Recommendation int `json:"recommendation"`
}

type item struct {
	RuleID string `json:"ruleId"`
	Level  string `json:"level"`
}

// wellFormed reports whether a scan's totals agree with its item list. A
// mismatch means the checker aborted mid-scan.
func (s *scan) wellFormed() bool {
	if s == nil || s.Totals == nil {
		return false
	}
	return s.Totals.Violation+s.Totals.Recommendation == len(s.Items)
}

// Adapter normalizes IBM Equal Access results.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string  { return "ibm" }
func (a *Adapter) InHouse() bool { return false }

func (a *Adapter) Normalize(act *report.Act) []tools.Finding {
	chosen := pick(act)
	if chosen == nil {
		return nil
	}
	totals := make(map[string]float64)
	var order []string
	for _, it := range chosen.Items {
		weight, ok := levelWeights[it.Level]
		if !ok || it.RuleID == "" {
			continue
		}
		if _, seen := totals[it.RuleID]; !seen {
			order = append(order, it.RuleID)
		}
		totals[it.RuleID] += weight
	}
	findings := make([]tools.Finding, 0, len(order))
	for _, rule := range order {
		findings = append(findings, tools.Finding{RuleID: rule, Weight: totals[rule]})
	}
	return findings
}

func (a *Adapter) IsPrevented(act *report.Act) bool {
	return pick(act) == nil
}

// pick chooses between the content and URL scans: content wins unless it is
// malformed or the URL scan found strictly more violations.
func pick(act *report.Act) *scan {
	if len(act.Result) == 0 {
		return nil
	}
	var res result
	if err := json.Unmarshal(act.Result, &res); err != nil {
		return nil
	}
	contentOK := res.Content.wellFormed()
	urlOK := res.URL.wellFormed()
	switch {
	case contentOK && urlOK:
		if res.URL.Totals.Violation > res.Content.Totals.Violation {
			return res.URL
		}
		return res.Content
	case contentOK:
		return res.Content
	case urlOK:
		return res.URL
	default:
		return nil
	}
}
