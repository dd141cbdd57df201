// Package alfa adapts the alfa rule engine's binary-verdict results.
package alfa

import (
	"encoding/json"

	"github.com/webscore/tally/internal/report"
	"github.com/webscore/tally/internal/tools"
)

type result struct {
	Items *[]item `json:"items"`
}

type item struct {
	Rule    string `json:"rule"`
	Verdict string `json:"verdict"`
}

// Adapter normalizes alfa results. Each outcome item carries a rule and a
// verdict; failed outcomes count at the maximum severity, cantTell outcomes
// as advisory.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string  { return "alfa" }
func (a *Adapter) InHouse() bool { return false }

func (a *Adapter) Normalize(act *report.Act) []tools.Finding {
	res, ok := decode(act)
	if !ok || res.Items == nil {
		return nil
	}
	totals := make(map[string]float64)
	var order []string
	for _, it := range *res.Items {
		if it.Rule == "" {
			continue
		}
		var weight float64
		switch it.Verdict {
		case "failed":
			weight = 4
		case "cantTell":
			weight = 1
		default:
			continue
		}
		if _, seen := totals[it.Rule]; !seen {
			order = append(order, it.Rule)
		}
		totals[it.Rule] += weight
	}
	findings := make([]tools.Finding, 0, len(order))
	for _, rule := range order {
		findings = append(findings, tools.Finding{RuleID: rule, Weight: totals[rule]})
	}
	return findings
}

func (a *Adapter) IsPrevented(act *report.Act) bool {
	res, ok := decode(act)
	return !ok || res.Items == nil
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
