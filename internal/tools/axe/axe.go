// Package axe adapts axe-core's severity-graded results.
package axe

import (
	"encoding/json"

	"github.com/webscore/tally/internal/report"
	"github.com/webscore/tally/internal/tools"
)

// impactWeights maps axe's impact taxonomy onto the common severity scale.
var impactWeights = map[string]float64{
	"minor":    1,
	"moderate": 2,
	"serious":  3,
	"critical": 4,
}

// incompleteDiscount is applied to findings axe could not fully verify.
const incompleteDiscount = 0.25

type result struct {
	Violations *[]item `json:"violations"`
	Incomplete []item  `json:"incomplete"`
}

type item struct {
	ID     string `json:"id"`
	Impact string `json:"impact"`
	Nodes  int    `json:"nodes"`
}

// Adapter normalizes axe results. Axe's own severity scale is authoritative,
// so the registry lists it as pre-weighted.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string  { return "axe" }
func (a *Adapter) InHouse() bool { return false }

func (a *Adapter) Normalize(act *report.Act) []tools.Finding {
	res, ok := decode(act)
	if !ok || res.Violations == nil {
		return nil
	}
	totals := make(map[string]float64)
	var order []string
	add := func(it item, discount float64) {
		weight, ok := impactWeights[it.Impact]
		if !ok || it.ID == "" || it.Nodes <= 0 {
			return
		}
		if _, seen := totals[it.ID]; !seen {
			order = append(order, it.ID)
		}
		totals[it.ID] += float64(it.Nodes) * weight * discount
	}
	for _, it := range *res.Violations {
		add(it, 1)
	}
	for _, it := range res.Incomplete {
		add(it, incompleteDiscount)
	}
	findings := make([]tools.Finding, 0, len(order))
	for _, id := range order {
		findings = append(findings, tools.Finding{RuleID: id, Weight: totals[id]})
	}
	return findings
}

func (a *Adapter) IsPrevented(act *report.Act) bool {
	res, ok := decode(act)
	return !ok || res.Violations == nil
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
