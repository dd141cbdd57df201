// Package tenon adapts Tenon results. Tenon grades every finding with a
// certainty and a priority, both 0-100, so its contribution is proportional
// rather than a discrete severity lookup.
package tenon

import (
	"encoding/json"
	"strconv"

	"github.com/webscore/tally/internal/report"
	"github.com/webscore/tally/internal/tools"
)

// divisor scales certainty × priority so a fully certain, top-priority
// finding contributes 4, the maximum of the common severity scale.
const divisor = 2500

type result struct {
	Data *data `json:"data"`
}

type data struct {
	ResultSet *[]item `json:"resultSet"`
}

type item struct {
	TID       int     `json:"tID"`
	Certainty float64 `json:"certainty"`
	Priority  float64 `json:"priority"`
}

// Adapter normalizes Tenon results. The registry lists tenon as pre-weighted
// since its certainty-scaled contributions are already on the final scale.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string  { return "tenon" }
func (a *Adapter) InHouse() bool { return false }

func (a *Adapter) Normalize(act *report.Act) []tools.Finding {
	res, ok := decode(act)
	if !ok || res.Data == nil || res.Data.ResultSet == nil {
		return nil
	}
	totals := make(map[string]float64)
	var order []string
	for _, it := range *res.Data.ResultSet {
		if it.TID <= 0 || it.Certainty < 0 || it.Priority < 0 {
			continue
		}
		rule := strconv.Itoa(it.TID)
		if _, seen := totals[rule]; !seen {
			order = append(order, rule)
		}
		totals[rule] += it.Certainty * it.Priority / divisor
	}
	findings := make([]tools.Finding, 0, len(order))
	for _, rule := range order {
		findings = append(findings, tools.Finding{RuleID: rule, Weight: totals[rule]})
	}
	return findings
}

func (a *Adapter) IsPrevented(act *report.Act) bool {
	res, ok := decode(act)
	return !ok || res.Data == nil || res.Data.ResultSet == nil
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
