// Package wave adapts WAVE's category-bucketed results.
package wave

import (
	"encoding/json"
	"sort"

	"github.com/webscore/tally/internal/report"
	"github.com/webscore/tally/internal/tools"
)

// category multipliers and rule-key prefixes. The prefix namespaces each
// category's rule keys so "label" in errors cannot collide with "label" in
// alerts.
var categories = []struct {
	name   string
	prefix string
	weight float64
}{
	{"error", "e:", 4},
	{"contrast", "c:", 3},
	{"alert", "a:", 1},
}

type result struct {
	Categories *map[string]category `json:"categories"`
}

type category struct {
	Count int             `json:"count"`
	Items map[string]item `json:"items"`
}

type item struct {
	Count int `json:"count"`
}

// Adapter normalizes WAVE results.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string  { return "wave" }
func (a *Adapter) InHouse() bool { return false }

func (a *Adapter) Normalize(act *report.Act) []tools.Finding {
	res, ok := decode(act)
	if !ok || res.Categories == nil {
		return nil
	}
	var findings []tools.Finding
	for _, cat := range categories {
		bucket, ok := (*res.Categories)[cat.name]
		if !ok {
			continue
		}
		keys := make([]string, 0, len(bucket.Items))
		for key := range bucket.Items {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			count := bucket.Items[key].Count
			if count <= 0 {
				continue
			}
			findings = append(findings, tools.Finding{
				RuleID: cat.prefix + key,
				Weight: float64(count) * cat.weight,
			})
		}
	}
	return findings
}

func (a *Adapter) IsPrevented(act *report.Act) bool {
	res, ok := decode(act)
	return !ok || res.Categories == nil
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
