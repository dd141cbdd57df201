// Package nuval adapts the Nu HTML checker, whose findings are free-text
// messages rather than discrete rule identifiers. Messages are canonicalized
// through an ordered pattern list supplied by the classification registry.
package nuval

import (
	"encoding/json"
	"regexp"

	"github.com/webscore/tally/internal/report"
	"github.com/webscore/tally/internal/tools"
)

type result struct {
	Messages *[]message `json:"messages"`
}

type message struct {
	Type    string `json:"type"`
	SubType string `json:"subType"`
	Message string `json:"message"`
}

// Adapter normalizes Nu HTML checker results.
type Adapter struct {
	patterns []*regexp.Regexp
}

// New creates an adapter with the registry's ordered pattern list. Order
// matters: the first matching pattern's source string becomes the canonical
// rule identifier, so two raw messages matching the same pattern share one
// accumulator bucket.
func New(patterns []*regexp.Regexp) *Adapter {
	return &Adapter{patterns: patterns}
}

func (a *Adapter) Name() string  { return "nuval" }
func (a *Adapter) InHouse() bool { return false }

func (a *Adapter) Normalize(act *report.Act) []tools.Finding {
	res, ok := decode(act)
	if !ok || res.Messages == nil {
		return nil
	}
	totals := make(map[string]float64)
	var order []string
	for _, msg := range *res.Messages {
		var weight float64
		switch {
		case msg.Type == "error":
			weight = 4
		case msg.Type == "info" && msg.SubType == "warning":
			weight = 1
		default:
			continue
		}
		rule := a.canonical(msg.Message)
		if rule == "" {
			continue
		}
		if _, seen := totals[rule]; !seen {
			order = append(order, rule)
		}
		totals[rule] += weight
	}
	findings := make([]tools.Finding, 0, len(order))
	for _, rule := range order {
		findings = append(findings, tools.Finding{RuleID: rule, Weight: totals[rule]})
	}
	return findings
}

func (a *Adapter) IsPrevented(act *report.Act) bool {
	res, ok := decode(act)
	return !ok || res.Messages == nil
}

// canonical maps a raw message to a rule identifier. Unmatched messages keep
// their literal text and end up scored solo.
func (a *Adapter) canonical(msg string) string {
	for _, pat := range a.patterns {
		if pat.MatchString(msg) {
			return pat.String()
		}
	}
	return msg
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
