package score

import (
	"log/slog"
	"math"
	"sort"
)

// aggregate classifies the accumulated findings into group details and solo
// scores. It returns the details, the per-group summary scores of groups
// that participate in scoring, and the rounded solo total.
func (p *Proc) aggregate(details PackageDetails) (*GroupDetails, []GroupSummary, int) {
	gd := &GroupDetails{
		Groups: make(map[string]map[string]map[string]RuleScore),
		Solos:  make(map[string]map[string]float64),
	}

	var soloRaw float64

	toolNames := details.Tools()
	sort.Strings(toolNames)
	for _, tool := range toolNames {
		rules := make([]string, 0, len(details[tool]))
		for rule := range details[tool] {
			rules = append(rules, rule)
		}
		sort.Strings(rules)

		for _, rule := range rules {
			count := details[tool][rule]
			if count == 0 {
				// Rounded away; stays visible in packageDetails only.
				continue
			}

			groupID, ok := p.Registry.GroupOf(tool, rule)
			if !ok {
				// Expected over time: the registry is incomplete and must
				// degrade gracefully. Solo tests are independent signals,
				// not corroborating evidence, so no group shaping applies.
				slog.Debug("unclassified rule scored solo",
					"tool", tool, "rule", rule, "count", count)
				byRule, ok := gd.Solos[tool]
				if !ok {
					byRule = make(map[string]float64)
					gd.Solos[tool] = byRule
				}
				byRule[rule] = p.SoloWeight * float64(count)
				soloRaw += float64(count)
				continue
			}

			group, _ := p.Registry.Group(groupID)
			raw := float64(count)
			if !p.Registry.PreWeighted(tool) {
				raw *= float64(group.Weight) / maxSeverity
			}
			spec, _ := p.Registry.Spec(groupID, tool, rule)
			raw *= spec.Quality

			// Any non-zero raw finding contributes at least 1, so rounding
			// cannot erase a genuine defect.
			memberScore := math.Round(raw)
			if memberScore < 1 {
				memberScore = 1
			}

			byTool, ok := gd.Groups[groupID]
			if !ok {
				byTool = make(map[string]map[string]RuleScore)
				gd.Groups[groupID] = byTool
			}
			byRule, ok := byTool[tool]
			if !ok {
				byRule = make(map[string]RuleScore)
				byTool[tool] = byRule
			}
			byRule[rule] = RuleScore{Score: memberScore, What: spec.What}
		}
	}

	return gd, p.groupSummaries(gd), int(math.Round(p.SoloWeight * soloRaw))
}

// groupSummaries computes the shaped score of every scorable group. Groups
// with weight 0 stay in the details for audit but are never scored.
func (p *Proc) groupSummaries(gd *GroupDetails) []GroupSummary {
	var summaries []GroupSummary
	for groupID, byTool := range gd.Groups {
		group, ok := p.Registry.Group(groupID)
		if !ok || group.Weight == 0 {
			continue
		}

		subtotals := make([]float64, 0, len(byTool))
		for _, byRule := range byTool {
			var subtotal float64
			for _, rs := range byRule {
				subtotal += rs.Score
			}
			subtotals = append(subtotals, subtotal)
		}
		if len(subtotals) == 0 {
			continue
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(subtotals)))

		w := p.GroupWeights
		shaped := w.Absolute + w.Largest*subtotals[0]
		for _, sub := range subtotals[1:] {
			shaped += w.Smaller * sub
		}
		summaries = append(summaries, GroupSummary{
			GroupName: groupID,
			Score:     int(math.Round(shaped)),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Score != summaries[j].Score {
			return summaries[i].Score > summaries[j].Score
		}
		return summaries[i].GroupName < summaries[j].GroupName
	})
	return summaries
}
