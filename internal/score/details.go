package score

import "math"

// PackageDetails accumulates raw weighted counts per (tool, rule) for one
// report. A fresh value is created for every scoring call and never shared;
// accumulation is commutative, so acts may be folded in any order.
type PackageDetails map[string]map[string]int

// NewPackageDetails creates an empty accumulator.
func NewPackageDetails() PackageDetails {
	return make(PackageDetails)
}

// Add rounds a non-zero amount to the nearest integer and adds it to the
// (tool, rule) bucket, creating intermediate maps on first use. A sub-half
// amount still creates its bucket with a zero total, which keeps the finding
// visible in the audit detail even though zero-count entries are pruned
// before scoring.
func (d PackageDetails) Add(tool, rule string, amount float64) {
	if amount == 0 {
		return
	}
	byRule, ok := d[tool]
	if !ok {
		byRule = make(map[string]int)
		d[tool] = byRule
	}
	byRule[rule] += int(math.Round(amount))
}

// Tools returns the tool identifiers present in the accumulator, unsorted.
func (d PackageDetails) Tools() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	return names
}
