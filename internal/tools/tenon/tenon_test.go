package tenon

import (
	"encoding/json"
	"testing"

	"github.com/webscore/tally/internal/report"
)

func act(result string) *report.Act {
	a := &report.Act{Type: report.ActTypeTest, Which: "tenon"}
	if result != "" {
		a.Result = json.RawMessage(result)
	}
	return a
}

func TestNormalizeProportional(t *testing.T) {
	a := New()
	findings := a.Normalize(act(`{"data": {"resultSet": [
		{"tID": 57, "certainty": 100, "priority": 100},
		{"tID": 57, "certainty": 50, "priority": 50},
		{"tID": 144, "certainty": 80, "priority": 40}
	]}}`))

	want := map[string]float64{
		"57":  5,    // 4 + 1
		"144": 1.28, // 80×40/2500
	}
	if len(findings) != len(want) {
		t.Fatalf("got %d findings, want %d", len(findings), len(want))
	}
	for _, f := range findings {
		if want[f.RuleID] != f.Weight {
			t.Errorf("%s: got weight %v, want %v", f.RuleID, f.Weight, want[f.RuleID])
		}
	}
}

func TestNormalizeFullScaleIsFour(t *testing.T) {
	a := New()
	findings := a.Normalize(act(`{"data": {"resultSet": [
		{"tID": 9, "certainty": 100, "priority": 100}
	]}}`))
	if len(findings) != 1 || findings[0].Weight != 4 {
		t.Fatalf("got %+v, want single finding of weight 4", findings)
	}
}

func TestIsPrevented(t *testing.T) {
	a := New()
	if !a.IsPrevented(act("")) {
		t.Error("absent result must be prevented")
	}
	if !a.IsPrevented(act(`{"data": {}}`)) {
		t.Error("missing resultSet must be prevented")
	}
	if a.IsPrevented(act(`{"data": {"resultSet": []}}`)) {
		t.Error("empty resultSet is a clean run, not a prevention")
	}
}
