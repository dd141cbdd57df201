package score

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/webscore/tally/internal/classify"
	"github.com/webscore/tally/internal/report"
)

const testRegistry = `
groups:
  g1:
    weight: 4
    what: shared defect
    packages:
      alfa:
        r1: {what: rule one}
      wave:
        'e:r1w': {what: rule one via wave}
  g2:
    weight: 4
    what: second defect
    packages:
      wave:
        'e:r2w': {what: rule two via wave}
  gpre:
    weight: 2
    what: defect from a pre-weighted tool
    packages:
      axe:
        color-contrast: {what: low contrast}
  gq:
    weight: 4
    what: defect with a discounted member
    packages:
      wave:
        'e:q': {quality: 0.5, what: speculative rule}
  faint:
    weight: 1
    what: faint defect
    packages:
      wave:
        'a:tiny': {what: tiny alert}
  ignored:
    weight: 0
    what: audited but never scored
    packages:
      alfa:
        rIgn: {what: ignorable}
preWeighted:
  - axe
  - tenon
`

func testProc(t *testing.T) *Proc {
	t.Helper()
	reg, err := classify.Load([]byte(testRegistry))
	if err != nil {
		t.Fatalf("loading test registry: %v", err)
	}
	return &Proc{
		ID:           "test01",
		GroupWeights: GroupWeights{Absolute: 2, Largest: 1, Smaller: 0.4},
		SoloWeight:   1,
		LogWeights: LogWeights{
			Count: 0.5, Size: 0.01, ErrorCount: 1, ErrorSize: 0.02,
			Prohibited: 15, VisitTimeout: 10, VisitRejection: 10, Latency: 1,
		},
		PreventionWeights: PreventionWeights{InHouse: 50, External: 100},
		NormalLatency:     30,
		Registry:          reg,
		Tools:             DefaultTools(reg),
	}
}

func testReport(acts ...report.Act) *report.Report {
	return &report.Report{ID: "page-1", Acts: acts, JobData: &report.JobData{}}
}

func testAct(which, result string) report.Act {
	return report.Act{Type: report.ActTypeTest, Which: which, Result: json.RawMessage(result)}
}

// alfaFailures builds an alfa result with n failed outcomes of one rule.
func alfaFailures(rule string, n int) string {
	items := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			items += ","
		}
		items += fmt.Sprintf(`{"rule": %q, "verdict": "failed"}`, rule)
	}
	return `{"items": [` + items + `]}`
}

func TestScoreSingleGroup(t *testing.T) {
	proc := testProc(t)
	// Three failed instances at severity 4 accumulate to 12; group weight 4
	// leaves the count unscaled, so the shaped group score is 2 + 12.
	rep := testReport(testAct("alfa", alfaFailures("r1", 3)))

	rec, err := proc.Score(context.Background(), rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Summary.Total != 14 {
		t.Errorf("got total %d, want 14", rec.Summary.Total)
	}
	if len(rec.Summary.Groups) != 1 || rec.Summary.Groups[0].GroupName != "g1" || rec.Summary.Groups[0].Score != 14 {
		t.Errorf("got groups %+v, want [{g1 14}]", rec.Summary.Groups)
	}
	if rec.Summary.Solos != 0 || rec.Summary.Preventions != 0 || rec.Summary.Log != 0 {
		t.Errorf("got solos=%d preventions=%d log=%d, want all 0",
			rec.Summary.Solos, rec.Summary.Preventions, rec.Summary.Log)
	}
	if rec.PackageDetails["alfa"]["r1"] != 12 {
		t.Errorf("got accumulated count %d, want 12", rec.PackageDetails["alfa"]["r1"])
	}
}

func TestScoreEmptyReport(t *testing.T) {
	proc := testProc(t)
	rec, err := proc.Score(context.Background(), testReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Summary.Total != 0 {
		t.Errorf("got total %d, want 0", rec.Summary.Total)
	}
}

func TestScoreMissingJobData(t *testing.T) {
	proc := testProc(t)
	rep := &report.Report{ID: "page-1", Acts: nil}
	if _, err := proc.Score(context.Background(), rep); err == nil {
		t.Fatal("expected error for report without job metadata")
	}
}

func TestScoreDeterminism(t *testing.T) {
	proc := testProc(t)
	build := func() *report.Report {
		return &report.Report{
			ID: "page-1",
			Acts: []report.Act{
				testAct("alfa", alfaFailures("r1", 3)),
				testAct("wave", `{"categories": {
					"error": {"count": 5, "items": {"r1w": {"count": 3}, "r2w": {"count": 2}}},
					"alert": {"count": 1, "items": {"tiny": {"count": 1}}}
				}}`),
				testAct("axe", `{"violations": [{"id": "color-contrast", "impact": "serious", "nodes": 2}]}`),
				testAct("nuval", `{"messages": [{"type": "error", "message": "Stranger things."}]}`),
				testAct("probe", `{"rule": "motion", "prevented": true, "data": {}}`),
			},
			JobData: &report.JobData{LogCount: 4, LogSize: 100, VisitLatency: 42},
		}
	}

	first, err := proc.Score(context.Background(), build())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := proc.Score(context.Background(), build())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("records differ:\n%s\n%s", a, b)
	}
}

func TestScoreMonotonicity(t *testing.T) {
	proc := testProc(t)

	smaller, err := proc.Score(context.Background(), testReport(testAct("alfa", alfaFailures("r1", 3))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	larger, err := proc.Score(context.Background(), testReport(testAct("alfa", alfaFailures("r1", 4))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if larger.Summary.Total < smaller.Summary.Total {
		t.Errorf("adding a finding decreased the total: %d -> %d",
			smaller.Summary.Total, larger.Summary.Total)
	}
}

func TestScoreDuplicateDiscount(t *testing.T) {
	proc := testProc(t)
	ctx := context.Background()

	alfaAct := testAct("alfa", alfaFailures("r1", 3))
	waveAct := testAct("wave", `{"categories": {"error": {"count": 3, "items": {"r1w": {"count": 3}}}}}`)

	both, err := proc.Score(ctx, testReport(alfaAct, waveAct))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	alfaOnly, err := proc.Score(ctx, testReport(alfaAct))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waveOnly, err := proc.Score(ctx, testReport(waveAct))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both tools flag the same defect: the corroborating subtotal counts at
	// a discount, so the combined score must stay under the independent sum.
	separate := alfaOnly.Summary.Total + waveOnly.Summary.Total
	if both.Summary.Total >= separate {
		t.Errorf("combined score %d not discounted below independent sum %d",
			both.Summary.Total, separate)
	}

	// 2 + 1×12 + 0.4×12 = 18.8, rounded.
	if both.Summary.Total != 19 {
		t.Errorf("got combined total %d, want 19", both.Summary.Total)
	}
}

func TestScoreSoloRoundsOnce(t *testing.T) {
	proc := testProc(t)
	proc.SoloWeight = 0.4

	// Three distinct unclassified messages, each an error of weight 4.
	rep := testReport(testAct("nuval", `{"messages": [
		{"type": "error", "message": "Mystery one."},
		{"type": "error", "message": "Mystery two."},
		{"type": "error", "message": "Mystery three."}
	]}`))

	rec, err := proc.Score(context.Background(), rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// round(0.4 × 12) = 5; rounding each test separately would give 6.
	if rec.Summary.Solos != 5 {
		t.Errorf("got solos %d, want 5", rec.Summary.Solos)
	}
	if rec.Summary.Total != 5 {
		t.Errorf("got total %d, want 5", rec.Summary.Total)
	}
}

func TestScorePreventionCompleteness(t *testing.T) {
	proc := testProc(t)
	rep := &report.Report{
		ID: "page-1",
		Acts: []report.Act{
			{Type: report.ActTypeTest, Which: "alfa"},
			testAct("axe", `{"incomplete": []}`),
			testAct("probe", `{"rule": "motion", "prevented": true, "data": {}}`),
		},
		JobData: &report.JobData{LogCount: 2},
	}

	rec, err := proc.Score(context.Background(), rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two third-party tools at 100, the in-house runner at 50.
	if rec.Summary.Preventions != 250 {
		t.Errorf("got preventions %d, want 250", rec.Summary.Preventions)
	}
	if rec.Summary.Log != 1 {
		t.Errorf("got log %d, want 1", rec.Summary.Log)
	}
	if rec.Summary.Total != rec.Summary.Preventions+rec.Summary.Log {
		t.Errorf("total %d != preventions %d + log %d",
			rec.Summary.Total, rec.Summary.Preventions, rec.Summary.Log)
	}
	if rec.Summary.Solos != 0 || len(rec.Summary.Groups) != 0 {
		t.Errorf("prevented run produced findings: solos=%d groups=%v",
			rec.Summary.Solos, rec.Summary.Groups)
	}
	if w := rec.PreventionScores["probe:motion"]; w != 50 {
		t.Errorf("got in-house prevention weight %v, want 50", w)
	}
}

func TestScorePreventionOncePerTool(t *testing.T) {
	proc := testProc(t)
	rep := testReport(
		report.Act{Type: report.ActTypeTest, Which: "alfa"},
		report.Act{Type: report.ActTypeTest, Which: "alfa"},
	)

	rec, err := proc.Score(context.Background(), rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Summary.Preventions != 100 {
		t.Errorf("got preventions %d, want 100", rec.Summary.Preventions)
	}
}

func TestScoreUnknownToolSkipped(t *testing.T) {
	proc := testProc(t)
	rep := testReport(testAct("mystery", `{"anything": 1}`))

	rec, err := proc.Score(context.Background(), rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Summary.Total != 0 {
		t.Errorf("got total %d, want 0", rec.Summary.Total)
	}
	if len(rec.PreventionScores) != 0 {
		t.Errorf("unsupported tool must not count as prevented: %v", rec.PreventionScores)
	}
}

func TestScoreSummaryOrdering(t *testing.T) {
	proc := testProc(t)
	rep := testReport(
		testAct("alfa", alfaFailures("r1", 5)),
		testAct("wave", `{"categories": {"error": {"count": 1, "items": {"r2w": {"count": 1}}}}}`),
	)

	rec, err := proc.Score(context.Background(), rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Summary.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(rec.Summary.Groups))
	}
	if rec.Summary.Groups[0].Score < rec.Summary.Groups[1].Score {
		t.Errorf("groups not sorted by descending score: %+v", rec.Summary.Groups)
	}
	if rec.Summary.Groups[0].GroupName != "g1" {
		t.Errorf("got first group %q, want g1", rec.Summary.Groups[0].GroupName)
	}
}

func TestScoreRecordCarriesWeights(t *testing.T) {
	proc := testProc(t)
	rec, err := proc.Score(context.Background(), testReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ProcID != proc.ID {
		t.Errorf("got proc ID %q, want %q", rec.ProcID, proc.ID)
	}
	if rec.GroupWeights != proc.GroupWeights {
		t.Errorf("got group weights %+v, want %+v", rec.GroupWeights, proc.GroupWeights)
	}
	if rec.PreventionWeights != proc.PreventionWeights {
		t.Errorf("got prevention weights %+v, want %+v", rec.PreventionWeights, proc.PreventionWeights)
	}
}
