package score

// GroupWeights shapes how corroborating findings combine within one issue
// group: having any defect at all costs Absolute, the worst-offending tool's
// subtotal counts at Largest, and the remaining tools' subtotals count at
// Smaller. This keeps the penalty from scaling linearly with the number of
// tools that happen to detect the same real-world defect.
type GroupWeights struct {
	Absolute float64 `json:"absolute"`
	Largest  float64 `json:"largest"`
	Smaller  float64 `json:"smaller"`
}

// LogWeights is the linear combination applied to job log metadata.
type LogWeights struct {
	Count          float64 `json:"count"`
	Size           float64 `json:"size"`
	ErrorCount     float64 `json:"errorCount"`
	ErrorSize      float64 `json:"errorSize"`
	Prohibited     float64 `json:"prohibited"`
	VisitTimeout   float64 `json:"visitTimeout"`
	VisitRejection float64 `json:"visitRejection"`
	Latency        float64 `json:"latency"`
}

// PreventionWeights penalizes tests that could not run. Third-party failures
// are rarer and more informative than failures of our own runner, so they
// weigh more.
type PreventionWeights struct {
	InHouse  float64 `json:"inHouse"`
	External float64 `json:"external"`
}

// RuleScore is one group member's contribution, with its registry
// description for auditability.
type RuleScore struct {
	Score float64 `json:"score"`
	What  string  `json:"what"`
}

// GroupDetails is the classified view of the accumulated findings:
// group -> tool -> rule -> member score, plus the solo scores of rules that
// matched no group.
type GroupDetails struct {
	Groups map[string]map[string]map[string]RuleScore `json:"groups"`
	Solos  map[string]map[string]float64              `json:"solos"`
}

// GroupSummary is one scored group in the caller-facing summary.
type GroupSummary struct {
	GroupName string `json:"groupName"`
	Score     int    `json:"score"`
}

// Summary is the caller-facing result. Groups are sorted by descending score
// (name as tiebreak) for presentation stability.
type Summary struct {
	Total       int            `json:"total"`
	Log         int            `json:"log"`
	Preventions int            `json:"preventions"`
	Solos       int            `json:"solos"`
	Groups      []GroupSummary `json:"groups"`
}

// Record is the full, auditable output of one scoring call. Identical input
// and identical scoreProcID always yield an identical Record.
type Record struct {
	ProcID            string             `json:"scoreProcID"`
	LogWeights        LogWeights         `json:"logWeights"`
	SoloWeight        float64            `json:"soloWeight"`
	GroupWeights      GroupWeights       `json:"groupWeights"`
	PreventionWeights PreventionWeights  `json:"preventionWeights"`
	PackageDetails    PackageDetails     `json:"packageDetails"`
	GroupDetails      *GroupDetails      `json:"groupDetails"`
	PreventionScores  map[string]float64 `json:"preventionScores"`
	Summary           Summary            `json:"summary"`
}
