package score

import (
	"fmt"
	"sort"

	"github.com/webscore/tally/internal/classify"
	"github.com/webscore/tally/internal/tools"
	"github.com/webscore/tally/internal/tools/alfa"
	"github.com/webscore/tally/internal/tools/axe"
	"github.com/webscore/tally/internal/tools/ibm"
	"github.com/webscore/tally/internal/tools/nuval"
	"github.com/webscore/tally/internal/tools/probe"
	"github.com/webscore/tally/internal/tools/tenon"
	"github.com/webscore/tally/internal/tools/wave"
)

// maxSeverity is the top of the common per-finding severity scale. Group
// weight rescales non-pre-weighted findings relative to it.
const maxSeverity = 4

// DefaultProcID is the scoring procedure used when the caller names none.
const DefaultProcID = "asp02"

// Proc is one frozen scoring procedure: the registry and every weight table,
// versioned together under a single ID. Changing any of them mints a new ID
// so historical scores stay attributable to the exact formula that produced
// them. Procs are read-only and safe to share across concurrent calls.
type Proc struct {
	ID                string
	GroupWeights      GroupWeights
	SoloWeight        float64
	LogWeights        LogWeights
	PreventionWeights PreventionWeights

	// NormalLatency is the visit latency, in seconds, considered normal.
	// Only the excess is penalized. Zero disables the latency term.
	NormalLatency float64

	Registry *classify.Registry
	Tools    *tools.Registry
}

// procs is populated once at startup and read-only thereafter. Historical
// procedures are frozen as shipped, drift and all; reproducibility of past
// scores takes precedence over internal consistency between versions.
var procs = buildProcs()

func buildProcs() map[string]*Proc {
	registry := classify.Default()
	adapters := DefaultTools(registry)

	asp01 := &Proc{
		ID:           "asp01",
		GroupWeights: GroupWeights{Absolute: 2, Largest: 1, Smaller: 0.4},
		SoloWeight:   1,
		LogWeights: LogWeights{
			Count:          0.5,
			Size:           0.01,
			ErrorCount:     1,
			ErrorSize:      0.02,
			Prohibited:     15,
			VisitTimeout:   10,
			VisitRejection: 10,
		},
		PreventionWeights: PreventionWeights{InHouse: 50, External: 100},
		Registry:          registry,
		Tools:             adapters,
	}

	asp02 := &Proc{
		ID:           "asp02",
		GroupWeights: GroupWeights{Absolute: 2, Largest: 1, Smaller: 0.4},
		SoloWeight:   1,
		LogWeights: LogWeights{
			Count:          0.5,
			Size:           0.01,
			ErrorCount:     1,
			ErrorSize:      0.02,
			Prohibited:     15,
			VisitTimeout:   10,
			VisitRejection: 10,
			Latency:        1,
		},
		PreventionWeights: PreventionWeights{InHouse: 50, External: 100},
		NormalLatency:     30,
		Registry:          registry,
		Tools:             adapters,
	}

	return map[string]*Proc{
		asp01.ID: asp01,
		asp02.ID: asp02,
	}
}

// DefaultTools builds the adapter registry for the supported tools, wiring
// the free-text canonicalization patterns from the classification registry.
func DefaultTools(registry *classify.Registry) *tools.Registry {
	r := tools.NewRegistry()
	r.Register(alfa.New())
	r.Register(axe.New())
	r.Register(ibm.New())
	r.Register(nuval.New(registry.Patterns("nuval")))
	r.Register(probe.New())
	r.Register(tenon.New())
	r.Register(wave.New())
	return r
}

// Lookup returns a registered scoring procedure by ID.
func Lookup(id string) (*Proc, error) {
	p, ok := procs[id]
	if !ok {
		return nil, fmt.Errorf("no scoring procedure %q", id)
	}
	return p, nil
}

// ProcIDs returns the registered procedure IDs, sorted.
func ProcIDs() []string {
	ids := make([]string, 0, len(procs))
	for id := range procs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
