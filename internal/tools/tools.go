// Package tools defines the adapter contract for supported test tools and a
// registry for dispatching acts to them.
package tools

import (
	"fmt"
	"sort"
	"sync"

	"github.com/webscore/tally/internal/report"
)

// Finding is one normalized (rule, weighted count) pair extracted from a
// tool's raw result. Weight is on the common 1-4 discounted-severity scale,
// already multiplied by the instance count for that rule.
type Finding struct {
	RuleID string
	Weight float64
}

// Adapter normalizes one tool's idiosyncratic result payload.
type Adapter interface {
	// Name returns the tool identifier matched against Act.Which.
	Name() string

	// Normalize extracts findings from the act. A missing or malformed
	// result yields an empty slice, never an error.
	Normalize(act *report.Act) []Finding

	// IsPrevented reports whether the act shows the test could not run.
	IsPrevented(act *report.Act) bool

	// InHouse reports whether the tool is our own runner rather than a
	// third-party analyzer. Preventions of in-house tests weigh less.
	InHouse() bool
}

// PreventionKeyer is an optional adapter interface for tools that run as
// multiple independent acts. The key distinguishes which instance was
// prevented; adapters without it are keyed by tool name alone.
type PreventionKeyer interface {
	PreventionKey(act *report.Act) string
}

// Registry stores the available tool adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter, replacing any previous one with the same name.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Adapter returns the adapter for a tool identifier.
func (r *Registry) Adapter(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("no adapter for tool %q", name)
	}
	return a, nil
}

// Names returns the registered tool identifiers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
