// Package classify holds the issue classification registry: the versioned
// configuration mapping (tool, rule) pairs to normalized issue groups, plus
// the pattern lists used to canonicalize free-text rule identifiers.
package classify

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed data/groups.yaml
var defaultData []byte

// TestSpec describes one (tool, rule) member of an issue group.
type TestSpec struct {
	// Quality discounts tests known to be noisier than average. Zero in the
	// configuration means unset and is normalized to 1 at load.
	Quality float64 `yaml:"quality" json:"quality"`
	What    string  `yaml:"what" json:"what"`
}

// Group is one normalized defect category that several tools may detect
// independently.
type Group struct {
	// Weight multiplies findings of tools that are not pre-weighted,
	// relative to the maximum per-finding severity. Zero means the group is
	// intentionally ignorable: audited but never scored.
	Weight int    `yaml:"weight" json:"weight"`
	What   string `yaml:"what" json:"what"`

	// Packages maps tool identifier to rule identifier to the member spec.
	Packages map[string]map[string]TestSpec `yaml:"packages" json:"packages"`
}

// rawRegistry is the YAML shape of the registry configuration.
type rawRegistry struct {
	Groups      map[string]Group    `yaml:"groups"`
	PreWeighted []string            `yaml:"preWeighted"`
	Patterns    map[string][]string `yaml:"patterns"`
}

// Registry is the loaded, validated classification registry. It is read-only
// after Load and safe to share across concurrent scoring calls.
type Registry struct {
	groups      map[string]Group
	index       map[string]map[string]string
	preWeighted map[string]bool
	patterns    map[string][]*regexp.Regexp
}

// Load parses and validates registry configuration. A rule mapped to two
// groups is a configuration defect and fails here, never at scoring time.
func Load(data []byte) (*Registry, error) {
	var raw rawRegistry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding registry: %w", err)
	}

	reg := &Registry{
		groups:      make(map[string]Group, len(raw.Groups)),
		index:       make(map[string]map[string]string),
		preWeighted: make(map[string]bool, len(raw.PreWeighted)),
		patterns:    make(map[string][]*regexp.Regexp, len(raw.Patterns)),
	}

	for groupID, group := range raw.Groups {
		if group.Weight < 0 {
			return nil, fmt.Errorf("registry: group %s has negative weight %d", groupID, group.Weight)
		}
		for tool, rules := range group.Packages {
			for rule, spec := range rules {
				if spec.Quality == 0 {
					spec.Quality = 1
					rules[rule] = spec
				}
				byRule, ok := reg.index[tool]
				if !ok {
					byRule = make(map[string]string)
					reg.index[tool] = byRule
				}
				if other, dup := byRule[rule]; dup {
					return nil, fmt.Errorf("registry: rule %s/%s mapped to both %s and %s",
						tool, rule, other, groupID)
				}
				byRule[rule] = groupID
			}
		}
		reg.groups[groupID] = group
	}

	for _, tool := range raw.PreWeighted {
		reg.preWeighted[tool] = true
	}

	for tool, sources := range raw.Patterns {
		compiled := make([]*regexp.Regexp, 0, len(sources))
		for _, src := range sources {
			pat, err := regexp.Compile(src)
			if err != nil {
				return nil, fmt.Errorf("registry: pattern %q for %s: %w", src, tool, err)
			}
			compiled = append(compiled, pat)
		}
		reg.patterns[tool] = compiled
	}

	return reg, nil
}

// Default loads the embedded registry configuration. The embedded data is
// validated by tests, so a failure here is a build defect.
func Default() *Registry {
	reg, err := Load(defaultData)
	if err != nil {
		panic(fmt.Sprintf("embedded registry invalid: %v", err))
	}
	return reg
}

// GroupOf resolves the owning group of a (tool, rule) pair. The second
// return is false for solo rules.
func (r *Registry) GroupOf(tool, rule string) (string, bool) {
	byRule, ok := r.index[tool]
	if !ok {
		return "", false
	}
	groupID, ok := byRule[rule]
	return groupID, ok
}

// Group returns a group by identifier.
func (r *Registry) Group(groupID string) (Group, bool) {
	g, ok := r.groups[groupID]
	return g, ok
}

// Spec returns the member spec for a (tool, rule) pair within its group.
func (r *Registry) Spec(groupID, tool, rule string) (TestSpec, bool) {
	group, ok := r.groups[groupID]
	if !ok {
		return TestSpec{}, false
	}
	spec, ok := group.Packages[tool][rule]
	return spec, ok
}

// PreWeighted reports whether a tool's native scale is authoritative, in
// which case group weight does not rescale its findings.
func (r *Registry) PreWeighted(tool string) bool {
	return r.preWeighted[tool]
}

// Patterns returns the ordered pattern list for a free-text-rule tool.
func (r *Registry) Patterns(tool string) []*regexp.Regexp {
	return r.patterns[tool]
}

// Len returns the number of groups, ignorable ones included.
func (r *Registry) Len() int {
	return len(r.groups)
}
