package dispatch

import (
	"fmt"
	"os"

	"github.com/funvibe/opforge/internal/schema"
	"gopkg.in/yaml.v3"
)

// AmbiguityRules maps an overload key to declared-argument positions.
// A candidate variant whose argument at any listed position is
// Scalar-typed is discarded: a tensor-typed sibling with the same key
// subsumes the scalar case through broadcasting, so the scalar variant
// would either collide or be strictly worse.
//
// The table is an exception list, not a derived rule; operators outside
// it may still harbor undetected scalar/tensor collisions. Treat it as
// injectable configuration.
type AmbiguityRules map[string][]int

// DefaultAmbiguityRules returns the bundled, versioned rule table.
func DefaultAmbiguityRules() AmbiguityRules {
	return AmbiguityRules{
		"lt-2": {1}, "gt-2": {1}, "le-2": {1}, "ge-2": {1}, "eq-2": {1}, "ne-2": {1},
		"pow-2": {0, 1}, "add-3": {1}, "sub-3": {1}, "mul-2": {1}, "div-2": {1},
		"fmod-2": {1}, "remainder-2": {1}, "__and__-2": {1}, "__or__-2": {1},
		"__iand__-2": {1}, "__ior__-2": {1}, "__xor__-2": {1}, "__ixor__-2": {1},
		"__lshift__-2": {1}, "__ilshift__-2": {1}, "__rshift__-2": {1}, "__irshift__-2": {1},
	}
}

// LoadAmbiguityRules reads a rule table from a YAML file of the shape
//
//	rules:
//	  add-3: [1]
//	  pow-2: [0, 1]
func LoadAmbiguityRules(path string) (AmbiguityRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open ambiguity rules: %w", err)
	}
	var doc struct {
		Rules map[string][]int `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode ambiguity rules %s: %w", path, err)
	}
	return AmbiguityRules(doc.Rules), nil
}

// suppresses reports whether the rule table drops this variant under
// the given key. Positions index the declared argument list.
func (r AmbiguityRules) suppresses(key string, v *variant) bool {
	positions, ok := r[key]
	if !ok {
		return false
	}
	for _, idx := range positions {
		if idx >= 0 && idx < len(v.decl.Args) && v.decl.Args[idx].Type == schema.TypeScalar {
			return true
		}
	}
	return false
}
