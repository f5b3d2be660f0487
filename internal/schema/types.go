// Package schema holds the operator declaration data model consumed by
// the dispatch builder, plus the YAML collaborator that produces
// already-structured declarations from a schema document.
package schema

import (
	"fmt"

	"github.com/funvibe/opforge/internal/config"
	"gopkg.in/yaml.v3"
)

// ArgType is the semantic type tag of a declared operator argument.
type ArgType uint8

const (
	TypeUnknown ArgType = iota
	TypeTensor
	TypeTensorList
	TypeScalar
	TypeInt
	TypeIntList
	TypeBool
	TypeDouble
	TypeBoolArray2
	TypeBoolArray3
	TypeBoolArray4
	TypeGenerator
	TypeSparseTensor
	TypeStorage
	TypeTypeTag
)

var argTypeNames = map[ArgType]string{
	TypeTensor:       "Tensor",
	TypeTensorList:   "TensorList",
	TypeScalar:       "Scalar",
	TypeInt:          "Int",
	TypeIntList:      "IntList",
	TypeBool:         "Bool",
	TypeDouble:       "Double",
	TypeBoolArray2:   "BoolArray2",
	TypeBoolArray3:   "BoolArray3",
	TypeBoolArray4:   "BoolArray4",
	TypeGenerator:    "Generator",
	TypeSparseTensor: "SparseTensor",
	TypeStorage:      "Storage",
	TypeTypeTag:      "Type",
}

var argTypeByName = func() map[string]ArgType {
	m := make(map[string]ArgType, len(argTypeNames))
	for t, n := range argTypeNames {
		m[n] = t
	}
	return m
}()

func (t ArgType) String() string {
	if n, ok := argTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("ArgType(%d)", uint8(t))
}

// ParseArgType resolves a schema-document type spelling.
func ParseArgType(s string) (ArgType, bool) {
	t, ok := argTypeByName[s]
	return t, ok
}

// IsTensorKind reports whether the type is sourced from tensor inputs
// (Tensor or TensorList) rather than from scalar data.
func (t ArgType) IsTensorKind() bool {
	return t == TypeTensor || t == TypeTensorList
}

// BoolArraySize returns the fixed size of a BoolArrayN type.
func (t ArgType) BoolArraySize() (int, bool) {
	switch t {
	case TypeBoolArray2:
		return 2, true
	case TypeBoolArray3:
		return 3, true
	case TypeBoolArray4:
		return 4, true
	}
	return 0, false
}

// UnmarshalYAML decodes an ArgType from its schema spelling.
// Unknown spellings are a decode error so a malformed document is
// rejected at ingestion rather than surfacing mid-build.
func (t *ArgType) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, ok := ParseArgType(s)
	if !ok {
		return fmt.Errorf("unknown argument type %q at line %d", s, node.Line)
	}
	*t = parsed
	return nil
}

// MarshalYAML emits the canonical spelling.
func (t ArgType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// Argument is one declared operator argument.
type Argument struct {
	// Name is the argument name as declared in the schema.
	Name string `yaml:"name"`

	// Type is the semantic type tag.
	Type ArgType `yaml:"type"`

	// Default carries the declared default literal, if any.
	// Informational only; the builder never evaluates it.
	Default string `yaml:"default,omitempty"`
}

// Declaration is one operator overload as ingested from the schema
// source. Immutable once ingested: the builder never mutates it.
type Declaration struct {
	// Name is the callable name (e.g. "add").
	Name string `yaml:"name"`

	// APIName is the public api name, used to detect mutating and
	// dunder forms (e.g. "add_", "__and__"). Defaults to Name.
	APIName string `yaml:"api_name,omitempty"`

	// MethodOf lists the contexts the declaration belongs to:
	// "namespace" for a free function, "Tensor" for a receiver method.
	MethodOf []string `yaml:"method_of"`

	// Args is the ordered argument list.
	Args []Argument `yaml:"arguments"`
}

// InNamespace reports whether the declaration is callable as a
// namespace free function.
func (d *Declaration) InNamespace() bool {
	return d.inContext(config.NamespaceContext)
}

// IsMethod reports whether the declaration is callable as a method of
// the tensor receiver type.
func (d *Declaration) IsMethod() bool {
	return d.inContext(config.TensorReceiver)
}

func (d *Declaration) inContext(ctx string) bool {
	for _, c := range d.MethodOf {
		if c == ctx {
			return true
		}
	}
	return false
}
