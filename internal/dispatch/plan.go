package dispatch

import (
	"fmt"

	"github.com/funvibe/opforge/internal/schema"
)

// InvokeShape selects the call template: a namespace free function, or
// a method where the first declared argument is the receiver.
type InvokeShape uint8

const (
	ShapeNamespace InvokeShape = iota
	ShapeMethod
)

func (s InvokeShape) String() string {
	if s == ShapeMethod {
		return "method"
	}
	return "namespace"
}

// ArgStep is the compiled extraction plan for one declared argument.
type ArgStep struct {
	Name string
	Type schema.ArgType
	Role ArgRole

	// Index is the slot within the trailing fixed window for
	// positional arguments; -1 for the variadic tensor-list slice and
	// for attribute-role arguments.
	Index int
}

// CallPlan is the compiled calling convention for one accepted
// overload. Plans are computed once at build time and immutable after.
type CallPlan struct {
	Name         string
	Descriptor   string
	Shape        InvokeShape
	StaticInputs int
	Variadic     bool

	// Args lists every declared argument in order, each with its
	// extraction step.
	Args []ArgStep
}

// attrBindable reports whether a semantic type has a registration-time
// accessor. Tensor-kind arguments must stay positional.
func attrBindable(t schema.ArgType) bool {
	switch t {
	case schema.TypeScalar, schema.TypeInt, schema.TypeIntList,
		schema.TypeBool, schema.TypeDouble,
		schema.TypeBoolArray2, schema.TypeBoolArray3, schema.TypeBoolArray4:
		return true
	}
	return false
}

// compilePlan turns a variant into its call plan. Stack indices are
// assigned left to right over positional arguments; the variadic slice,
// if present, occupies everything before the fixed window.
func compilePlan(v *variant) (*CallPlan, error) {
	plan := &CallPlan{
		Name:         v.decl.Name,
		Descriptor:   v.descriptor(),
		StaticInputs: v.staticInputCount(),
		Variadic:     v.hasTensorList,
		Args:         make([]ArgStep, 0, len(v.decl.Args)),
	}
	if v.decl.InNamespace() {
		plan.Shape = ShapeNamespace
	} else {
		plan.Shape = ShapeMethod
	}

	nextSlot := 0
	for i, arg := range v.decl.Args {
		step := ArgStep{Name: arg.Name, Type: arg.Type, Role: v.roles[i], Index: -1}

		switch {
		case arg.Type == schema.TypeUnknown:
			return nil, &SchemaError{Decl: v.decl.Name, Reason: fmt.Sprintf("unknown semantic type for argument %q", arg.Name)}

		case arg.Type == schema.TypeTensorList:
			// Variadic slice; consumes no fixed slot.

		case arg.Type == schema.TypeTensor:
			if v.roles[i] == RoleAttribute {
				return nil, &SchemaError{
					Decl:   v.decl.Name,
					Reason: fmt.Sprintf("argument %q: Tensor cannot be bound as an attribute", arg.Name),
				}
			}
			step.Index = nextSlot
			nextSlot++

		case v.roles[i] == RolePositional:
			step.Index = nextSlot
			nextSlot++

		default: // attribute role
			if !attrBindable(arg.Type) {
				return nil, &SchemaError{
					Decl:   v.decl.Name,
					Reason: fmt.Sprintf("argument %q: %s cannot be bound as an attribute", arg.Name, arg.Type),
				}
			}
		}

		plan.Args = append(plan.Args, step)
	}

	return plan, nil
}
