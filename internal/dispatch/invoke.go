package dispatch

import (
	"fmt"

	"github.com/funvibe/opforge/internal/runtime"
	"github.com/funvibe/opforge/internal/schema"
)

// BoundOp is a call plan with its attribute-role arguments resolved
// from a use site's static metadata and its kernel looked up. Binding
// happens once per use site; Run happens per dispatch event.
type BoundOp struct {
	plan   *CallPlan
	kernel runtime.Kernel
	attrs  []runtime.Value // bound values for attribute-role steps, indexed like plan.Args
}

// Bind resolves the plan against a use site: reads every attribute
// argument through its type-specific accessor (with composite coercion
// where the type calls for one) and selects the kernel matching the
// invocation shape.
func (p *CallPlan) Bind(attrs runtime.Attrs, kernels *runtime.KernelSet) (*BoundOp, error) {
	var kernel runtime.Kernel
	var ok bool
	if p.Shape == ShapeNamespace {
		kernel, ok = kernels.Namespace(p.Name)
	} else {
		kernel, ok = kernels.Method(p.Name)
	}
	if !ok {
		return nil, fmt.Errorf("no %s kernel registered for %q", p.Shape, p.Name)
	}

	bound := make([]runtime.Value, len(p.Args))
	for i, step := range p.Args {
		if step.Role != RoleAttribute {
			continue
		}
		v, err := bindAttribute(attrs, step)
		if err != nil {
			return nil, err
		}
		bound[i] = v
	}

	return &BoundOp{plan: p, kernel: kernel, attrs: bound}, nil
}

func bindAttribute(attrs runtime.Attrs, step ArgStep) (runtime.Value, error) {
	missing := func() (runtime.Value, error) {
		return runtime.NilVal(), fmt.Errorf("missing attribute %q (%s)", step.Name, step.Type)
	}

	switch step.Type {
	case schema.TypeInt:
		v, ok := attrs.I(step.Name)
		if !ok {
			return missing()
		}
		return runtime.IntVal(v), nil

	case schema.TypeBool:
		v, ok := attrs.I(step.Name)
		if !ok {
			return missing()
		}
		return runtime.BoolVal(v != 0), nil

	case schema.TypeDouble:
		v, ok := attrs.F(step.Name)
		if !ok {
			return missing()
		}
		return runtime.DoubleVal(v), nil

	case schema.TypeIntList:
		v, ok := attrs.Is(step.Name)
		if !ok {
			return missing()
		}
		return runtime.IntListVal(v), nil

	case schema.TypeScalar:
		v, ok := attrs.T(step.Name)
		if !ok {
			return missing()
		}
		return runtime.ScalarVal(v), nil

	case schema.TypeBoolArray2, schema.TypeBoolArray3, schema.TypeBoolArray4:
		vs, ok := attrs.Is(step.Name)
		if !ok {
			return missing()
		}
		n, _ := step.Type.BoolArraySize()
		arr, err := runtime.BoolArrayFromInts(step.Name, vs, n)
		if err != nil {
			return runtime.NilVal(), err
		}
		return runtime.BoolArrayVal(arr), nil
	}

	return runtime.NilVal(), fmt.Errorf("attribute %q has unbindable type %s", step.Name, step.Type)
}

// Plan returns the compiled plan this op was bound from.
func (op *BoundOp) Plan() *CallPlan { return op.plan }

// Run executes one dispatch event against the caller's operand stack.
//
// Arity and every coercion are validated through non-destructive peeks
// before anything is dropped, so a failed dispatch leaves the stack
// unmodified. The device implied by the tensor inputs is entered for
// the duration of the kernel and restored on every exit path, and a
// profiling span tagged with the operator name covers the invocation.
func (op *BoundOp) Run(s *runtime.Stack, reg *runtime.DeviceRegister, prof runtime.Profiler) error {
	plan := op.plan

	// For a variadic op the total input count is observed from the
	// live stack; otherwise it is fixed at build time.
	total := plan.StaticInputs
	if plan.Variadic {
		total = s.Len()
	}
	if s.Len() < total || total < plan.StaticInputs {
		return &runtime.ArityError{Op: plan.Name, Need: plan.StaticInputs, Have: s.Len()}
	}

	args, err := op.collectArgs(s, total)
	if err != nil {
		return err
	}

	span := prof.Begin(plan.Name)
	defer span.End()

	guard := reg.Enter(runtime.DeviceForInputs(s, total))
	defer guard.Release()

	results, err := op.kernel(args)
	if err != nil {
		return fmt.Errorf("%s: %w", plan.Name, err)
	}

	s.Drop(total)
	for _, r := range results {
		s.Push(r)
	}
	return nil
}

// collectArgs materializes the argument list in declared order using
// only non-destructive reads.
func (op *BoundOp) collectArgs(s *runtime.Stack, total int) ([]runtime.Value, error) {
	plan := op.plan
	args := make([]runtime.Value, 0, len(plan.Args))

	for i, step := range plan.Args {
		if step.Role == RoleAttribute {
			args = append(args, op.attrs[i])
			continue
		}

		if step.Type == schema.TypeTensorList {
			slice := s.PeekSlice(0, total-plan.StaticInputs, total)
			tensors := make([]*runtime.Tensor, len(slice))
			for j, v := range slice {
				t, err := runtime.CoerceTensor(fmt.Sprintf("%s[%d]", step.Name, j), v)
				if err != nil {
					return nil, err
				}
				tensors[j] = t
			}
			args = append(args, runtime.TensorListVal(tensors))
			continue
		}

		v := s.PeekAt(step.Index, plan.StaticInputs)
		coerced, err := coercePositional(step, v)
		if err != nil {
			return nil, err
		}
		args = append(args, coerced)
	}
	return args, nil
}

func coercePositional(step ArgStep, v runtime.Value) (runtime.Value, error) {
	switch step.Type {
	case schema.TypeTensor:
		t, err := runtime.CoerceTensor(step.Name, v)
		if err != nil {
			return runtime.NilVal(), err
		}
		return runtime.TensorVal(t), nil

	case schema.TypeInt:
		n, err := runtime.CoerceInt(step.Name, v)
		if err != nil {
			return runtime.NilVal(), err
		}
		return runtime.IntVal(n), nil

	case schema.TypeDouble:
		f, err := runtime.CoerceDouble(step.Name, v)
		if err != nil {
			return runtime.NilVal(), err
		}
		return runtime.DoubleVal(f), nil

	case schema.TypeBool:
		b, err := runtime.CoerceBool(step.Name, v)
		if err != nil {
			return runtime.NilVal(), err
		}
		return runtime.BoolVal(b), nil

	case schema.TypeScalar:
		sc, err := runtime.CoerceScalar(step.Name, v)
		if err != nil {
			return runtime.NilVal(), err
		}
		return runtime.ScalarVal(sc), nil

	case schema.TypeIntList:
		vs, err := runtime.CoerceIntList(step.Name, v)
		if err != nil {
			return runtime.NilVal(), err
		}
		return runtime.IntListVal(vs), nil

	case schema.TypeBoolArray2, schema.TypeBoolArray3, schema.TypeBoolArray4:
		n, _ := step.Type.BoolArraySize()
		arr, err := runtime.CoerceBoolArray(step.Name, v, n)
		if err != nil {
			return runtime.NilVal(), err
		}
		return runtime.BoolArrayVal(arr), nil
	}

	return runtime.NilVal(), &runtime.CoercionError{Arg: step.Name, Want: step.Type.String(), Got: v.Kind.String()}
}
