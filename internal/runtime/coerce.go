package runtime

import "fmt"

// Coercions read a typed value out of a stack slot. They never mutate
// the stack, so a failed coercion leaves the caller's operands intact.

// CoerceTensor requires an actual tensor; nothing else broadcasts into
// one at this layer.
func CoerceTensor(arg string, v Value) (*Tensor, error) {
	if v.Kind == KindTensor {
		if t := v.AsTensor(); t != nil {
			return t, nil
		}
	}
	return nil, &CoercionError{Arg: arg, Want: "Tensor", Got: v.Kind.String()}
}

// CoerceInt accepts an Int or an integral Scalar box.
func CoerceInt(arg string, v Value) (int64, error) {
	switch v.Kind {
	case KindInt:
		return v.AsInt(), nil
	case KindScalar:
		s := v.AsScalar()
		if !s.IsFloating() {
			return s.Int(), nil
		}
	}
	return 0, &CoercionError{Arg: arg, Want: "Int", Got: v.Kind.String()}
}

// CoerceDouble accepts Double, Int, or any Scalar box.
func CoerceDouble(arg string, v Value) (float64, error) {
	switch v.Kind {
	case KindDouble:
		return v.AsDouble(), nil
	case KindInt:
		return float64(v.AsInt()), nil
	case KindScalar:
		return v.AsScalar().Double(), nil
	}
	return 0, &CoercionError{Arg: arg, Want: "Double", Got: v.Kind.String()}
}

// CoerceBool accepts Bool or an integral 0/1.
func CoerceBool(arg string, v Value) (bool, error) {
	switch v.Kind {
	case KindBool:
		return v.AsBool(), nil
	case KindInt:
		switch v.AsInt() {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	}
	return false, &CoercionError{Arg: arg, Want: "Bool", Got: v.Kind.String()}
}

// CoerceScalar boxes Int and Double values; an existing box passes
// through.
func CoerceScalar(arg string, v Value) (Scalar, error) {
	switch v.Kind {
	case KindScalar:
		return v.AsScalar(), nil
	case KindInt:
		return IntScalar(v.AsInt()), nil
	case KindDouble:
		return DoubleScalar(v.AsDouble()), nil
	}
	return Scalar{}, &CoercionError{Arg: arg, Want: "Scalar", Got: v.Kind.String()}
}

// CoerceIntList accepts an IntList, or a single Int promoted to a
// one-element list.
func CoerceIntList(arg string, v Value) ([]int64, error) {
	switch v.Kind {
	case KindIntList:
		return v.AsIntList(), nil
	case KindInt:
		return []int64{v.AsInt()}, nil
	}
	return nil, &CoercionError{Arg: arg, Want: "IntList", Got: v.Kind.String()}
}

// CoerceBoolArray converts an integer list of exactly size n, or an
// existing bool array of that size.
func CoerceBoolArray(arg string, v Value, n int) ([]bool, error) {
	want := fmt.Sprintf("BoolArray%d", n)
	switch v.Kind {
	case KindBoolArray:
		vs := v.AsBoolArray()
		if len(vs) == n {
			return vs, nil
		}
	case KindIntList:
		vs := v.AsIntList()
		if len(vs) == n {
			out := make([]bool, n)
			for i, x := range vs {
				out[i] = x != 0
			}
			return out, nil
		}
	}
	return nil, &CoercionError{Arg: arg, Want: want, Got: v.Kind.String()}
}

// BoolArrayFromInts is the registration-time composite coercion for
// fixed-size boolean array attributes.
func BoolArrayFromInts(arg string, vs []int64, n int) ([]bool, error) {
	if len(vs) != n {
		return nil, &CoercionError{
			Arg:  arg,
			Want: fmt.Sprintf("BoolArray%d", n),
			Got:  fmt.Sprintf("IntList(%d)", len(vs)),
		}
	}
	out := make([]bool, n)
	for i, x := range vs {
		out[i] = x != 0
	}
	return out, nil
}
