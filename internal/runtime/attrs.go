package runtime

// Attrs exposes the static metadata of an operator use site through
// type-specific accessors. Attribute-role arguments are bound from it
// once, at registration time.
//
// The accessor split mirrors how attributes are stored: integral
// payloads (I), integral lists (Is), floating payloads (F) and generic
// scalar boxes (T). Bools read through I, fixed-size bool arrays and
// int lists through Is.
type Attrs interface {
	I(name string) (int64, bool)
	Is(name string) ([]int64, bool)
	F(name string) (float64, bool)
	T(name string) (Scalar, bool)
}

// AttrMap is a literal Attrs implementation for embedders and tests.
type AttrMap map[string]interface{}

func (m AttrMap) I(name string) (int64, bool) {
	switch v := m[name].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (m AttrMap) Is(name string) ([]int64, bool) {
	switch v := m[name].(type) {
	case []int64:
		return v, true
	case []int:
		out := make([]int64, len(v))
		for i, x := range v {
			out[i] = int64(x)
		}
		return out, true
	case []bool:
		out := make([]int64, len(v))
		for i, x := range v {
			if x {
				out[i] = 1
			}
		}
		return out, true
	}
	return nil, false
}

func (m AttrMap) F(name string) (float64, bool) {
	switch v := m[name].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (m AttrMap) T(name string) (Scalar, bool) {
	switch v := m[name].(type) {
	case Scalar:
		return v, true
	case int64:
		return IntScalar(v), true
	case int:
		return IntScalar(int64(v)), true
	case float64:
		return DoubleScalar(v), true
	}
	return Scalar{}, false
}
