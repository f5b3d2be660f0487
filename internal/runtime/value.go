// Package runtime provides the dispatch-time half of the system: the
// operand stack and its tagged-union values, argument coercions, the
// ambient device register with scoped guards, profiling spans and the
// kernel registry that compiled call plans invoke.
package runtime

import (
	"fmt"
	"math"
)

// ValueKind identifies the type of value stored in the Value struct
type ValueKind uint8

const (
	KindNil ValueKind = iota
	KindInt
	KindDouble
	KindBool
	KindTensor
	KindTensorList
	KindScalar
	KindIntList
	KindBoolArray
)

// Value is a stack-allocated tagged union.
// Small primitives (Int, Double, Bool) live in the Data word and avoid
// heap allocation; tensors, lists and scalar boxes ride in Obj.
type Value struct {
	Kind ValueKind
	Data uint64      // int64 bits, float64 bits, or bool (0/1)
	Obj  interface{} // *Tensor, []*Tensor, Scalar, []int64, []bool
}

// Tensor is the runtime tensor handle. The numeric payload is opaque to
// this layer; kernels interpret it. Device placement is what dispatch
// itself cares about.
type Tensor struct {
	Device  Device
	Dims    []int64
	Payload interface{}
}

// Scalar is a generic numeric box: either an integral or a floating
// value, preserving which one was supplied.
type Scalar struct {
	floating bool
	i        int64
	f        float64
}

func IntScalar(v int64) Scalar { return Scalar{i: v} }

func DoubleScalar(v float64) Scalar { return Scalar{floating: true, f: v} }

func (s Scalar) IsFloating() bool { return s.floating }

func (s Scalar) Int() int64 {
	if s.floating {
		return int64(s.f)
	}
	return s.i
}

func (s Scalar) Double() float64 {
	if s.floating {
		return s.f
	}
	return float64(s.i)
}

func (s Scalar) String() string {
	if s.floating {
		return fmt.Sprintf("%g", s.f)
	}
	return fmt.Sprintf("%d", s.i)
}

// Constructors

func NilVal() Value { return Value{Kind: KindNil} }

func IntVal(v int64) Value {
	return Value{Kind: KindInt, Data: uint64(v)}
}

func DoubleVal(v float64) Value {
	return Value{Kind: KindDouble, Data: math.Float64bits(v)}
}

func BoolVal(v bool) Value {
	var data uint64
	if v {
		data = 1
	}
	return Value{Kind: KindBool, Data: data}
}

func TensorVal(t *Tensor) Value {
	return Value{Kind: KindTensor, Obj: t}
}

func TensorListVal(ts []*Tensor) Value {
	return Value{Kind: KindTensorList, Obj: ts}
}

func ScalarVal(s Scalar) Value {
	return Value{Kind: KindScalar, Obj: s}
}

func IntListVal(vs []int64) Value {
	return Value{Kind: KindIntList, Obj: vs}
}

func BoolArrayVal(vs []bool) Value {
	return Value{Kind: KindBoolArray, Obj: vs}
}

// Accessors. These assume the kind has been checked; coercions with
// error reporting live in coerce.go.

func (v Value) AsInt() int64      { return int64(v.Data) }
func (v Value) AsDouble() float64 { return math.Float64frombits(v.Data) }
func (v Value) AsBool() bool      { return v.Data == 1 }

func (v Value) AsTensor() *Tensor {
	t, _ := v.Obj.(*Tensor)
	return t
}

func (v Value) AsTensorList() []*Tensor {
	ts, _ := v.Obj.([]*Tensor)
	return ts
}

func (v Value) AsScalar() Scalar {
	s, _ := v.Obj.(Scalar)
	return s
}

func (v Value) AsIntList() []int64 {
	vs, _ := v.Obj.([]int64)
	return vs
}

func (v Value) AsBoolArray() []bool {
	vs, _ := v.Obj.([]bool)
	return vs
}

// Kind checks

func (v Value) IsNil() bool    { return v.Kind == KindNil }
func (v Value) IsTensor() bool { return v.Kind == KindTensor }

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindInt:
		return "Int"
	case KindDouble:
		return "Double"
	case KindBool:
		return "Bool"
	case KindTensor:
		return "Tensor"
	case KindTensorList:
		return "TensorList"
	case KindScalar:
		return "Scalar"
	case KindIntList:
		return "IntList"
	case KindBoolArray:
		return "BoolArray"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}
