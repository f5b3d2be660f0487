package dispatch

import (
	"errors"
	"testing"

	"github.com/funvibe/opforge/internal/runtime"
	"github.com/funvibe/opforge/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindOp(t *testing.T, table *Table, key string, attrs runtime.Attrs, kernels *runtime.KernelSet) *BoundOp {
	t.Helper()
	plan, ok := table.Lookup(key)
	require.True(t, ok, key)
	op, err := plan.Bind(attrs, kernels)
	require.NoError(t, err)
	return op
}

func TestVariadicSliceCorrectness(t *testing.T) {
	cat := nsDecl("cat", arg("tensors", schema.TypeTensorList), arg("dim", schema.TypeInt))
	table, _ := build(t, nil, cat)

	var gotTensors int
	var gotDim int64
	kernels := runtime.NewKernelSet()
	kernels.RegisterNamespace("cat", func(args []runtime.Value) ([]runtime.Value, error) {
		require.Len(t, args, 2)
		gotTensors = len(args[0].AsTensorList())
		gotDim = args[1].AsInt()
		return []runtime.Value{runtime.TensorVal(&runtime.Tensor{})}, nil
	})

	op := bindOp(t, table, "cat-*", runtime.AttrMap{}, kernels)

	s := runtime.NewStack()
	s.Push(runtime.TensorVal(&runtime.Tensor{}))
	s.Push(runtime.TensorVal(&runtime.Tensor{}))
	s.Push(runtime.TensorVal(&runtime.Tensor{}))
	s.Push(runtime.IntVal(2))

	reg := runtime.NewDeviceRegister()
	require.NoError(t, op.Run(s, reg, runtime.NopProfiler()))

	assert.Equal(t, 3, gotTensors, "TensorList must span stack[0:3]")
	assert.Equal(t, int64(2), gotDim, "dim must come from stack[3]")
	assert.Equal(t, 1, s.Len(), "consumed inputs replaced by the result")
}

func TestAttributeBinding(t *testing.T) {
	add := nsDecl("add",
		arg("self", schema.TypeTensor),
		arg("other", schema.TypeTensor),
		arg("alpha", schema.TypeScalar),
	)
	table, _ := build(t, nil, add)

	var gotAlpha runtime.Scalar
	kernels := runtime.NewKernelSet()
	kernels.RegisterNamespace("add", func(args []runtime.Value) ([]runtime.Value, error) {
		require.Len(t, args, 3)
		gotAlpha = args[2].AsScalar()
		return []runtime.Value{runtime.TensorVal(&runtime.Tensor{})}, nil
	})

	op := bindOp(t, table, "add-2-alpha", runtime.AttrMap{"alpha": 2}, kernels)

	s := runtime.NewStack()
	s.Push(runtime.TensorVal(&runtime.Tensor{}))
	s.Push(runtime.TensorVal(&runtime.Tensor{}))
	require.NoError(t, op.Run(s, runtime.NewDeviceRegister(), runtime.NopProfiler()))

	assert.Equal(t, int64(2), gotAlpha.Int())
	assert.Equal(t, 1, s.Len())
}

func TestBindMissingAttribute(t *testing.T) {
	add := nsDecl("add",
		arg("self", schema.TypeTensor),
		arg("other", schema.TypeTensor),
		arg("alpha", schema.TypeScalar),
	)
	table, _ := build(t, nil, add)
	plan, _ := table.Lookup("add-2-alpha")

	kernels := runtime.NewKernelSet()
	kernels.RegisterNamespace("add", func(args []runtime.Value) ([]runtime.Value, error) {
		return nil, nil
	})

	_, err := plan.Bind(runtime.AttrMap{}, kernels)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha")
}

func TestArityErrorLeavesStackUnmodified(t *testing.T) {
	add := nsDecl("add",
		arg("self", schema.TypeTensor),
		arg("other", schema.TypeTensor),
		arg("alpha", schema.TypeScalar),
	)
	table, _ := build(t, nil, add)

	kernels := runtime.NewKernelSet()
	kernels.RegisterNamespace("add", func(args []runtime.Value) ([]runtime.Value, error) {
		t.Fatal("kernel must not run on arity failure")
		return nil, nil
	})
	op := bindOp(t, table, "add-3", runtime.AttrMap{}, kernels)

	s := runtime.NewStack()
	s.Push(runtime.TensorVal(&runtime.Tensor{}))
	s.Push(runtime.TensorVal(&runtime.Tensor{}))

	err := op.Run(s, runtime.NewDeviceRegister(), runtime.NopProfiler())
	var arity *runtime.ArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 3, arity.Need)
	assert.Equal(t, 2, arity.Have)
	assert.Equal(t, 2, s.Len(), "failed dispatch must not touch the stack")
}

func TestCoercionErrorLeavesStackUnmodified(t *testing.T) {
	add := nsDecl("add",
		arg("self", schema.TypeTensor),
		arg("other", schema.TypeTensor),
		arg("alpha", schema.TypeScalar),
	)
	table, _ := build(t, nil, add)

	kernels := runtime.NewKernelSet()
	kernels.RegisterNamespace("add", func(args []runtime.Value) ([]runtime.Value, error) {
		t.Fatal("kernel must not run on coercion failure")
		return nil, nil
	})
	op := bindOp(t, table, "add-3", runtime.AttrMap{}, kernels)

	s := runtime.NewStack()
	s.Push(runtime.TensorVal(&runtime.Tensor{}))
	s.Push(runtime.TensorVal(&runtime.Tensor{}))
	s.Push(runtime.TensorVal(&runtime.Tensor{})) // alpha slot: not coercible to Scalar

	err := op.Run(s, runtime.NewDeviceRegister(), runtime.NopProfiler())
	var coercion *runtime.CoercionError
	require.ErrorAs(t, err, &coercion)
	assert.Equal(t, "alpha", coercion.Arg)
	assert.Equal(t, 3, s.Len())
}

func TestMethodShapeInvocation(t *testing.T) {
	table, _ := build(t, nil, schema.ReceiverBuiltins()...)

	kernels := runtime.NewKernelSet()
	called := false
	kernels.RegisterMethod("dim", func(args []runtime.Value) ([]runtime.Value, error) {
		called = true
		require.Len(t, args, 1)
		return []runtime.Value{runtime.IntVal(int64(len(args[0].AsTensor().Dims)))}, nil
	})

	plan, ok := table.Lookup("dim-1")
	require.True(t, ok)
	assert.Equal(t, ShapeMethod, plan.Shape)

	op, err := plan.Bind(runtime.AttrMap{}, kernels)
	require.NoError(t, err)

	s := runtime.NewStack()
	s.Push(runtime.TensorVal(&runtime.Tensor{Dims: []int64{4, 4}}))
	require.NoError(t, op.Run(s, runtime.NewDeviceRegister(), runtime.NopProfiler()))

	assert.True(t, called)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, int64(2), s.Pop().AsInt())
}

func TestBindUnknownKernel(t *testing.T) {
	table, _ := build(t, nil, nsDecl("relu", arg("self", schema.TypeTensor)))
	plan, _ := table.Lookup("relu-1")
	_, err := plan.Bind(runtime.AttrMap{}, runtime.NewKernelSet())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relu")
}

func TestDeviceGuardAroundKernel(t *testing.T) {
	table, _ := build(t, nil, nsDecl("relu", arg("self", schema.TypeTensor)))

	reg := runtime.NewDeviceRegister()
	kernels := runtime.NewKernelSet()
	kernels.RegisterNamespace("relu", func(args []runtime.Value) ([]runtime.Value, error) {
		assert.Equal(t, runtime.Device(3), reg.Current(), "kernel must run under the input device")
		return []runtime.Value{args[0]}, nil
	})
	op := bindOp(t, table, "relu-1", runtime.AttrMap{}, kernels)

	s := runtime.NewStack()
	s.Push(runtime.TensorVal(&runtime.Tensor{Device: runtime.Device(3)}))
	require.NoError(t, op.Run(s, reg, runtime.NopProfiler()))
	assert.Equal(t, runtime.DeviceCPU, reg.Current(), "device restored after dispatch")
}

func TestDeviceGuardReleasedOnKernelError(t *testing.T) {
	table, _ := build(t, nil, nsDecl("relu", arg("self", schema.TypeTensor)))

	reg := runtime.NewDeviceRegister()
	kernels := runtime.NewKernelSet()
	kernels.RegisterNamespace("relu", func(args []runtime.Value) ([]runtime.Value, error) {
		return nil, errors.New("kernel exploded")
	})
	op := bindOp(t, table, "relu-1", runtime.AttrMap{}, kernels)

	s := runtime.NewStack()
	s.Push(runtime.TensorVal(&runtime.Tensor{Device: runtime.Device(1)}))

	err := op.Run(s, reg, runtime.NopProfiler())
	require.Error(t, err)
	assert.Equal(t, runtime.DeviceCPU, reg.Current(), "device restored on the error path")
	assert.Equal(t, 1, s.Len())
}
