package runtime

// Kernel is an embedder-supplied operator implementation. It receives
// every argument in declared order (for method-shaped operators the
// receiver comes first) and returns the results to push, in order.
type Kernel func(args []Value) ([]Value, error)

// KernelSet maps operator names to kernels, separately for the two
// invocation shapes. A name may carry both: the namespace form and the
// receiver-method form of the same operator are distinct entries.
type KernelSet struct {
	namespace map[string]Kernel
	method    map[string]Kernel
}

func NewKernelSet() *KernelSet {
	return &KernelSet{
		namespace: make(map[string]Kernel),
		method:    make(map[string]Kernel),
	}
}

// RegisterNamespace installs the free-function form of an operator.
func (ks *KernelSet) RegisterNamespace(name string, k Kernel) {
	ks.namespace[name] = k
}

// RegisterMethod installs the receiver-method form of an operator.
func (ks *KernelSet) RegisterMethod(name string, k Kernel) {
	ks.method[name] = k
}

// Namespace looks up the free-function form.
func (ks *KernelSet) Namespace(name string) (Kernel, bool) {
	k, ok := ks.namespace[name]
	return k, ok
}

// Method looks up the receiver-method form.
func (ks *KernelSet) Method(name string) (Kernel, bool) {
	k, ok := ks.method[name]
	return k, ok
}
