package dispatch

import "sort"

// Table is the published dispatch table: overload key to compiled call
// plan. Immutable once built, safe for lookup from any number of
// concurrently executing interpreter stacks without locking.
type Table struct {
	ops   map[string]*CallPlan
	names []string
}

// Lookup resolves an overload key.
func (t *Table) Lookup(descriptor string) (*CallPlan, bool) {
	p, ok := t.ops[descriptor]
	return p, ok
}

// Len returns the number of registered overloads.
func (t *Table) Len() int { return len(t.ops) }

// Descriptors returns every overload key, sorted.
func (t *Table) Descriptors() []string {
	out := make([]string, 0, len(t.ops))
	for k := range t.ops {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// InternedNames returns the sorted distinct names of every eligible
// declaration, for the interpreter's symbol interning subsystem.
func (t *Table) InternedNames() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}
