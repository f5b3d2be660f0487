package runtime

import "errors"

var errStackUnderflow = errors.New("operand stack underflow")

// Initial capacity for operand stacks
const initialStackSize = 64

// Stack is a per-invocation operand stack. One dispatch owns one stack;
// nothing here is safe for concurrent use, and nothing needs to be.
//
// Positional operator arguments are addressed through a trailing
// window: PeekAt(i, n) reads the i-th slot of the last n entries. A
// variadic tensor list occupies everything in the window before the
// fixed slots, via PeekSlice.
type Stack struct {
	vals []Value
}

// NewStack returns an empty operand stack.
func NewStack() *Stack {
	return &Stack{vals: make([]Value, 0, initialStackSize)}
}

// Len returns the number of live entries.
func (s *Stack) Len() int { return len(s.vals) }

// Push appends a value.
func (s *Stack) Push(v Value) {
	s.vals = append(s.vals, v)
}

// Pop removes and returns the top value.
func (s *Stack) Pop() Value {
	if len(s.vals) == 0 {
		panic(errStackUnderflow)
	}
	v := s.vals[len(s.vals)-1]
	s.vals = s.vals[:len(s.vals)-1]
	return v
}

// PeekAt reads the i-th slot of the trailing n-entry window without
// removing it. Callers must have verified depth >= n; an undersized
// stack here is an internal invariant violation.
func (s *Stack) PeekAt(i, n int) Value {
	idx := len(s.vals) - n + i
	if idx < 0 || idx >= len(s.vals) {
		panic(errStackUnderflow)
	}
	return s.vals[idx]
}

// PeekSlice reads slots [i, j) of the trailing n-entry window. The
// returned slice aliases the stack and is only valid until the next
// mutation.
func (s *Stack) PeekSlice(i, j, n int) []Value {
	lo := len(s.vals) - n + i
	hi := len(s.vals) - n + j
	if lo < 0 || hi > len(s.vals) || lo > hi {
		panic(errStackUnderflow)
	}
	return s.vals[lo:hi]
}

// Drop removes the top n entries.
func (s *Stack) Drop(n int) {
	if n > len(s.vals) {
		panic(errStackUnderflow)
	}
	s.vals = s.vals[:len(s.vals)-n]
}

// Snapshot copies the live entries, bottom first. Used by tests and
// diagnostics; dispatch itself never needs it.
func (s *Stack) Snapshot() []Value {
	out := make([]Value, len(s.vals))
	copy(out, s.vals)
	return out
}
