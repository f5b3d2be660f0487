package dispatch

import "fmt"

// SchemaError reports a malformed or unsupported declaration shape.
// Build-time fatal: construction aborts and nothing is published.
type SchemaError struct {
	Decl   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %q: %s", e.Decl, e.Reason)
}

// ConflictError reports two distinct declarations canonicalizing to the
// same overload key. Build-time fatal.
type ConflictError struct {
	Key    string
	First  string
	Second string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate descriptor %q: declared by %q and %q", e.Key, e.First, e.Second)
}
