package runtime

import "fmt"

// ArityError reports a stack-depth or variadic-length mismatch detected
// before any destructive stack operation.
type ArityError struct {
	Op   string
	Need int
	Have int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: operand stack has %d entries, need %d", e.Op, e.Have, e.Need)
}

// CoercionError reports a value that cannot be converted to its
// declared semantic type at dispatch time.
type CoercionError struct {
	Arg  string
	Want string
	Got  string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("argument %q: cannot coerce %s to %s", e.Arg, e.Got, e.Want)
}
