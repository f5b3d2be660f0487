// Package dispatch builds the operator dispatch table: it filters
// schema declarations, expands argument-role variants, canonicalizes
// overload keys, compiles per-overload call plans and publishes the
// immutable lookup table the interpreter consults at run time.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/funvibe/opforge/internal/config"
	"github.com/funvibe/opforge/internal/schema"
)

// Rejection records a declaration the eligibility filter dropped, with
// the rule that dropped it. Surfaced by the diagnostic mode.
type Rejection struct {
	Decl   string
	Reason string
}

// isMagicName reports dunder-style names like "__and__", which keep the
// trailing underscore rule from firing on symmetric operator forms.
func isMagicName(apiName string) bool {
	return strings.HasPrefix(apiName, config.MagicAffix) &&
		strings.HasSuffix(apiName, config.MagicAffix)
}

// eligible applies the filter rules in order and returns the first
// failing rule as the rejection reason.
func eligible(d *schema.Declaration) (bool, string) {
	if strings.HasSuffix(d.APIName, config.MutatingSuffix) && !isMagicName(d.APIName) {
		return false, "mutating api name"
	}
	if strings.HasSuffix(d.Name, config.OutVariantSuffix) {
		return false, "out-parameter variant"
	}

	numTensorArgs := 0
	hasTensorList := false
	for _, arg := range d.Args {
		switch arg.Type {
		case schema.TypeGenerator, schema.TypeSparseTensor, schema.TypeStorage, schema.TypeTypeTag:
			return false, fmt.Sprintf("unsupported argument type %s (%s)", arg.Type, arg.Name)
		}
		if arg.Type.IsTensorKind() {
			numTensorArgs++
		}
		if arg.Type == schema.TypeTensorList {
			hasTensorList = true
		}
	}

	if numTensorArgs == 0 && !d.IsMethod() {
		return false, "no tensor arguments and not a receiver method"
	}

	// Variadic tensor lists are only supported as the sole tensor
	// argument, declared first. Violators are dropped entirely rather
	// than losing just the variadic path.
	if hasTensorList && (numTensorArgs != 1 || d.Args[0].Type != schema.TypeTensorList) {
		return false, "TensorList must be the first and only tensor argument"
	}

	return true, ""
}
