package dispatch

import (
	"sort"
	"strconv"
	"strings"

	"github.com/funvibe/opforge/internal/config"
)

// staticInputCount is the number of fixed positional stack slots: the
// positional argument count, minus one when a variadic tensor list is
// present (its length is unknown at build time).
func (v *variant) staticInputCount() int {
	n := 0
	for _, r := range v.roles {
		if r == RolePositional {
			n++
		}
	}
	if v.hasTensorList {
		n--
	}
	return n
}

// attributeNames returns the names of attribute-role arguments, sorted
// lexicographically for key stability.
func (v *variant) attributeNames() []string {
	var names []string
	for i, r := range v.roles {
		if r == RoleAttribute {
			names = append(names, v.decl.Args[i].Name)
		}
	}
	sort.Strings(names)
	return names
}

// descriptor computes the canonical overload key:
// name, arity marker (slot count or the variadic marker), then the
// sorted attribute names, all joined with the separator.
func (v *variant) descriptor() string {
	arity := config.VariadicMarker
	if !v.hasTensorList {
		arity = strconv.Itoa(v.staticInputCount())
	}
	parts := append([]string{v.decl.Name, arity}, v.attributeNames()...)
	return strings.Join(parts, config.DescriptorSep)
}
