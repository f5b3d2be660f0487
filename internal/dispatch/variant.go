package dispatch

import "github.com/funvibe/opforge/internal/schema"

// ArgRole says where an argument's value comes from: the operand stack
// per invocation, or the use site's static metadata at registration.
type ArgRole uint8

const (
	RolePositional ArgRole = iota
	RoleAttribute
)

func (r ArgRole) String() string {
	if r == RoleAttribute {
		return "attribute"
	}
	return "positional"
}

// variant is one candidate (declaration, role vector) pairing proposed
// for descriptor building.
type variant struct {
	decl          *schema.Declaration
	roles         []ArgRole
	hasTensorList bool
}

// rolePolicy computes a role vector from a declaration. Policies are
// data so intermediate assignments can be added without special cases.
type rolePolicy func(d *schema.Declaration) []ArgRole

// allPositional sources every argument from the stack.
func allPositional(d *schema.Declaration) []ArgRole {
	return make([]ArgRole, len(d.Args))
}

// tensorsOnly keeps tensor-kind arguments on the stack and binds
// everything else as a registration-time attribute.
func tensorsOnly(d *schema.Declaration) []ArgRole {
	roles := make([]ArgRole, len(d.Args))
	for i, arg := range d.Args {
		if !arg.Type.IsTensorKind() {
			roles[i] = RoleAttribute
		}
	}
	return roles
}

var rolePolicies = []rolePolicy{allPositional, tensorsOnly}

func rolesEqual(a, b []ArgRole) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// expandVariants proposes the candidate role assignments for an
// eligible declaration, deduplicating policies that coincide (a
// declaration with no non-tensor arguments yields one variant).
func expandVariants(d *schema.Declaration) []variant {
	hasTensorList := false
	for _, arg := range d.Args {
		if arg.Type == schema.TypeTensorList {
			hasTensorList = true
			break
		}
	}

	var out []variant
	for _, policy := range rolePolicies {
		roles := policy(d)
		dup := false
		for _, v := range out {
			if rolesEqual(v.roles, roles) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		out = append(out, variant{decl: d, roles: roles, hasTensorList: hasTensorList})
	}
	return out
}
