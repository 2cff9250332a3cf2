// internal/app/policy/decision/roles.go
package decision

import (
	"strings"

	"github.com/dalemusser/hidapi/internal/app/policy/fieldpolicy"
	"github.com/dalemusser/hidapi/internal/app/system/authz"
)

type roleOutcome struct {
	roles   []string
	dropped []string
	granted bool // at least one new role was admitted
}

// canGrant is the single predicate for both adding and removing a role:
// an actor may only touch scopes it could grant itself.
func canGrant(a authz.Actor, caps fieldpolicy.Capabilities, r authz.Role) bool {
	if caps.API || caps.Admin {
		return true
	}
	if !r.Scoped() {
		return false
	}
	return authz.HasRole(a.Profile, authz.Manager(r.Scope).String())
}

// evaluateRoles computes current ∪ admittedAdds − admittedRemoves.
//
// Current roles that do not parse are carried through untouched; requested
// roles that do not parse are ignored. Order is preserved: surviving current
// roles first, then admitted additions in request order.
func evaluateRoles(a authz.Actor, caps fieldpolicy.Capabilities, current, requested []string) roleOutcome {
	want := make(map[authz.Role]struct{}, len(requested))
	for _, r := range authz.ParseRoles(requested) {
		want[r] = struct{}{}
	}
	have := make(map[authz.Role]struct{}, len(current))

	var out roleOutcome
	for _, s := range current {
		r, ok := authz.ParseRole(s)
		if !ok {
			out.roles = appendUnique(out.roles, s)
			continue
		}
		have[r] = struct{}{}
		if _, keep := want[r]; keep {
			out.roles = appendUnique(out.roles, r.String())
			continue
		}
		if canGrant(a, caps, r) {
			continue // removal admitted
		}
		out.roles = appendUnique(out.roles, r.String())
		out.dropped = append(out.dropped, "roles:-"+r.String())
	}

	for _, r := range authz.ParseRoles(requested) {
		if _, already := have[r]; already {
			continue
		}
		if !canGrant(a, caps, r) {
			out.dropped = append(out.dropped, "roles:+"+r.String())
			continue
		}
		out.roles = appendUnique(out.roles, r.String())
		out.granted = true
	}

	for _, s := range requested {
		if _, ok := authz.ParseRole(s); !ok && strings.TrimSpace(s) != "" {
			out.dropped = append(out.dropped, "roles:?"+s)
		}
	}
	if out.roles == nil {
		out.roles = []string{}
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
