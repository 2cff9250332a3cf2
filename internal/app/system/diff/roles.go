// internal/app/system/diff/roles.go
package diff

import "github.com/dalemusser/hidapi/internal/app/system/authz"

// Roles reports each role granted or revoked between two role sets, labeled
// with operation names from names. Malformed roles are ignored.
func Roles(before, after []string, names authz.LocationNamer) []Event {
	b := roleSet(before)
	a := roleSet(after)

	var out []Event
	for _, r := range authz.ParseRoles(after) {
		if _, had := b[r]; !had {
			out = append(out, roleEvent(KindRoleGranted, "role_granted", r, names))
		}
	}
	for _, r := range authz.ParseRoles(before) {
		if _, kept := a[r]; !kept {
			out = append(out, roleEvent(KindRoleRevoked, "role_revoked", r, names))
		}
	}
	return out
}

func roleSet(roles []string) map[authz.Role]struct{} {
	m := make(map[authz.Role]struct{}, len(roles))
	for _, r := range authz.ParseRoles(roles) {
		m[r] = struct{}{}
	}
	return m
}

func roleEvent(kind Kind, key string, r authz.Role, names authz.LocationNamer) Event {
	en, fr := render(key, authz.RoleLabel(r.String(), names))
	return Event{Kind: kind, Description: describe(key, r.String()), EN: en, FR: fr}
}
