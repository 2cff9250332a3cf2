// internal/app/system/authz/roles.go
package authz

import "strings"

// Kind is the privilege part of a role string.
type Kind string

const (
	KindAdmin   Kind = "admin"
	KindManager Kind = "manager"
	KindEditor  Kind = "editor"
)

// Role is a parsed role string. Admin has no scope; manager and editor are
// scoped to an operation (location) id. Location ids may themselves contain
// colons ("hrinfo:90"), so only the first colon separates kind from scope.
type Role struct {
	Kind  Kind
	Scope string
}

// Admin is the unscoped administrator role.
var Admin = Role{Kind: KindAdmin}

// Manager returns the manager role for loc.
func Manager(loc string) Role { return Role{Kind: KindManager, Scope: loc} }

// Editor returns the editor role for loc.
func Editor(loc string) Role { return Role{Kind: KindEditor, Scope: loc} }

func (r Role) String() string {
	if r.Kind == KindAdmin {
		return string(KindAdmin)
	}
	return string(r.Kind) + ":" + r.Scope
}

// Scoped reports whether r is a manager or editor role.
func (r Role) Scoped() bool {
	return r.Kind == KindManager || r.Kind == KindEditor
}

// ParseRole parses "admin", "manager:<loc>" or "editor:<loc>".
// Anything else returns ok=false and must be treated as absent.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	kind, scope, hasScope := strings.Cut(s, ":")
	kind = strings.ToLower(kind)
	scope = strings.TrimSpace(scope)

	switch Kind(kind) {
	case KindAdmin:
		if hasScope {
			return Role{}, false
		}
		return Admin, true
	case KindManager, KindEditor:
		if scope == "" {
			return Role{}, false
		}
		return Role{Kind: Kind(kind), Scope: scope}, true
	}
	return Role{}, false
}

// ParseRoles parses every well-formed role in roles, in order, skipping
// duplicates and malformed entries.
func ParseRoles(roles []string) []Role {
	out := make([]Role, 0, len(roles))
	seen := make(map[Role]struct{}, len(roles))
	for _, s := range roles {
		r, ok := ParseRole(s)
		if !ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// HasRole reports whether p holds a role matching pattern. pattern is a
// kind ("admin", "manager", "editor") or a full role string. When a scope is
// given only roles scoped to that location match, so HasRole(p, "admin", loc)
// is always false.
func HasRole(p *ActorProfile, pattern string, scope ...string) bool {
	if p == nil {
		return false
	}
	loc := ""
	if len(scope) > 0 {
		loc = strings.TrimSpace(scope[0])
	}

	var want Role
	full := strings.Contains(pattern, ":")
	if full {
		r, ok := ParseRole(pattern)
		if !ok {
			return false
		}
		want = r
	} else {
		k := Kind(strings.ToLower(strings.TrimSpace(pattern)))
		if k != KindAdmin && k != KindManager && k != KindEditor {
			return false
		}
		want.Kind = k
	}

	for _, s := range p.Roles {
		r, ok := ParseRole(s)
		if !ok || r.Kind != want.Kind {
			continue
		}
		if full && r != want {
			continue
		}
		if loc != "" && (!r.Scoped() || r.Scope != loc) {
			continue
		}
		return true
	}
	return false
}

// IsAdmin reports whether p holds the admin role.
func IsAdmin(p *ActorProfile) bool {
	return HasRole(p, string(KindAdmin))
}

// IsManagerAt reports whether p is a manager of loc.
func IsManagerAt(p *ActorProfile, loc string) bool {
	return loc != "" && HasRole(p, string(KindManager), loc)
}

// IsEditorAt reports whether p is an editor of loc.
func IsEditorAt(p *ActorProfile, loc string) bool {
	return loc != "" && HasRole(p, string(KindEditor), loc)
}

// IsOrgEditorAt reports whether p holds an org-editor grant for org in loc.
func IsOrgEditorAt(p *ActorProfile, org, loc string) bool {
	if p == nil || org == "" || loc == "" {
		return false
	}
	for _, g := range p.OrgEditorGrants {
		if g.OrganizationID == org && g.LocationID == loc {
			return true
		}
	}
	return false
}

// LocationNamer resolves an operation id to its display name.
type LocationNamer interface {
	LocationName(id string) (string, bool)
}

// RoleLabel renders a role for people: "Administrator", "Manager (Haiti)".
// Unknown locations fall back to the raw id; malformed roles are returned as-is.
func RoleLabel(role string, names LocationNamer) string {
	r, ok := ParseRole(role)
	if !ok {
		return role
	}
	if r.Kind == KindAdmin {
		return "Administrator"
	}
	loc := r.Scope
	if names != nil {
		if n, found := names.LocationName(r.Scope); found && n != "" {
			loc = n
		}
	}
	label := "Editor"
	if r.Kind == KindManager {
		label = "Manager"
	}
	return label + " (" + loc + ")"
}
