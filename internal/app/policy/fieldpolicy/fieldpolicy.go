// Package fieldpolicy declares which resource fields are protected and what
// an actor must be able to do to write them.
//
// The table is pure data. Any field not listed for a kind is open: whoever
// passes the base write gate may change it. System-managed fields are
// immutable and never accepted from a request.
package fieldpolicy

import "fmt"

// Kind names a resource type.
type Kind string

const (
	Contact Kind = "contact"
	Profile Kind = "profile"
	List    Kind = "list"
	Service Kind = "service"
)

// Capabilities are the actor's standing relative to one resource.
// "Here" means at one of the resource's locations.
type Capabilities struct {
	API             bool // trusted API client
	Admin           bool
	Own             bool // actor owns the resource
	Collaborator    bool // list editor or service owner
	ManagerHere     bool
	EditorHere      bool
	OrgEditorHere   bool
	ManagerAnywhere bool
	EditorAnywhere  bool
}

// HasStanding reports whether c passes the base write gate.
func (c Capabilities) HasStanding() bool {
	return c.API || c.Admin || c.Own || c.Collaborator ||
		c.ManagerHere || c.EditorHere || c.OrgEditorHere
}

// Predicate decides whether capabilities permit a write.
type Predicate func(Capabilities) bool

// Rule protects one field.
type Rule struct {
	Field    string
	Requires string // human description, used in logs
	Allow    Predicate
	// PerRole marks the roles field: Allow is only a coarse gate and each
	// added or removed role is evaluated on its own.
	PerRole bool
	// Signal marks a request-only key. It is authorized like a field but
	// never written to the record.
	Signal bool
}

var immutable = map[string]struct{}{
	"_id":       {},
	"_profile":  {},
	"userid":    {},
	"createdAt": {},
	"updatedAt": {},
}

// Immutable reports whether field is system-managed.
func Immutable(field string) bool {
	_, ok := immutable[field]
	return ok
}

func adminOrAPI(c Capabilities) bool { return c.API || c.Admin }

func managerHere(c Capabilities) bool { return adminOrAPI(c) || c.ManagerHere }

func staffHere(c Capabilities) bool { return adminOrAPI(c) || c.ManagerHere || c.EditorHere }

func staffAnywhere(c Capabilities) bool {
	return adminOrAPI(c) || c.ManagerAnywhere || c.EditorAnywhere
}

func canGrantRoles(c Capabilities) bool { return adminOrAPI(c) || c.ManagerAnywhere }

func ownerOnly(c Capabilities) bool { return adminOrAPI(c) || c.Own }

func serviceOwners(c Capabilities) bool {
	return adminOrAPI(c) || c.Own || c.Collaborator || c.ManagerHere
}

var table = map[Kind]map[string]Rule{
	Contact: rules(
		Rule{Field: "keyContact", Requires: "admin or manager here", Allow: managerHere},
		Rule{Field: "verified", Requires: "admin, manager or editor", Allow: staffAnywhere},
		Rule{Field: "protectedRoles", Requires: "admin, manager or editor here", Allow: staffHere},
		Rule{Field: "newProtectedRoles", Requires: "admin, manager or editor here", Allow: staffHere, Signal: true},
		Rule{Field: "protectedBundles", Requires: "admin, manager or editor here", Allow: staffHere},
	),
	Profile: rules(
		Rule{Field: "verified", Requires: "admin, manager or editor", Allow: staffAnywhere},
		Rule{Field: "roles", Requires: "per role: admin, or manager of the role's location", Allow: canGrantRoles, PerRole: true},
		Rule{Field: "orgEditorRoles", Requires: "admin or manager here", Allow: managerHere},
		Rule{Field: "status", Requires: "admin", Allow: adminOrAPI},
	),
	List: rules(
		Rule{Field: "name", Requires: "owner", Allow: ownerOnly},
		Rule{Field: "privacy", Requires: "owner", Allow: ownerOnly},
		Rule{Field: "readers", Requires: "owner", Allow: ownerOnly},
		Rule{Field: "editors", Requires: "owner", Allow: ownerOnly},
	),
	Service: rules(
		Rule{Field: "owners", Requires: "owner or manager here", Allow: serviceOwners},
		Rule{Field: "hidden", Requires: "admin", Allow: adminOrAPI},
	),
}

func rules(rs ...Rule) map[string]Rule {
	m := make(map[string]Rule, len(rs))
	for _, r := range rs {
		m[r.Field] = r
	}
	return m
}

// Lookup returns the rule protecting field on kind. ok=false means the
// field is open.
func Lookup(kind Kind, field string) (Rule, bool) {
	r, ok := table[kind][field]
	return r, ok
}

// Validate checks that every rule is keyed by its own field name and carries
// a predicate. It runs at startup.
func Validate() error {
	for kind, fields := range table {
		for name, r := range fields {
			if r.Field != name {
				return fmt.Errorf("fieldpolicy: %s.%s keyed under %q", kind, r.Field, name)
			}
			if r.Allow == nil {
				return fmt.Errorf("fieldpolicy: %s.%s has no predicate", kind, name)
			}
			if Immutable(name) {
				return fmt.Errorf("fieldpolicy: %s.%s is immutable and cannot be protected", kind, name)
			}
			if r.Signal && r.PerRole {
				return fmt.Errorf("fieldpolicy: %s.%s cannot be both a signal and per-role", kind, name)
			}
		}
	}
	return nil
}
