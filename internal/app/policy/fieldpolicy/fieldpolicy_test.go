package fieldpolicy_test

import (
	"testing"

	"github.com/dalemusser/hidapi/internal/app/policy/fieldpolicy"
)

func TestValidate(t *testing.T) {
	if err := fieldpolicy.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLookup_OpenFields(t *testing.T) {
	for _, f := range []string{"nameGiven", "email", "notes", "jobtitle"} {
		if _, ok := fieldpolicy.Lookup(fieldpolicy.Contact, f); ok {
			t.Errorf("contact.%s should be open", f)
		}
	}
}

func TestLookup_NewProtectedRolesIsSignal(t *testing.T) {
	r, ok := fieldpolicy.Lookup(fieldpolicy.Contact, "newProtectedRoles")
	if !ok {
		t.Fatal("newProtectedRoles should be protected")
	}
	if r.Field != "newProtectedRoles" || !r.Signal {
		t.Errorf("got %+v, want a signal rule of its own", r)
	}
	stored, ok := fieldpolicy.Lookup(fieldpolicy.Contact, "protectedRoles")
	if !ok || stored.Signal {
		t.Error("protectedRoles must be a stored field")
	}
}

func TestImmutable(t *testing.T) {
	for _, f := range []string{"_id", "_profile", "userid", "createdAt"} {
		if !fieldpolicy.Immutable(f) {
			t.Errorf("%s should be immutable", f)
		}
	}
	if fieldpolicy.Immutable("nameGiven") {
		t.Error("nameGiven should not be immutable")
	}
}

func TestHasStanding(t *testing.T) {
	if (fieldpolicy.Capabilities{}).HasStanding() {
		t.Error("zero capabilities must not have standing")
	}
	// Holding a role somewhere else is not standing on this resource.
	if (fieldpolicy.Capabilities{ManagerAnywhere: true, EditorAnywhere: true}).HasStanding() {
		t.Error("roles elsewhere must not grant standing")
	}
	for _, c := range []fieldpolicy.Capabilities{
		{API: true}, {Admin: true}, {Own: true}, {Collaborator: true},
		{ManagerHere: true}, {EditorHere: true}, {OrgEditorHere: true},
	} {
		if !c.HasStanding() {
			t.Errorf("%+v should have standing", c)
		}
	}
}

func TestRules(t *testing.T) {
	editorHere := fieldpolicy.Capabilities{EditorHere: true, EditorAnywhere: true}
	managerHere := fieldpolicy.Capabilities{ManagerHere: true, ManagerAnywhere: true}
	editorElsewhere := fieldpolicy.Capabilities{EditorAnywhere: true}
	own := fieldpolicy.Capabilities{Own: true}

	tests := []struct {
		kind  fieldpolicy.Kind
		field string
		caps  fieldpolicy.Capabilities
		want  bool
	}{
		{fieldpolicy.Contact, "keyContact", editorHere, false},
		{fieldpolicy.Contact, "keyContact", managerHere, true},
		{fieldpolicy.Contact, "keyContact", fieldpolicy.Capabilities{Admin: true}, true},
		{fieldpolicy.Contact, "verified", editorElsewhere, true},
		{fieldpolicy.Contact, "verified", own, false},
		{fieldpolicy.Contact, "protectedRoles", editorHere, true},
		{fieldpolicy.Contact, "protectedRoles", editorElsewhere, false},
		{fieldpolicy.Contact, "newProtectedRoles", editorHere, true},
		{fieldpolicy.Contact, "newProtectedRoles", own, false},
		{fieldpolicy.Contact, "protectedBundles", managerHere, true},
		{fieldpolicy.Profile, "orgEditorRoles", editorHere, false},
		{fieldpolicy.Profile, "status", managerHere, false},
		{fieldpolicy.Profile, "status", fieldpolicy.Capabilities{API: true}, true},
		{fieldpolicy.List, "privacy", own, true},
		{fieldpolicy.List, "privacy", fieldpolicy.Capabilities{Collaborator: true}, false},
		{fieldpolicy.Service, "owners", fieldpolicy.Capabilities{Collaborator: true}, true},
		{fieldpolicy.Service, "hidden", own, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"."+tt.field, func(t *testing.T) {
			r, ok := fieldpolicy.Lookup(tt.kind, tt.field)
			if !ok {
				t.Fatalf("%s.%s not protected", tt.kind, tt.field)
			}
			if got := r.Allow(tt.caps); got != tt.want {
				t.Errorf("Allow(%+v) = %v, want %v", tt.caps, got, tt.want)
			}
		})
	}
}

func TestLookup_RolesIsPerRole(t *testing.T) {
	r, ok := fieldpolicy.Lookup(fieldpolicy.Profile, "roles")
	if !ok || !r.PerRole {
		t.Fatal("profile.roles must be a per-role rule")
	}
	for _, f := range []string{"orgEditorRoles", "status", "verified"} {
		if r, ok := fieldpolicy.Lookup(fieldpolicy.Profile, f); !ok || r.PerRole {
			t.Errorf("profile.%s should be a plain protected field", f)
		}
	}
}
