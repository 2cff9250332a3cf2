// Package decision is the single gate between a requested change-set and
// storage. Authorize narrows a request to what the actor may write and
// reports the privileged side effects that must accompany it.
//
// Decisions are pure functions of their inputs: no I/O, no shared state.
// Unauthorized fields are dropped silently; only an actor with no standing
// on the resource at all is rejected.
package decision

import (
	"github.com/dalemusser/hidapi/internal/app/policy/fieldpolicy"
	"github.com/dalemusser/hidapi/internal/app/system/authz"
)

// Effect is a privileged side effect produced by a decision.
type Effect string

// EffectVerify marks the owning profile verified in the same write.
const EffectVerify Effect = "verify"

// ReasonNoStanding is the rejection reason for the base write gate.
const ReasonNoStanding = "actor has no standing on this resource"

// Resource is the policy-relevant snapshot of the record being written.
type Resource struct {
	Kind           fieldpolicy.Kind
	OwnerID        string   // user id of the owner
	Locations      []string // operation ids the resource belongs to
	Organizations  []string // organization remote ids (contacts)
	Collaborators  []string // list editors, service owners
	Roles          []string // current role set (profiles)
	ProtectedRoles []string // stored protected roles (contacts)
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed  Changes
	Effects  []Effect
	Dropped  []string
	Rejected bool
	Reason   string
	Caps     fieldpolicy.Capabilities
}

// HasEffect reports whether e is among the decision's effects.
func (d Decision) HasEffect(e Effect) bool {
	for _, x := range d.Effects {
		if x == e {
			return true
		}
	}
	return false
}

// CapabilitiesFor computes a's standing relative to r.
func CapabilitiesFor(a authz.Actor, r Resource) fieldpolicy.Capabilities {
	p := a.Profile
	c := fieldpolicy.Capabilities{
		API:             a.IsTrustedClient(),
		Admin:           authz.IsAdmin(p),
		ManagerAnywhere: authz.HasRole(p, string(authz.KindManager)),
		EditorAnywhere:  authz.HasRole(p, string(authz.KindEditor)),
	}
	if a.IsUser() {
		c.Own = r.OwnerID != "" && a.UserID == r.OwnerID
		c.Collaborator = containsString(r.Collaborators, a.UserID)
	}
	for _, loc := range r.Locations {
		if authz.IsManagerAt(p, loc) {
			c.ManagerHere = true
		}
		if authz.IsEditorAt(p, loc) {
			c.EditorHere = true
		}
		for _, org := range r.Organizations {
			if authz.IsOrgEditorAt(p, org, loc) {
				c.OrgEditorHere = true
			}
		}
	}
	return c
}

// Authorize computes the subset of req that a may apply to r.
func Authorize(a authz.Actor, r Resource, req Changes) Decision {
	caps := CapabilitiesFor(a, r)
	d := Decision{Allowed: Changes{}, Caps: caps}

	if !caps.HasStanding() {
		d.Rejected = true
		d.Reason = ReasonNoStanding
		return d
	}

	grantedRole, signalled := false, false
	for _, name := range req.sortedKeys() {
		value := req[name]

		if fieldpolicy.Immutable(name) {
			d.Dropped = append(d.Dropped, name)
			continue
		}

		rule, protected := fieldpolicy.Lookup(r.Kind, name)
		if !protected {
			d.Allowed[name] = value
			continue
		}
		if !rule.Allow(caps) {
			d.Dropped = append(d.Dropped, name)
			continue
		}
		if rule.Signal {
			list, ok := stringList(value)
			if !ok {
				d.Dropped = append(d.Dropped, name)
				continue
			}
			signalled = signalled || len(list) > 0
			continue
		}
		if rule.PerRole {
			requested, ok := stringList(value)
			if !ok {
				d.Dropped = append(d.Dropped, name)
				continue
			}
			out := evaluateRoles(a, caps, r.Roles, requested)
			d.Allowed[name] = out.roles
			d.Dropped = append(d.Dropped, out.dropped...)
			grantedRole = grantedRole || out.granted
			continue
		}
		d.Allowed[name] = value
	}

	if grantedRole || signalled || addsProtectedRoles(d.Allowed, r.ProtectedRoles) {
		d.Effects = append(d.Effects, EffectVerify)
		d.Allowed["verified"] = true
	}
	return d
}

// addsProtectedRoles reports whether the admitted protectedRoles contain a
// role not in current.
func addsProtectedRoles(allowed Changes, current []string) bool {
	requested, ok := allowed.Strings("protectedRoles")
	if !ok {
		return false
	}
	for _, role := range requested {
		if !containsString(current, role) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	if s == "" {
		return false
	}
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
