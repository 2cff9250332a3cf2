// Package diff compares contact snapshots and describes what changed in
// English and French for update notifications.
//
// Every field is compared on its own and yields at most one Event. An empty
// result means nothing worth reporting changed, and callers must not send
// an update notification at all. Missing collections compare as empty.
package diff

import (
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/hidapi/internal/domain/models"
)

// Kind identifies the field an Event reports on.
type Kind string

const (
	KindName          Kind = "name"
	KindOrganization  Kind = "organization"
	KindJobTitle      Kind = "jobtitle"
	KindGroups        Kind = "groups"
	KindDisasters     Kind = "disasters"
	KindAddress       Kind = "address"
	KindOffice        Kind = "office"
	KindPhone         Kind = "phone"
	KindVOIP          Kind = "voip"
	KindEmail         Kind = "email"
	KindWebsite       Kind = "website"
	KindDepartureDate Kind = "departureDate"
	KindNotes         Kind = "notes"
	KindRoleGranted   Kind = "roleGranted"
	KindRoleRevoked   Kind = "roleRevoked"
)

// Event is one reportable change.
type Event struct {
	Kind        Kind   `json:"kind"`
	Description string `json:"description"`
	EN          string `json:"en"`
	FR          string `json:"fr"`
}

// Contacts returns the changes between before and after, in a fixed field
// order.
func Contacts(before, after models.Contact) []Event {
	var out []Event
	for _, cmp := range comparisons {
		if ev, ok := cmp(before, after); ok {
			out = append(out, ev)
		}
	}
	return out
}

type comparison func(before, after models.Contact) (Event, bool)

var comparisons = []comparison{
	diffName,
	diffOrganization,
	diffJobTitle,
	diffGroups,
	diffDisasters,
	diffAddress,
	diffOffice,
	diffPhone,
	diffVOIP,
	diffEmail,
	diffWebsite,
	diffDepartureDate,
	diffNotes,
}

func event(kind Kind, key, value string) Event {
	en, fr := render(key, value)
	return Event{Kind: kind, Description: describe(key, value), EN: en, FR: fr}
}

func describe(key, value string) string {
	return strings.ReplaceAll(key, "_", " ") + ": " + value
}

// join merges several single-field lines into one event.
func join(kind Kind, parts ...Event) Event {
	ev := Event{Kind: kind}
	var desc, en, fr []string
	for _, p := range parts {
		desc = append(desc, p.Description)
		en = append(en, p.EN)
		fr = append(fr, p.FR)
	}
	ev.Description = strings.Join(desc, "; ")
	ev.EN = strings.Join(en, "; ")
	ev.FR = strings.Join(fr, "; ")
	return ev
}

func diffName(b, a models.Contact) (Event, bool) {
	if b.NameGiven == a.NameGiven && b.NameFamily == a.NameFamily {
		return Event{}, false
	}
	return event(KindName, "name", a.FullName()), true
}

func primaryOrg(c models.Contact) string {
	if len(c.Organization) == 0 {
		return ""
	}
	return c.Organization[0].Name
}

func diffOrganization(b, a models.Contact) (Event, bool) {
	before, after := primaryOrg(b), primaryOrg(a)
	switch {
	case before == after:
		return Event{}, false
	case before == "":
		return event(KindOrganization, "organization_added", after), true
	case after == "":
		return event(KindOrganization, "organization_removed", before), true
	}
	return event(KindOrganization, "organization_changed", after), true
}

func diffJobTitle(b, a models.Contact) (Event, bool) {
	if b.JobTitle == a.JobTitle {
		return Event{}, false
	}
	return event(KindJobTitle, "jobtitle", a.JobTitle), true
}

func groups(c models.Contact) []string {
	out := make([]string, 0, len(c.Bundle)+len(c.ProtectedBundles))
	out = append(out, c.Bundle...)
	return append(out, c.ProtectedBundles...)
}

func diffGroups(b, a models.Contact) (Event, bool) {
	return setEvent(KindGroups, "groups", groups(b), groups(a))
}

func disasterNames(c models.Contact) []string {
	out := make([]string, 0, len(c.Disasters))
	for _, d := range c.Disasters {
		out = append(out, d.Name)
	}
	return out
}

func diffDisasters(b, a models.Contact) (Event, bool) {
	return setEvent(KindDisasters, "disasters", disasterNames(b), disasterNames(a))
}

// setEvent reports additions and removals between two string sets.
func setEvent(kind Kind, prefix string, before, after []string) (Event, bool) {
	added := difference(after, before)
	removed := difference(before, after)
	var parts []Event
	if len(added) > 0 {
		parts = append(parts, event(kind, prefix+"_added", strings.Join(added, ", ")))
	}
	if len(removed) > 0 {
		parts = append(parts, event(kind, prefix+"_removed", strings.Join(removed, ", ")))
	}
	if len(parts) == 0 {
		return Event{}, false
	}
	return join(kind, parts...), true
}

// difference returns the distinct members of x not in y, sorted.
func difference(x, y []string) []string {
	in := make(map[string]struct{}, len(y))
	for _, s := range y {
		in[s] = struct{}{}
	}
	seen := make(map[string]struct{})
	var out []string
	for _, s := range x {
		if s == "" {
			continue
		}
		if _, ok := in[s]; ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func primaryAddress(c models.Contact) models.Address {
	if len(c.Address) == 0 {
		return models.Address{}
	}
	return c.Address[0]
}

func diffAddress(b, a models.Contact) (Event, bool) {
	before, after := primaryAddress(b), primaryAddress(a)
	if before.Country == after.Country &&
		before.Locality == after.Locality &&
		before.AdministrativeArea == after.AdministrativeArea {
		return Event{}, false
	}
	return event(KindAddress, "address", nonEmpty(", ", after.Locality, after.AdministrativeArea, after.Country)), true
}

func primaryOffice(c models.Contact) string {
	if len(c.Office) == 0 {
		return ""
	}
	return c.Office[0].Name
}

func diffOffice(b, a models.Contact) (Event, bool) {
	if primaryOffice(b) == primaryOffice(a) {
		return Event{}, false
	}
	return event(KindOffice, "office", primaryOffice(a)), true
}

func diffPhone(b, a models.Contact) (Event, bool) {
	if equalSlices(b.Phone, a.Phone) {
		return Event{}, false
	}
	nums := make([]string, 0, len(a.Phone))
	for _, p := range a.Phone {
		nums = append(nums, nonEmpty(" ", p.CountryCode, p.Number))
	}
	return event(KindPhone, "phone", strings.Join(nums, ", ")), true
}

func diffVOIP(b, a models.Contact) (Event, bool) {
	if equalSlices(b.VOIP, a.VOIP) {
		return Event{}, false
	}
	vals := make([]string, 0, len(a.VOIP))
	for _, v := range a.VOIP {
		vals = append(vals, nonEmpty(" ", v.Type, v.Number))
	}
	return event(KindVOIP, "voip", strings.Join(vals, ", ")), true
}

func diffEmail(b, a models.Contact) (Event, bool) {
	if equalSlices(b.Email, a.Email) {
		return Event{}, false
	}
	vals := make([]string, 0, len(a.Email))
	for _, e := range a.Email {
		vals = append(vals, e.Address)
	}
	return event(KindEmail, "email", strings.Join(vals, ", ")), true
}

func diffWebsite(b, a models.Contact) (Event, bool) {
	if equalSlices(b.URI, a.URI) {
		return Event{}, false
	}
	return event(KindWebsite, "website", strings.Join(a.URI, ", ")), true
}

func diffDepartureDate(b, a models.Contact) (Event, bool) {
	if sameTime(b.DepartureDate, a.DepartureDate) {
		return Event{}, false
	}
	value := ""
	if a.DepartureDate != nil {
		value = a.DepartureDate.UTC().Format("2006-01-02")
	}
	return event(KindDepartureDate, "departure_date", value), true
}

func diffNotes(b, a models.Contact) (Event, bool) {
	if b.Notes == a.Notes {
		return Event{}, false
	}
	return event(KindNotes, "notes", a.Notes), true
}

// equalSlices compares index-wise; nil and empty are equal.
func equalSlices[T comparable](x, y []T) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func sameTime(x, y *time.Time) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	return x.Equal(*y)
}

func nonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
