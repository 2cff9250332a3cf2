// internal/app/features/contacts/saver.go
package contacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/hidapi/internal/app/policy/decision"
	"github.com/dalemusser/hidapi/internal/app/policy/fieldpolicy"
	"github.com/dalemusser/hidapi/internal/app/system/apperr"
	"github.com/dalemusser/hidapi/internal/app/system/auditlog"
	"github.com/dalemusser/hidapi/internal/app/system/authz"
	"github.com/dalemusser/hidapi/internal/app/system/diff"
	"github.com/dalemusser/hidapi/internal/app/system/ids"
	"github.com/dalemusser/hidapi/internal/app/system/notify"
	"github.com/dalemusser/hidapi/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// NewPerson as SaveRequest.ProfileID asks for a brand-new identity.
const NewPerson = "new"

// ContactStore is the contacts persistence the Saver needs.
type ContactStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Contact, error)
	GetGlobal(ctx context.Context, profileID primitive.ObjectID) (models.Contact, error)
	FindActiveLocal(ctx context.Context, profileID primitive.ObjectID, locationID string) (models.Contact, error)
	ActiveLocations(ctx context.Context, profileID primitive.ObjectID) ([]string, error)
	Upsert(ctx context.Context, c models.Contact) (models.Contact, error)
}

// ProfileStore is the profiles persistence the Saver needs.
type ProfileStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Profile, error)
	GetByUserID(ctx context.Context, userID string) (models.Profile, error)
	Upsert(ctx context.Context, p models.Profile) (models.Profile, error)
	SetVerified(ctx context.Context, id primitive.ObjectID, by string, at time.Time) error
}

// Notifier delivers post-write notifications.
type Notifier interface {
	Dispatch(ctx context.Context, template string, p notify.Payload)
}

// DecisionObserver records authorization outcomes.
type DecisionObserver interface {
	ObserveDecision(d decision.Decision, kind string)
}

// Saver runs the contact write pipeline: load, authorize, apply, persist,
// verify, diff and notify.
type Saver struct {
	Contacts   ContactStore
	Profiles   ProfileStore
	Notify     Notifier
	Audit      *auditlog.Logger
	Metrics    DecisionObserver
	Names      authz.LocationNamer
	IDs        ids.Issuer
	AdminEmail string
	Log        *zap.Logger
}

// SaveRequest is one contact write.
//
// ID names an existing contact. Without it a contact is created for
// ProfileID; an empty ProfileID means the acting user's own profile and
// NewPerson creates a new identity. A check-in for a location where the
// profile is already checked in updates that contact instead.
type SaveRequest struct {
	ID        string
	ProfileID string
	Changes   decision.Changes
}

// Result is the outcome of a successful write.
type Result struct {
	Contact  models.Contact    `json:"contact"`
	Created  bool              `json:"created"`
	Verified bool              `json:"verified"`
	Dropped  []string          `json:"dropped,omitempty"`
	Events   []diff.Event      `json:"events,omitempty"`
	Decision decision.Decision `json:"-"`
}

// target is the record being written and its owner.
type target struct {
	contact  models.Contact
	owner    models.Profile
	created  bool
	newOwner bool
}

// Save creates or updates a contact.
func (s *Saver) Save(ctx context.Context, a authz.Actor, req SaveRequest) (Result, error) {
	t, err := s.load(ctx, a, req)
	if err != nil {
		return Result{}, err
	}
	return s.write(ctx, a, t, req.Changes)
}

// CheckOut marks a local contact checked out.
func (s *Saver) CheckOut(ctx context.Context, a authz.Actor, id string) (Result, error) {
	t, err := s.load(ctx, a, SaveRequest{ID: id})
	if err != nil {
		return Result{}, err
	}
	if t.contact.Type != models.ContactTypeLocal {
		return Result{}, apperr.BadRequest("only local contacts can be checked out")
	}
	wasActive := t.contact.Status

	res, err := s.write(ctx, a, t, decision.Changes{"status": false})
	if err != nil {
		return res, err
	}
	if wasActive && !res.Contact.Status {
		s.Audit.ContactCheckedOut(ctx, a, res.Contact.ID.Hex(), res.Contact.LocationID)
		if a.UserID != t.owner.UserID {
			s.dispatch(ctx, a, notify.TemplateCheckedOut, res.Contact, t.owner, nil)
		}
	}
	return res, nil
}

func (s *Saver) load(ctx context.Context, a authz.Actor, req SaveRequest) (target, error) {
	if req.ID != "" {
		id, err := primitive.ObjectIDFromHex(req.ID)
		if err != nil {
			return target{}, apperr.BadRequest("invalid contact id")
		}
		c, err := s.Contacts.GetByID(ctx, id)
		if err != nil {
			return target{}, apperr.Lookup("contact", err)
		}
		owner, err := s.Profiles.GetByID(ctx, c.ProfileID)
		if err != nil {
			return target{}, apperr.Lookup("profile", err)
		}
		return target{contact: c, owner: owner}, nil
	}

	typ, _ := req.Changes.String("type")
	if typ == "" {
		typ = models.ContactTypeGlobal
	}
	if typ != models.ContactTypeGlobal && typ != models.ContactTypeLocal {
		return target{}, apperr.BadRequest("type must be global or local")
	}
	loc, _ := req.Changes.String("locationId")
	if typ == models.ContactTypeLocal && loc == "" {
		return target{}, apperr.BadRequest("locationId is required for a local contact")
	}

	owner, newOwner, err := s.resolveOwner(ctx, a, req)
	if err != nil {
		return target{}, err
	}

	t := target{owner: owner, newOwner: newOwner}
	if !newOwner {
		var existing models.Contact
		if typ == models.ContactTypeLocal {
			existing, err = s.Contacts.FindActiveLocal(ctx, owner.ID, loc)
		} else {
			existing, err = s.Contacts.GetGlobal(ctx, owner.ID)
		}
		switch {
		case err == nil:
			t.contact = existing
			return t, nil
		case !errors.Is(err, mongo.ErrNoDocuments):
			return target{}, apperr.Storage("load existing contact", err)
		}
	}

	t.created = true
	t.contact = models.Contact{
		ProfileID:  owner.ID,
		Type:       typ,
		LocationID: loc,
		Status:     true,
	}
	return t, nil
}

// resolveOwner finds, or prepares without persisting, the profile a new
// contact belongs to.
func (s *Saver) resolveOwner(ctx context.Context, a authz.Actor, req SaveRequest) (models.Profile, bool, error) {
	switch req.ProfileID {
	case "":
		if !a.IsUser() {
			return s.newProfile(s.IDs.NewUserID(), req.Changes), true, nil
		}
		p, err := s.Profiles.GetByUserID(ctx, a.UserID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return s.newProfile(a.UserID, req.Changes), true, nil
		}
		if err != nil {
			return models.Profile{}, false, apperr.Storage("load actor profile", err)
		}
		return p, false, nil
	case NewPerson:
		return s.newProfile(s.IDs.NewUserID(), req.Changes), true, nil
	}

	id, err := primitive.ObjectIDFromHex(req.ProfileID)
	if err != nil {
		return models.Profile{}, false, apperr.BadRequest("invalid profile id")
	}
	p, err := s.Profiles.GetByID(ctx, id)
	if err != nil {
		return models.Profile{}, false, apperr.Lookup("profile", err)
	}
	return p, false, nil
}

func (s *Saver) newProfile(userID string, ch decision.Changes) models.Profile {
	given, _ := ch.String("nameGiven")
	family, _ := ch.String("nameFamily")
	return models.Profile{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		NameGiven:  given,
		NameFamily: family,
		Status:     true,
	}
}

// resource builds the policy snapshot. A global contact belongs to every
// location its owner is checked in at. A contact being created is judged
// on the organizations it is created with; an existing one only on those
// already stored.
func (s *Saver) resource(ctx context.Context, t target, ch decision.Changes) (decision.Resource, error) {
	r := decision.Resource{
		Kind:           fieldpolicy.Contact,
		OwnerID:        t.owner.UserID,
		Organizations:  t.contact.OrganizationIDs(),
		ProtectedRoles: t.contact.ProtectedRoles,
	}
	if t.created && ch.Has("organization") {
		requested, err := decision.Merge(models.Contact{}, decision.Changes{"organization": ch["organization"]})
		if err != nil {
			return r, apperr.BadRequest(err.Error())
		}
		r.Organizations = requested.OrganizationIDs()
	}
	switch {
	case t.contact.Type == models.ContactTypeLocal:
		r.Locations = []string{t.contact.LocationID}
	case !t.newOwner:
		locs, err := s.Contacts.ActiveLocations(ctx, t.owner.ID)
		if err != nil {
			return r, apperr.Storage("load owner locations", err)
		}
		r.Locations = locs
	}
	return r, nil
}

func (s *Saver) write(ctx context.Context, a authz.Actor, t target, ch decision.Changes) (Result, error) {
	r, err := s.resource(ctx, t, ch)
	if err != nil {
		return Result{}, err
	}

	d := decision.Authorize(a, r, ch)
	if s.Metrics != nil {
		s.Metrics.ObserveDecision(d, string(fieldpolicy.Contact))
	}
	if d.Rejected {
		s.Audit.Forbidden(ctx, a, string(fieldpolicy.Contact), t.contact.ID.Hex())
		return Result{Decision: d}, fmt.Errorf("%w: %s", apperr.ErrForbidden, d.Reason)
	}
	if len(d.Dropped) > 0 {
		s.Log.Debug("contact fields dropped",
			zap.String("actor", a.Key()),
			zap.String("contact_id", t.contact.ID.Hex()),
			zap.Strings("fields", d.Dropped))
	}

	before := t.contact
	after, err := decision.Merge(before, d.Allowed)
	if err != nil {
		return Result{}, apperr.BadRequest(err.Error())
	}
	// Identity of a contact never changes after creation.
	after.ID = before.ID
	after.ProfileID = before.ProfileID
	after.Type = before.Type
	after.LocationID = before.LocationID
	if t.created && !d.Allowed.Has("status") {
		after.Status = true
	}

	if t.newOwner {
		if _, err := s.Profiles.Upsert(ctx, t.owner); err != nil {
			return Result{}, apperr.Storage("create profile", err)
		}
	}
	saved, err := s.Contacts.Upsert(ctx, after)
	if err != nil {
		return Result{}, apperr.Storage("upsert contact", err)
	}

	verified, err := s.applyVerification(ctx, a, t.owner, d)
	if err != nil {
		return Result{}, err
	}
	if d.HasEffect(decision.EffectVerify) {
		s.Log.Debug("owner verified by protected write",
			zap.String("actor", a.Key()),
			zap.String("profile_id", t.owner.ID.Hex()))
	}

	s.Audit.ContactSaved(ctx, a, saved.ID.Hex(), d.Allowed.Fields(), t.created)

	res := Result{
		Contact:  saved,
		Created:  t.created,
		Verified: verified,
		Dropped:  d.Dropped,
		Decision: d,
	}
	if !t.created {
		res.Events = diff.Contacts(before, saved)
		if len(res.Events) > 0 && a.UserID != t.owner.UserID {
			s.dispatch(ctx, a, notify.TemplateContactUpdate, saved, t.owner, res.Events)
		}
	}
	return res, nil
}

// applyVerification carries the decision's verified value onto the owning
// profile. It reports whether the profile is verified afterwards.
func (s *Saver) applyVerification(ctx context.Context, a authz.Actor, owner models.Profile, d decision.Decision) (bool, error) {
	v, ok := d.Allowed.Bool("verified")
	if !ok || v == owner.Verified {
		return owner.Verified, nil
	}
	if v {
		if err := s.Profiles.SetVerified(ctx, owner.ID, verifierID(a), time.Now().UTC()); err != nil {
			return false, apperr.Storage("verify profile", err)
		}
		s.Audit.ProfileVerified(ctx, a, owner.ID.Hex())
		return true, nil
	}
	owner.Verified = false
	owner.VerifiedBy = ""
	owner.VerifiedAt = nil
	if _, err := s.Profiles.Upsert(ctx, owner); err != nil {
		return false, apperr.Storage("unverify profile", err)
	}
	return false, nil
}

func (s *Saver) dispatch(ctx context.Context, a authz.Actor, template string, c models.Contact, owner models.Profile, events []diff.Event) {
	if s.Notify == nil {
		return
	}
	email := c.PrimaryEmail()
	if email == "" {
		email = owner.Email
	}
	s.Notify.Dispatch(context.WithoutCancel(ctx), template, notify.Payload{
		Recipient:  notify.Person{Name: c.FullName(), Email: email},
		Actor:      notify.Person{Name: actorName(a), Email: a.Email},
		AdminEmail: s.AdminEmail,
		Location:   s.locationName(c.LocationID),
		ResourceID: c.ID.Hex(),
		Events:     events,
	})
}

func (s *Saver) locationName(id string) string {
	if id == "" || s.Names == nil {
		return id
	}
	if name, ok := s.Names.LocationName(id); ok {
		return name
	}
	return id
}

func actorName(a authz.Actor) string {
	if a.Name != "" {
		return a.Name
	}
	if a.IsUser() {
		return a.UserID
	}
	return a.ClientID
}

// verifierID is what verifiedByID records for a.
func verifierID(a authz.Actor) string {
	if a.IsUser() {
		return a.UserID
	}
	return a.Key()
}
