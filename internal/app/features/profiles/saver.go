// internal/app/features/profiles/saver.go
package profiles

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/dalemusser/hidapi/internal/app/policy/decision"
	"github.com/dalemusser/hidapi/internal/app/policy/fieldpolicy"
	"github.com/dalemusser/hidapi/internal/app/system/apperr"
	"github.com/dalemusser/hidapi/internal/app/system/auditlog"
	"github.com/dalemusser/hidapi/internal/app/system/authz"
	"github.com/dalemusser/hidapi/internal/app/system/diff"
	"github.com/dalemusser/hidapi/internal/app/system/notify"
	"github.com/dalemusser/hidapi/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ProfileStore is the profiles persistence the Saver needs.
type ProfileStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Profile, error)
	Upsert(ctx context.Context, p models.Profile) (models.Profile, error)
}

// ContactLookup resolves where a profile is checked in and how to reach it.
type ContactLookup interface {
	ActiveLocations(ctx context.Context, profileID primitive.ObjectID) ([]string, error)
	GetGlobal(ctx context.Context, profileID primitive.ObjectID) (models.Contact, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, template string, p notify.Payload)
}

type DecisionObserver interface {
	ObserveDecision(d decision.Decision, kind string)
}

// Saver runs the profile write pipeline.
type Saver struct {
	Profiles   ProfileStore
	Contacts   ContactLookup
	Notify     Notifier
	Audit      *auditlog.Logger
	Metrics    DecisionObserver
	Names      authz.LocationNamer
	AdminEmail string
	Log        *zap.Logger
}

// Result is the outcome of a successful profile write.
type Result struct {
	Profile  models.Profile    `json:"profile"`
	Dropped  []string          `json:"dropped,omitempty"`
	Events   []diff.Event      `json:"events,omitempty"`
	Decision decision.Decision `json:"-"`
}

// Save applies the authorized part of ch to the profile id.
func (s *Saver) Save(ctx context.Context, a authz.Actor, id string, ch decision.Changes) (Result, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Result{}, apperr.BadRequest("invalid profile id")
	}
	before, err := s.Profiles.GetByID(ctx, oid)
	if err != nil {
		return Result{}, apperr.Lookup("profile", err)
	}
	locs, err := s.Contacts.ActiveLocations(ctx, before.ID)
	if err != nil {
		return Result{}, apperr.Storage("load profile locations", err)
	}

	d := decision.Authorize(a, decision.Resource{
		Kind:      fieldpolicy.Profile,
		OwnerID:   before.UserID,
		Locations: locs,
		Roles:     before.Roles,
	}, ch)
	if s.Metrics != nil {
		s.Metrics.ObserveDecision(d, string(fieldpolicy.Profile))
	}
	if d.Rejected {
		s.Audit.Forbidden(ctx, a, string(fieldpolicy.Profile), id)
		return Result{Decision: d}, fmt.Errorf("%w: %s", apperr.ErrForbidden, d.Reason)
	}
	if len(d.Dropped) > 0 {
		s.Log.Debug("profile fields dropped",
			zap.String("actor", a.Key()),
			zap.String("profile_id", id),
			zap.Strings("fields", d.Dropped))
	}

	after, err := decision.Merge(before, d.Allowed)
	if err != nil {
		return Result{}, apperr.BadRequest(err.Error())
	}
	// Followed lists change only through follow/unfollow; verification
	// metadata only through the verified flag.
	after.ID = before.ID
	after.UserID = before.UserID
	after.CreatedAt = before.CreatedAt
	after.Lists = before.Lists
	after.VerifiedBy = before.VerifiedBy
	after.VerifiedAt = before.VerifiedAt
	switch {
	case after.Verified && !before.Verified:
		now := time.Now().UTC()
		after.VerifiedBy = verifierID(a)
		after.VerifiedAt = &now
	case !after.Verified:
		after.VerifiedBy = ""
		after.VerifiedAt = nil
	}

	saved, err := s.Profiles.Upsert(ctx, after)
	if err != nil {
		return Result{}, apperr.Storage("upsert profile", err)
	}

	res := Result{Profile: saved, Dropped: d.Dropped, Decision: d}
	s.audit(ctx, a, before, saved)

	res.Events = diff.Roles(before.Roles, saved.Roles, s.Names)
	if len(res.Events) > 0 && a.UserID != saved.UserID {
		s.notifyRoles(ctx, a, saved, res.Events)
	}
	return res, nil
}

func (s *Saver) audit(ctx context.Context, a authz.Actor, before, after models.Profile) {
	id := after.ID.Hex()
	if after.Verified && !before.Verified {
		s.Audit.ProfileVerified(ctx, a, id)
	}
	added, removed := setDiff(before.Roles, after.Roles)
	if len(added) > 0 || len(removed) > 0 {
		s.Audit.RolesChanged(ctx, a, id, added, removed)
	}
	if !reflect.DeepEqual(normGrants(before.OrgEditorRoles), normGrants(after.OrgEditorRoles)) {
		s.Audit.OrgEditorsChanged(ctx, a, id, len(after.OrgEditorRoles))
	}
	if before.Status != after.Status {
		s.Audit.ProfileStatusChanged(ctx, a, id, after.Status)
	}
}

func (s *Saver) notifyRoles(ctx context.Context, a authz.Actor, p models.Profile, events []diff.Event) {
	if s.Notify == nil {
		return
	}
	name := joinName(p.NameGiven, p.NameFamily)
	email := p.Email
	if g, err := s.Contacts.GetGlobal(ctx, p.ID); err == nil {
		if email == "" {
			email = g.PrimaryEmail()
		}
		if name == "" {
			name = g.FullName()
		}
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		s.Log.Warn("load global contact for notification", zap.String("profile_id", p.ID.Hex()), zap.Error(err))
	}
	actor := a.Name
	if actor == "" {
		actor = a.Key()
	}
	s.Notify.Dispatch(context.WithoutCancel(ctx), notify.TemplateRolesChanged, notify.Payload{
		Recipient:  notify.Person{Name: name, Email: email},
		Actor:      notify.Person{Name: actor, Email: a.Email},
		AdminEmail: s.AdminEmail,
		ResourceID: p.ID.Hex(),
		Events:     events,
	})
}

func setDiff(before, after []string) (added, removed []string) {
	in := func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	}
	for _, r := range after {
		if !in(before, r) {
			added = append(added, r)
		}
	}
	for _, r := range before {
		if !in(after, r) {
			removed = append(removed, r)
		}
	}
	return added, removed
}

func normGrants(g []models.OrgEditorGrant) []models.OrgEditorGrant {
	if len(g) == 0 {
		return nil
	}
	return g
}

func joinName(given, family string) string {
	switch {
	case given == "":
		return family
	case family == "":
		return given
	}
	return given + " " + family
}

func verifierID(a authz.Actor) string {
	if a.IsUser() {
		return a.UserID
	}
	return a.Key()
}
