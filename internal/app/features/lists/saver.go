// internal/app/features/lists/saver.go
package lists

import (
	"context"
	"fmt"

	"github.com/dalemusser/hidapi/internal/app/policy/decision"
	"github.com/dalemusser/hidapi/internal/app/policy/fieldpolicy"
	"github.com/dalemusser/hidapi/internal/app/system/apperr"
	"github.com/dalemusser/hidapi/internal/app/system/auditlog"
	"github.com/dalemusser/hidapi/internal/app/system/authz"
	"github.com/dalemusser/hidapi/internal/app/system/normalize"
	"github.com/dalemusser/hidapi/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ListStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.List, error)
	Upsert(ctx context.Context, l models.List) (models.List, error)
	Remove(ctx context.Context, id primitive.ObjectID) (int64, error)
	ListByOwner(ctx context.Context, userID string) ([]models.List, error)
}

// Followers maintains the lists a profile follows.
type Followers interface {
	AddList(ctx context.Context, profileID, listID primitive.ObjectID) error
	RemoveList(ctx context.Context, profileID, listID primitive.ObjectID) error
	UnlinkList(ctx context.Context, listID primitive.ObjectID) (int64, error)
}

type DecisionObserver interface {
	ObserveDecision(d decision.Decision, kind string)
}

// Saver handles list writes and follows.
type Saver struct {
	Lists     ListStore
	Followers Followers
	Audit     *auditlog.Logger
	Metrics   DecisionObserver
	Log       *zap.Logger
}

// Result is the outcome of a successful list write.
type Result struct {
	List    models.List `json:"list"`
	Created bool        `json:"created"`
	Dropped []string    `json:"dropped,omitempty"`
}

var privacies = map[string]bool{
	models.ListPrivacyAll:      true,
	models.ListPrivacyVerified: true,
	models.ListPrivacySome:     true,
	models.ListPrivacyMe:       true,
}

// Save creates a list owned by the acting user (id == "") or updates one.
func (s *Saver) Save(ctx context.Context, a authz.Actor, id string, ch decision.Changes) (Result, error) {
	var (
		before  models.List
		created bool
	)
	if id == "" {
		if !a.IsUser() {
			return Result{}, apperr.BadRequest("lists are owned by users")
		}
		created = true
		before = models.List{Owner: a.UserID, Privacy: models.ListPrivacyMe}
	} else {
		l, err := s.load(ctx, id)
		if err != nil {
			return Result{}, err
		}
		before = l
	}

	d := decision.Authorize(a, resource(before), ch)
	if s.Metrics != nil {
		s.Metrics.ObserveDecision(d, string(fieldpolicy.List))
	}
	if d.Rejected {
		s.Audit.Forbidden(ctx, a, string(fieldpolicy.List), id)
		return Result{}, fmt.Errorf("%w: %s", apperr.ErrForbidden, d.Reason)
	}
	if len(d.Dropped) > 0 {
		s.Log.Debug("list fields dropped", zap.String("actor", a.Key()), zap.String("list_id", id), zap.Strings("fields", d.Dropped))
	}

	after, err := decision.Merge(before, d.Allowed)
	if err != nil {
		return Result{}, apperr.BadRequest(err.Error())
	}
	after.ID = before.ID
	after.Owner = before.Owner
	after.CreatedAt = before.CreatedAt
	after.Name = normalize.Name(after.Name)
	after.Readers = normalize.IDs(after.Readers)
	after.Editors = normalize.IDs(after.Editors)
	if after.Name == "" {
		return Result{}, apperr.BadRequest("name is required")
	}
	if !privacies[after.Privacy] {
		return Result{}, apperr.BadRequest("privacy must be one of all, verified, some, me")
	}

	saved, err := s.Lists.Upsert(ctx, after)
	if err != nil {
		return Result{}, apperr.Storage("upsert list", err)
	}
	s.Audit.ListSaved(ctx, a, saved.ID.Hex(), created)
	return Result{List: saved, Created: created, Dropped: d.Dropped}, nil
}

// Delete removes a list and unlinks it from its followers. Only the owner,
// an admin or a trusted client may delete.
func (s *Saver) Delete(ctx context.Context, a authz.Actor, id string) error {
	l, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	caps := decision.CapabilitiesFor(a, resource(l))
	if !(caps.API || caps.Admin || caps.Own) {
		s.Audit.Forbidden(ctx, a, string(fieldpolicy.List), id)
		return fmt.Errorf("%w: only the owner may delete a list", apperr.ErrForbidden)
	}
	if _, err := s.Lists.Remove(ctx, l.ID); err != nil {
		return apperr.Storage("remove list", err)
	}
	n, err := s.Followers.UnlinkList(ctx, l.ID)
	if err != nil {
		return apperr.Storage("unlink list followers", err)
	}
	s.Log.Debug("list deleted", zap.String("list_id", id), zap.Int64("followers_unlinked", n))
	s.Audit.ListDeleted(ctx, a, id, l.Name)
	return nil
}

// Follow adds a visible list to the acting user's profile.
func (s *Saver) Follow(ctx context.Context, a authz.Actor, id string) error {
	pid, err := actorProfileID(a)
	if err != nil {
		return err
	}
	l, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanViewList(a, l) {
		return fmt.Errorf("%w: list is not visible to you", apperr.ErrForbidden)
	}
	if err := s.Followers.AddList(ctx, pid, l.ID); err != nil {
		return apperr.Lookup("profile", err)
	}
	return nil
}

// Unfollow removes a list from the acting user's profile.
func (s *Saver) Unfollow(ctx context.Context, a authz.Actor, id string) error {
	pid, err := actorProfileID(a)
	if err != nil {
		return err
	}
	lid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.BadRequest("invalid list id")
	}
	if err := s.Followers.RemoveList(ctx, pid, lid); err != nil {
		return apperr.Lookup("profile", err)
	}
	return nil
}

// Mine returns the lists owned by the acting user.
func (s *Saver) Mine(ctx context.Context, a authz.Actor) ([]models.List, error) {
	if !a.IsUser() {
		return nil, apperr.BadRequest("lists are owned by users")
	}
	ls, err := s.Lists.ListByOwner(ctx, a.UserID)
	if err != nil {
		return nil, apperr.Storage("list lists", err)
	}
	return ls, nil
}

func (s *Saver) load(ctx context.Context, id string) (models.List, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.List{}, apperr.BadRequest("invalid list id")
	}
	l, err := s.Lists.GetByID(ctx, oid)
	if err != nil {
		return models.List{}, apperr.Lookup("list", err)
	}
	return l, nil
}

func resource(l models.List) decision.Resource {
	return decision.Resource{Kind: fieldpolicy.List, OwnerID: l.Owner, Collaborators: l.Editors}
}

func actorProfileID(a authz.Actor) (primitive.ObjectID, error) {
	if !a.IsUser() || a.Profile == nil {
		return primitive.NilObjectID, apperr.BadRequest("following a list requires a profile")
	}
	pid, err := primitive.ObjectIDFromHex(a.Profile.ID)
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid actor profile")
	}
	return pid, nil
}
