// internal/app/features/services/saver.go
package services

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

type ServiceStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Service, error)
	Upsert(ctx context.Context, s models.Service) (models.Service, error)
	ListActiveAt(ctx context.Context, locationID string) ([]models.Service, error)
}

type DecisionObserver interface {
	ObserveDecision(d decision.Decision, kind string)
}

// Saver handles service writes. Deleting a service clears its status.
type Saver struct {
	Services ServiceStore
	Audit    *auditlog.Logger
	Metrics  DecisionObserver
	Log      *zap.Logger
}

type Result struct {
	Service models.Service `json:"service"`
	Created bool           `json:"created"`
	Dropped []string       `json:"dropped,omitempty"`
}

// Save creates (id == "") or updates a service.
func (s *Saver) Save(ctx context.Context, a authz.Actor, id string, ch decision.Changes) (Result, error) {
	var (
		before  models.Service
		created bool
	)
	if id == "" {
		created = true
		loc, _ := ch.String("locationId")
		before = models.Service{UserID: creatorID(a), LocationID: loc, Status: true}
	} else {
		svc, err := s.load(ctx, id)
		if err != nil {
			return Result{}, err
		}
		before = svc
	}

	res, err := s.write(ctx, a, before, ch)
	if err != nil {
		return Result{}, err
	}
	res.Created = created
	return res, nil
}

// Delete marks a service inactive.
func (s *Saver) Delete(ctx context.Context, a authz.Actor, id string) error {
	svc, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	res, err := s.write(ctx, a, svc, decision.Changes{"status": false})
	if err != nil {
		return err
	}
	if svc.Status && !res.Service.Status {
		s.Audit.ServiceDeleted(ctx, a, id)
	}
	return nil
}

func (s *Saver) write(ctx context.Context, a authz.Actor, before models.Service, ch decision.Changes) (Result, error) {
	r := decision.Resource{
		Kind:          fieldpolicy.Service,
		OwnerID:       before.UserID,
		Collaborators: before.Owners,
	}
	if before.LocationID != "" {
		r.Locations = []string{before.LocationID}
	}
	d := decision.Authorize(a, r, ch)
	if s.Metrics != nil {
		s.Metrics.ObserveDecision(d, string(fieldpolicy.Service))
	}
	if d.Rejected {
		s.Audit.Forbidden(ctx, a, string(fieldpolicy.Service), before.ID.Hex())
		return Result{}, fmt.Errorf("%w: %s", apperr.ErrForbidden, d.Reason)
	}
	if len(d.Dropped) > 0 {
		s.Log.Debug("service fields dropped", zap.String("actor", a.Key()), zap.String("service_id", before.ID.Hex()), zap.Strings("fields", d.Dropped))
	}

	after, err := decision.Merge(before, d.Allowed)
	if err != nil {
		return Result{}, apperr.BadRequest(err.Error())
	}
	after.ID = before.ID
	after.UserID = before.UserID
	after.LocationID = before.LocationID
	after.CreatedAt = before.CreatedAt
	after.Name = normalize.Name(after.Name)
	after.Owners = normalize.IDs(after.Owners)
	if after.Name == "" {
		return Result{}, apperr.BadRequest("name is required")
	}

	saved, err := s.Services.Upsert(ctx, after)
	if err != nil {
		return Result{}, apperr.Storage("upsert service", err)
	}
	s.Audit.ServiceSaved(ctx, a, saved.ID.Hex(), before.ID.IsZero())
	return Result{Service: saved, Dropped: d.Dropped}, nil
}

// ListAt returns the visible, active services at a location.
func (s *Saver) ListAt(ctx context.Context, locationID string) ([]models.Service, error) {
	if locationID == "" {
		return nil, apperr.BadRequest("locationId is required")
	}
	svcs, err := s.Services.ListActiveAt(ctx, locationID)
	if err != nil {
		return nil, apperr.Storage("list services", err)
	}
	return svcs, nil
}

func (s *Saver) load(ctx context.Context, id string) (models.Service, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Service{}, apperr.BadRequest("invalid service id")
	}
	svc, err := s.Services.GetByID(ctx, oid)
	if err != nil {
		return models.Service{}, apperr.Lookup("service", err)
	}
	return svc, nil
}

func creatorID(a authz.Actor) string {
	if a.IsUser() {
		return a.UserID
	}
	return a.Key()
}
