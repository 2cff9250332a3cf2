// Package notify delivers change notifications after a write has
// committed. Delivery problems are logged and counted, never returned to
// the request that triggered them.
package notify

import (
	"context"
	"fmt"

	"github.com/dalemusser/hidapi/internal/app/system/apperr"
	"github.com/dalemusser/hidapi/internal/app/system/diff"
	"github.com/dalemusser/hidapi/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Template names.
const (
	TemplateContactUpdate = "contact_update"
	TemplateRolesChanged  = "roles_changed"
	TemplateCheckedOut    = "contact_checked_out"
)

// Person identifies a recipient or the acting user.
type Person struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Payload is everything a sink needs to render a notification.
type Payload struct {
	Recipient  Person       `json:"recipient"`
	Actor      Person       `json:"actor"`
	AdminEmail string       `json:"adminEmail,omitempty"`
	Location   string       `json:"location,omitempty"`
	ResourceID string       `json:"resourceId,omitempty"`
	Events     []diff.Event `json:"events,omitempty"`
}

// Sink delivers one notification.
type Sink interface {
	Notify(ctx context.Context, template string, p Payload) error
}

// Observer records delivery outcomes. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveNotification(template string, err error)
}

// Dispatcher fans a notification out to every configured sink.
type Dispatcher struct {
	sinks []Sink
	log   *zap.Logger
	obs   Observer
}

// NewDispatcher returns a dispatcher over sinks. obs may be nil.
func NewDispatcher(log *zap.Logger, obs Observer, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{sinks: sinks, log: log, obs: obs}
}

// Dispatch delivers to all sinks concurrently and waits for them. Payloads
// with no recipient email are skipped. Failures are logged.
func (d *Dispatcher) Dispatch(ctx context.Context, template string, p Payload) {
	if d == nil || len(d.sinks) == 0 {
		return
	}
	if p.Recipient.Email == "" {
		d.log.Debug("notification skipped: no recipient email", zap.String("template", template))
		return
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Notify(), d.log, "notify "+template)
	defer cancel()

	var g errgroup.Group
	for _, s := range d.sinks {
		s := s
		g.Go(func() error {
			err := s.Notify(ctx, template, p)
			if d.obs != nil {
				d.obs.ObserveNotification(template, err)
			}
			if err != nil {
				err = fmt.Errorf("%w: %s: %w", apperr.ErrNotification, template, err)
				d.log.Warn("notification failed",
					zap.String("template", template),
					zap.String("resource_id", p.ResourceID),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
