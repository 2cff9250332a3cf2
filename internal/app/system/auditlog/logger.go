// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/hidapi/internal/app/store/audit"
	"github.com/dalemusser/hidapi/internal/app/system/authz"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for rejected credentials, rate limiting and
	// forbidden writes.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for privileged writes (roles, verification,
	// check-out, deletes).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// EventStore persists audit events. *audit.Store satisfies it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger records audit events to MongoDB and structured logs.
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.String("actor", event.ActorKey),
		zap.Bool("success", event.Success),
	}
	if event.TargetID != "" {
		fields = append(fields,
			zap.String("target_kind", event.TargetKind),
			zap.String("target_id", event.TargetID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if (setting == "all" || setting == "log") && l.zapLog != nil {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil && l.zapLog != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Access events ---

// AuthFailed logs rejected credentials.
func (l *Logger) AuthFailed(ctx context.Context, r *http.Request, actorKey, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventAuthFailed,
		ActorKey:      actorKey,
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
		FailureReason: reason,
	})
}

// RateLimited logs a request refused for exceeding the actor's budget.
func (l *Logger) RateLimited(ctx context.Context, r *http.Request, actorKey string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventRateLimited,
		ActorKey:      actorKey,
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
		FailureReason: "rate limited",
	})
}

// Forbidden logs a write rejected by the base write gate.
func (l *Logger) Forbidden(ctx context.Context, a authz.Actor, kind, targetID string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventForbidden,
		ActorKey:      a.Key(),
		TargetKind:    kind,
		TargetID:      targetID,
		FailureReason: "no standing",
	})
}

// --- Privileged writes ---

func (l *Logger) admin(ctx context.Context, a authz.Actor, eventType, kind, targetID string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  eventType,
		ActorKey:   a.Key(),
		TargetKind: kind,
		TargetID:   targetID,
		Success:    true,
		Details:    details,
	})
}

// ContactSaved logs a contact write and the fields it touched.
func (l *Logger) ContactSaved(ctx context.Context, a authz.Actor, contactID string, fields []string, created bool) {
	d := map[string]string{"fields": strings.Join(fields, ",")}
	if created {
		d["created"] = "true"
	}
	l.admin(ctx, a, audit.EventContactSaved, "contact", contactID, d)
}

// ContactCheckedOut logs a check-out.
func (l *Logger) ContactCheckedOut(ctx context.Context, a authz.Actor, contactID, locationID string) {
	l.admin(ctx, a, audit.EventContactCheckedOut, "contact", contactID, map[string]string{"location_id": locationID})
}

// ProfileVerified logs the verify effect applied to a profile.
func (l *Logger) ProfileVerified(ctx context.Context, a authz.Actor, profileID string) {
	l.admin(ctx, a, audit.EventProfileVerified, "profile", profileID, nil)
}

// RolesChanged logs a role set change.
func (l *Logger) RolesChanged(ctx context.Context, a authz.Actor, profileID string, added, removed []string) {
	l.admin(ctx, a, audit.EventRolesChanged, "profile", profileID, map[string]string{
		"added":   strings.Join(added, ","),
		"removed": strings.Join(removed, ","),
	})
}

// OrgEditorsChanged logs a change of organization-editor grants.
func (l *Logger) OrgEditorsChanged(ctx context.Context, a authz.Actor, profileID string, count int) {
	l.admin(ctx, a, audit.EventOrgEditorsChanged, "profile", profileID, map[string]string{"grants": strconv.Itoa(count)})
}

// ProfileStatusChanged logs activation or deactivation.
func (l *Logger) ProfileStatusChanged(ctx context.Context, a authz.Actor, profileID string, active bool) {
	s := "inactive"
	if active {
		s = "active"
	}
	l.admin(ctx, a, audit.EventProfileStatusChanged, "profile", profileID, map[string]string{"status": s})
}

// ListSaved logs a list create or update.
func (l *Logger) ListSaved(ctx context.Context, a authz.Actor, listID string, created bool) {
	var d map[string]string
	if created {
		d = map[string]string{"created": "true"}
	}
	l.admin(ctx, a, audit.EventListSaved, "list", listID, d)
}

// ListDeleted logs a list removal.
func (l *Logger) ListDeleted(ctx context.Context, a authz.Actor, listID, name string) {
	l.admin(ctx, a, audit.EventListDeleted, "list", listID, map[string]string{"name": name})
}

// ServiceSaved logs a service create or update.
func (l *Logger) ServiceSaved(ctx context.Context, a authz.Actor, serviceID string, created bool) {
	var d map[string]string
	if created {
		d = map[string]string{"created": "true"}
	}
	l.admin(ctx, a, audit.EventServiceSaved, "service", serviceID, d)
}

// ServiceDeleted logs a service deactivation.
func (l *Logger) ServiceDeleted(ctx context.Context, a authz.Actor, serviceID string) {
	l.admin(ctx, a, audit.EventServiceDeleted, "service", serviceID, nil)
}
