// internal/app/system/notify/sinks.go
package notify

import (
	"context"
	"fmt"

	"github.com/dalemusser/hidapi/internal/app/system/mailer"
	"go.uber.org/zap"
)

// EmailSender sends one email. *mailer.Mailer satisfies it.
type EmailSender interface {
	Send(ctx context.Context, e mailer.Email) error
}

// MailSink renders notifications as email.
type MailSink struct {
	sender   EmailSender
	siteName string
}

// NewMailSink returns a sink that emails through sender.
func NewMailSink(sender EmailSender, siteName string) *MailSink {
	return &MailSink{sender: sender, siteName: siteName}
}

// Notify renders template for p and sends it to the recipient.
func (s *MailSink) Notify(ctx context.Context, template string, p Payload) error {
	e, err := s.Render(template, p)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, e)
}

// Render builds the email for template without sending it.
func (s *MailSink) Render(template string, p Payload) (mailer.Email, error) {
	var e mailer.Email
	switch template {
	case TemplateContactUpdate:
		e = mailer.BuildContactUpdateEmail(mailer.ContactUpdateData{
			SiteName:      s.siteName,
			RecipientName: p.Recipient.Name,
			ActorName:     p.Actor.Name,
			AdminEmail:    p.AdminEmail,
			Location:      p.Location,
			Lines:         lines(p),
		})
	case TemplateRolesChanged:
		e = mailer.BuildRolesChangedEmail(mailer.RolesChangedData{
			SiteName:      s.siteName,
			RecipientName: p.Recipient.Name,
			ActorName:     p.Actor.Name,
			AdminEmail:    p.AdminEmail,
			Lines:         lines(p),
		})
	case TemplateCheckedOut:
		e = mailer.BuildCheckedOutEmail(mailer.CheckedOutData{
			SiteName:      s.siteName,
			RecipientName: p.Recipient.Name,
			ActorName:     p.Actor.Name,
			AdminEmail:    p.AdminEmail,
			Location:      p.Location,
		})
	default:
		return mailer.Email{}, fmt.Errorf("notify: unknown template %q", template)
	}
	e.To = p.Recipient.Email
	return e, nil
}

func lines(p Payload) []mailer.Line {
	out := make([]mailer.Line, 0, len(p.Events))
	for _, ev := range p.Events {
		out = append(out, mailer.Line{EN: ev.EN, FR: ev.FR})
	}
	return out
}

// LogSink writes notifications to the structured log. It is the sink used
// when no mail or queue backend is configured.
type LogSink struct {
	log *zap.Logger
}

// NewLogSink returns a sink that logs at info level.
func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

// Notify logs the notification.
func (s *LogSink) Notify(_ context.Context, template string, p Payload) error {
	descs := make([]string, 0, len(p.Events))
	for _, ev := range p.Events {
		descs = append(descs, ev.Description)
	}
	s.log.Info("notification",
		zap.String("template", template),
		zap.String("to", p.Recipient.Email),
		zap.String("actor", p.Actor.Name),
		zap.String("resource_id", p.ResourceID),
		zap.Strings("events", descs))
	return nil
}
