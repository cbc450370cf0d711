// Package notify holds the delivery channels behind
// application.NotificationGateway.
package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/internal/application"
	"github.com/oksasatya/go-slot-booking/pkg/mailer"
)

// Publisher is satisfied by *helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueGateway enqueues an EmailJob for cmd/email_worker.
type QueueGateway struct {
	Publisher Publisher
}

func NewQueueGateway(p Publisher) *QueueGateway {
	return &QueueGateway{Publisher: p}
}

func (g *QueueGateway) Notify(ctx context.Context, n application.Notification) error {
	job := mailer.EmailJob{To: n.To, Subject: n.Subject, Text: n.Body, Template: n.Template}
	if err := g.Publisher.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("enqueue email to %s: %w", n.To, err)
	}
	return nil
}

// Sender is satisfied by *mailer.Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// MailgunGateway sends directly from the API process.
type MailgunGateway struct {
	Sender Sender
}

func NewMailgunGateway(s Sender) *MailgunGateway {
	return &MailgunGateway{Sender: s}
}

func (g *MailgunGateway) Notify(ctx context.Context, n application.Notification) error {
	if err := g.Sender.Send(ctx, n.To, n.Subject, n.Body, ""); err != nil {
		return fmt.Errorf("send email to %s: %w", n.To, err)
	}
	return nil
}

// LogGateway only logs; used when MAIL_SEND_ENABLED=false.
type LogGateway struct {
	Logger *logrus.Logger
}

func NewLogGateway(logger *logrus.Logger) *LogGateway {
	return &LogGateway{Logger: logger}
}

func (g *LogGateway) Notify(_ context.Context, n application.Notification) error {
	g.Logger.WithFields(logrus.Fields{
		"to":       n.To,
		"subject":  n.Subject,
		"template": n.Template,
	}).Info("email suppressed (mail sending disabled)")
	return nil
}

var (
	_ application.NotificationGateway = (*QueueGateway)(nil)
	_ application.NotificationGateway = (*MailgunGateway)(nil)
	_ application.NotificationGateway = (*LogGateway)(nil)
	_ Sender                          = (*mailer.Mailgun)(nil)
)
