package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"go-portfolio-site/config"
	"go-portfolio-site/internal/domain"
	"go-portfolio-site/pkg/clock"
	"go-portfolio-site/pkg/email"
)

const timestampLayout = "January 2, 2006 at 3:04 PM MST"

// DispatcherConfig carries the addresses and owner details used to build notifications.
type DispatcherConfig struct {
	SenderEmail  string
	SenderName   string
	OwnerEmail   string
	OwnerName    string
	OwnerRole    string
	GitHubURL    string
	LinkedInURL  string
	Location     *time.Location
	RelayTimeout time.Duration
}

// NewDispatcherConfig maps the application configuration onto DispatcherConfig
func NewDispatcherConfig(cfg *config.Config) DispatcherConfig {
	return DispatcherConfig{
		SenderEmail:  cfg.SMTPFromEmail,
		SenderName:   cfg.ContactFromName,
		OwnerEmail:   cfg.OwnerEmail,
		OwnerName:    cfg.OwnerName,
		OwnerRole:    cfg.OwnerRole,
		GitHubURL:    cfg.OwnerGitHubURL,
		LinkedInURL:  cfg.OwnerLinkedInURL,
		Location:     cfg.Location(),
		RelayTimeout: cfg.RelayTimeout,
	}
}

type notificationDispatcher struct {
	relay domain.Relay
	cfg   DispatcherConfig
	clock clock.Clocker
}

// NewNotificationDispatcher creates a dispatcher that sends both messages through relay
func NewNotificationDispatcher(relay domain.Relay, cfg DispatcherConfig, clk clock.Clocker) domain.Dispatcher {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if clk == nil {
		clk = clock.New()
	}
	return &notificationDispatcher{
		relay: relay,
		cfg:   cfg,
		clock: clk,
	}
}

// Dispatch sends the owner notification, then the acknowledgment. The first
// relay failure aborts; the report says which messages were accepted.
func (d *notificationDispatcher) Dispatch(ctx context.Context, sub domain.SanitizedSubmission) (domain.DispatchReport, error) {
	var report domain.DispatchReport
	now := d.clock.Now().In(d.cfg.Location)

	owner, err := d.ownerNotification(sub, now)
	if err != nil {
		return report, &domain.DispatchError{Stage: domain.StageCompose, Err: err}
	}
	ack, err := d.acknowledgment(sub, now)
	if err != nil {
		return report, &domain.DispatchError{Stage: domain.StageCompose, Err: err}
	}

	if err := d.submit(ctx, owner); err != nil {
		return report, &domain.DispatchError{Stage: domain.StageOwnerNotification, Err: err}
	}
	report.OwnerNotified = true

	if err := d.submit(ctx, ack); err != nil {
		return report, &domain.DispatchError{Stage: domain.StageSenderAcknowledgment, Err: err}
	}
	report.AcknowledgementSent = true

	return report, nil
}

// submit bounds a single relay call. No retry: a resend could duplicate the owner notification.
func (d *notificationDispatcher) submit(ctx context.Context, msg domain.NotificationMessage) error {
	if d.cfg.RelayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.RelayTimeout)
		defer cancel()
	}
	return d.relay.Submit(ctx, msg)
}

func (d *notificationDispatcher) ownerNotification(sub domain.SanitizedSubmission, now time.Time) (domain.NotificationMessage, error) {
	text, html, err := email.RenderOwnerNotification(email.OwnerNotificationData{
		Name:      sub.Name(),
		Email:     sub.Email(),
		Subject:   sub.Subject(),
		Message:   sub.Message(),
		Timestamp: now.Format(timestampLayout),
	})
	if err != nil {
		return domain.NotificationMessage{}, fmt.Errorf("owner notification: %w", err)
	}

	return domain.NotificationMessage{
		Kind:    domain.KindOwnerNotification,
		From:    mail.Address{Name: d.cfg.SenderName, Address: d.cfg.SenderEmail},
		To:      mail.Address{Name: d.cfg.OwnerName, Address: d.cfg.OwnerEmail},
		ReplyTo: mail.Address{Name: sub.Name(), Address: sub.Email()},
		Subject: "New portfolio message: " + sub.Subject(),
		Fields: []domain.LabeledField{
			{Label: "Name", Value: sub.Name()},
			{Label: "Email", Value: sub.Email()},
			{Label: "Subject", Value: sub.Subject()},
			{Label: "Message", Value: sub.Message()},
		},
		Timestamp: now,
		TextBody:  text,
		HTMLBody:  html,
	}, nil
}

func (d *notificationDispatcher) acknowledgment(sub domain.SanitizedSubmission, now time.Time) (domain.NotificationMessage, error) {
	text, html, err := email.RenderAcknowledgment(email.AcknowledgmentData{
		Name:        sub.Name(),
		Message:     sub.Message(),
		OwnerName:   d.cfg.OwnerName,
		OwnerRole:   d.cfg.OwnerRole,
		GitHubURL:   d.cfg.GitHubURL,
		LinkedInURL: d.cfg.LinkedInURL,
		Year:        now.Year(),
	})
	if err != nil {
		return domain.NotificationMessage{}, fmt.Errorf("acknowledgment: %w", err)
	}

	return domain.NotificationMessage{
		Kind:    domain.KindSenderAcknowledgment,
		From:    mail.Address{Name: d.cfg.OwnerName, Address: d.cfg.SenderEmail},
		To:      mail.Address{Name: sub.Name(), Address: sub.Email()},
		ReplyTo: mail.Address{Name: d.cfg.OwnerName, Address: d.cfg.OwnerEmail},
		Subject: "Thanks for your message - " + d.cfg.OwnerName,
		Fields: []domain.LabeledField{
			{Label: "Name", Value: sub.Name()},
			{Label: "Message", Value: sub.Message()},
		},
		Timestamp: now,
		TextBody:  text,
		HTMLBody:  html,
	}, nil
}
