// Package mailer delivers export artifacts as email attachments through SendGrid.
package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ademuri/lastfm-dashboard/internal/export"
)

const senderName = "lastfm-dashboard"

// Sender is the part of the SendGrid client the mailer uses.
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type Config struct {
	APIKey string
	From   string
	// DryRun logs the message instead of sending it.
	DryRun bool
}

type Mailer struct {
	sender Sender
	from   *mail.Email
	dryRun bool
	logger zerolog.Logger
}

var ErrNoAPIKey = errors.New("sendgrid_api_key must be set in order to send emails")

func New(config Config, logger zerolog.Logger) (*Mailer, error) {
	if config.From == "" {
		return nil, errors.New(`required flag(s) "from" not set`)
	}
	if config.APIKey == "" && !config.DryRun {
		return nil, ErrNoAPIKey
	}
	return &Mailer{
		sender: sendgrid.NewSendClient(config.APIKey),
		from:   mail.NewEmail(senderName, config.From),
		dryRun: config.DryRun,
		logger: logger,
	}, nil
}

// BuildMessage composes the email carrying a as an attachment.
func BuildMessage(from *mail.Email, to, user string, a *export.Artifact) *mail.SGMailV3 {
	subject := fmt.Sprintf("Last.fm data export for %s", user)
	body := fmt.Sprintf("Attached is the Last.fm listening data for %s (%s).", user, a.Filename)
	message := mail.NewV3MailInit(from, subject, mail.NewEmail(to, to), mail.NewContent("text/plain", body))

	attachment := mail.NewAttachment().
		SetContent(base64.StdEncoding.EncodeToString(a.Data)).
		SetType(a.MIME).
		SetFilename(a.Filename).
		SetDisposition("attachment")
	return message.AddAttachment(attachment)
}

// Send mails a to the address to.
func (m *Mailer) Send(ctx context.Context, to, user string, a *export.Artifact) error {
	message := BuildMessage(m.from, to, user, a)
	log := m.logger.With().Str("to", to).Str("file", a.Filename).Int("bytes", len(a.Data)).Logger()

	if m.dryRun {
		log.Info().Msg("dry run, not sending email")
		return nil
	}

	resp, err := m.sender.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sending email: sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	log.Info().Int("status", resp.StatusCode).Msg("sent export")
	return nil
}
