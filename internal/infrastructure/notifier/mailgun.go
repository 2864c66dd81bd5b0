package notifier

import (
	"context"

	"github.com/oksasatya/edu-verify/config"
	"github.com/oksasatya/edu-verify/internal/application"
	"github.com/oksasatya/edu-verify/pkg/helpers"
)

// Sender is satisfied by mailer.Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun renders and sends the verification email in-request.
type Mailgun struct {
	sender Sender
	cfg    *config.Config
}

// NewMailgun fails fast when the sender is not configured.
func NewMailgun(sender Sender, cfg *config.Config) (*Mailgun, error) {
	if v, ok := sender.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &Mailgun{sender: sender, cfg: cfg}, nil
}

func (m *Mailgun) SendVerificationCode(ctx context.Context, msg application.VerificationMessage) error {
	job := verificationJob(m.cfg, msg)
	if err := helpers.RenderJob(&job); err != nil {
		return err
	}
	return m.sender.Send(ctx, job.To, job.Subject, job.Text, job.HTML)
}

var _ application.Notifier = (*Mailgun)(nil)
