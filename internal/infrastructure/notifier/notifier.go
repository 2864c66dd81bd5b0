// Package notifier holds the Notifier adapters: a RabbitMQ queue feeding the email
// worker, a direct Mailgun sender, and a log-only sink for local runs.
package notifier

import (
	"time"

	"github.com/oksasatya/edu-verify/config"
	"github.com/oksasatya/edu-verify/internal/application"
	"github.com/oksasatya/edu-verify/pkg/mailer"
	mailtpl "github.com/oksasatya/edu-verify/pkg/mailer/templates"
)

// verificationJob builds the templated email job for a verification code.
func verificationJob(cfg *config.Config, msg application.VerificationMessage) mailer.EmailJob {
	data := mailtpl.NewVerificationCodeData(cfg, msg.DisplayName, msg.Email, msg.Code,
		mailtpl.WithExpiresAt(msg.ExpiresAt),
		mailtpl.WithTime(time.Now()),
	)
	return mailer.EmailJob{
		To:       msg.Email,
		Template: mailtpl.VerificationCode,
		Data:     data,
	}
}
