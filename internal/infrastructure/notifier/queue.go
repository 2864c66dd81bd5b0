package notifier

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edu-verify/config"
	"github.com/oksasatya/edu-verify/internal/application"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Queue hands verification emails to the email worker through RabbitMQ.
// Success means the broker accepted the job, not that the mail was delivered.
type Queue struct {
	pub    Publisher
	cfg    *config.Config
	logger *logrus.Logger
}

func NewQueue(pub Publisher, cfg *config.Config, logger *logrus.Logger) *Queue {
	return &Queue{pub: pub, cfg: cfg, logger: logger}
}

func (q *Queue) SendVerificationCode(ctx context.Context, msg application.VerificationMessage) error {
	if q.pub == nil {
		return errors.New("email queue unavailable")
	}
	job := verificationJob(q.cfg, msg)
	if err := q.pub.PublishJSON(ctx, job); err != nil {
		return err
	}
	if q.logger != nil {
		q.logger.WithFields(logrus.Fields{"to": msg.Email, "template": job.Template}).Debug("verification email queued")
	}
	return nil
}

var _ application.Notifier = (*Queue)(nil)
