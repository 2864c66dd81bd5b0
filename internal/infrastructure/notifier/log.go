package notifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edu-verify/internal/application"
)

// Log writes the code to the logger instead of sending mail. Used when
// MAIL_SEND_ENABLED=false so local runs can still complete verification.
type Log struct {
	logger *logrus.Logger
}

func NewLog(logger *logrus.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SendVerificationCode(_ context.Context, msg application.VerificationMessage) error {
	l.logger.WithFields(logrus.Fields{
		"to":         msg.Email,
		"code":       msg.Code,
		"expires_at": msg.ExpiresAt,
	}).Warn("mail sending disabled; verification code logged")
	return nil
}

var _ application.Notifier = (*Log)(nil)
