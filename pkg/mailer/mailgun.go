package mailer

import (
	"context"
	"errors"
	"strings"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

var ErrMailgunConfig = errors.New("mailgun: domain, api key and sender are required")

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain  string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender, Timeout: 10 * time.Second}
}

// Validate reports missing settings before the first send attempt.
func (m *Mailgun) Validate() error {
	if m == nil || strings.TrimSpace(m.Domain) == "" || strings.TrimSpace(m.APIKey) == "" || strings.TrimSpace(m.Sender) == "" {
		return ErrMailgunConfig
	}
	return nil
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	client := mg.NewMailgun(m.Domain, m.APIKey)
	msg := client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}
