package templates

import (
	"time"

	"github.com/oksasatya/edu-verify/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// WithExpiresAt sets the absolute expiry and the whole minutes left from now.
func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
		if mins := int(time.Until(utc).Round(time.Minute) / time.Minute); mins > 0 {
			d.ExpiresInMinutes = mins
		}
	}
}

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		WithExpiresAt(time.Now().Add(dur))(d)
		d.ExpiresInMinutes = int(dur / time.Minute)
	}
}

func WithVerifyCommand(cmd string) Option {
	return func(d *EmailData) { d.VerifyCommand = cmd }
}

// NewBaseEmailData fills the common fields from config, then applies options
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		ClubName:       cfg.ClubName,
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:    cfg.LogoURL,
		SupportURL: cfg.SupportURL,
		PrivacyURL: cfg.PrivacyURL,

		VerifyCommand: "/verify",
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewVerificationCodeData(cfg *config.Config, name, email, code string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, VerificationCode, name, email, opts...)
	d.Code = code
	return ToMap(d)
}
