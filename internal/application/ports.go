package application

import (
	"context"
	"time"

	"github.com/oksasatya/edu-verify/internal/domain/entity"
)

// VerificationMessage is everything a Notifier needs to deliver a code.
type VerificationMessage struct {
	Email       string
	DisplayName string
	Code        string
	ExpiresAt   time.Time
}

// Notifier delivers verification codes out-of-band. A nil error means the message
// was accepted for delivery; there is no delivery confirmation.
type Notifier interface {
	SendVerificationCode(ctx context.Context, msg VerificationMessage) error
}

// TicketStore binds short-lived interactive verification tickets to a platform identity.
// Resolve returns repository.ErrNotFound for unknown or expired tickets.
type TicketStore interface {
	Issue(ctx context.Context, platformID string, ttl time.Duration) (string, error)
	Resolve(ctx context.Context, ticket string) (string, error)
	Release(ctx context.Context, ticket string) error
}

// DirectoryEntry is a verified member as returned by directory search.
type DirectoryEntry struct {
	PlatformID  string    `json:"platform_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Council     bool      `json:"council"`
	VerifiedAt  time.Time `json:"verified_at"`
}

// Directory indexes verified identities for lookup by council members.
type Directory interface {
	Index(ctx context.Context, i *entity.Identity) error
	Search(ctx context.Context, q string, size int) ([]DirectoryEntry, error)
}
