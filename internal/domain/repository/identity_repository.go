package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/edu-verify/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches a lookup or a conditional write lost its race.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyVerified is returned by UpsertPending when the identity row is already verified.
	ErrAlreadyVerified = errors.New("identity already verified")
	// ErrEmailTaken is returned when a write would give two verified rows the same email.
	ErrEmailTaken = errors.New("email already verified by another identity")
)

// PendingRegistration carries the fields written by UpsertPending.
type PendingRegistration struct {
	PlatformID  string
	DisplayName string
	Email       string
	Code        string
	ExpiresAt   time.Time
}

// UserStore defines the persistence operations the verification flows depend on.
//
// Implementations must apply every write atomically to its row. ClearPending and
// MarkVerified are compare-and-set on (id, code, unverified) so that concurrent
// verifications of the same code have exactly one winner.
type UserStore interface {
	FindByPlatformID(ctx context.Context, platformID string) (*entity.Identity, error)
	FindVerifiedByEmail(ctx context.Context, email string) (*entity.Identity, error)
	UpsertPending(ctx context.Context, p PendingRegistration) (*entity.Identity, error)
	FindPendingMatch(ctx context.Context, platformID, code string) (*entity.Identity, error)
	ClearPending(ctx context.Context, id, code string) error
	MarkVerified(ctx context.Context, id, code string, at time.Time) (*entity.Identity, error)
	SetCouncilMember(ctx context.Context, platformID string, council bool) (*entity.Identity, error)
}

// ProjectStatsReader counts project associations shown alongside an already verified identity.
type ProjectStatsReader interface {
	ProjectStats(ctx context.Context, platformID string) (entity.ProjectStats, error)
}

// AuditEntry is one row of the verification audit trail.
type AuditEntry struct {
	PlatformID string
	Email      string
	Action     string
	Metadata   map[string]any
}

// AuditLog records terminal outcomes of the flows.
type AuditLog interface {
	Record(ctx context.Context, e AuditEntry) error
}
