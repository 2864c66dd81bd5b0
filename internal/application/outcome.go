package application

import (
	"time"

	"github.com/oksasatya/edu-verify/internal/domain/entity"
)

// OutcomeKind names the single terminal result of a flow invocation.
type OutcomeKind string

const (
	OutcomeCodeSent           OutcomeKind = "code_sent"
	OutcomeAlreadyVerified    OutcomeKind = "already_verified"
	OutcomeInvalidFormat      OutcomeKind = "invalid_format"
	OutcomeWrongDomain        OutcomeKind = "wrong_domain"
	OutcomeEmailTaken         OutcomeKind = "email_taken"
	OutcomeNotificationFailed OutcomeKind = "notification_failed"
	OutcomeInvalidCode        OutcomeKind = "invalid_code"
	OutcomeExpired            OutcomeKind = "expired"
	OutcomeVerified           OutcomeKind = "verified"
	OutcomeNotAuthorized      OutcomeKind = "not_authorized"
	OutcomeFormOpened         OutcomeKind = "form_opened"
	OutcomeInternalError      OutcomeKind = "internal_error"
)

// Outcome is what a presentation adapter renders. Only the fields relevant to Kind are set.
type Outcome struct {
	Kind       OutcomeKind
	PlatformID string

	// Email is the stored email for AlreadyVerified/Verified and the submitted one otherwise.
	Email string
	// SubmittedEmail and EmailMismatch are informational for AlreadyVerified.
	SubmittedEmail string
	EmailMismatch  bool

	ExpiresAt    time.Time
	VerifiedAt   time.Time
	RegisteredAt time.Time
	Projects     entity.ProjectStats

	// Ticket identifies an opened interactive verification form.
	Ticket string
}

// Success reports whether the outcome moved the caller forward.
func (o Outcome) Success() bool {
	switch o.Kind {
	case OutcomeCodeSent, OutcomeVerified, OutcomeFormOpened, OutcomeAlreadyVerified:
		return true
	}
	return false
}
