package entity

import (
	"time"
)

// Identity is the aggregate root binding a chat-platform identity to a campus email.
// PlatformID is the only lookup key and never changes once the row exists.
type Identity struct {
	ID              string
	PlatformID      string
	DisplayName     string
	Email           string
	State           VerificationState
	IsCouncilMember bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VerificationState is either Unverified or Verified.
type VerificationState interface {
	isVerificationState()
}

// PendingCode is an issued one-time code and the instant it stops being accepted.
type PendingCode struct {
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether the code can no longer be used at now.
// A code submitted exactly at ExpiresAt is expired.
func (p PendingCode) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

type Unverified struct {
	Pending *PendingCode
}

type Verified struct {
	Email      string
	VerifiedAt time.Time
}

func (Unverified) isVerificationState() {}
func (Verified) isVerificationState()   {}

// Status is the coarse position of an identity in the verification lifecycle.
type Status string

const (
	StatusUnregistered        Status = "unregistered"
	StatusNoPending           Status = "no_pending"
	StatusPendingVerification Status = "pending_verification"
	StatusVerified            Status = "verified"
)

// Status derives the lifecycle status. A nil identity is unregistered.
func (i *Identity) Status() Status {
	if i == nil {
		return StatusUnregistered
	}
	switch s := i.State.(type) {
	case Verified:
		return StatusVerified
	case Unverified:
		if s.Pending != nil {
			return StatusPendingVerification
		}
	}
	return StatusNoPending
}

func (i *Identity) IsVerified() bool {
	_, ok := i.State.(Verified)
	return ok
}

// Pending returns the outstanding code, if any.
func (i *Identity) Pending() (PendingCode, bool) {
	if u, ok := i.State.(Unverified); ok && u.Pending != nil {
		return *u.Pending, true
	}
	return PendingCode{}, false
}

// VerifiedAt returns when the identity was verified, zero when it is not.
func (i *Identity) VerifiedAt() time.Time {
	if v, ok := i.State.(Verified); ok {
		return v.VerifiedAt
	}
	return time.Time{}
}
