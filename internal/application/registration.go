package application

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edu-verify/internal/domain/entity"
	repo "github.com/oksasatya/edu-verify/internal/domain/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail lowercases and trims a user supplied address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

type RegisterInput struct {
	PlatformID  string
	DisplayName string
	Email       string
}

// Register validates the address, issues a fresh code and hands it to the Notifier.
// Calling it again for the same identity replaces the pending code.
func (s *Service) Register(ctx context.Context, in RegisterInput) Outcome {
	const op = "register"
	log := s.entry(op, in.PlatformID)
	email := NormalizeEmail(in.Email)
	base := Outcome{PlatformID: in.PlatformID, Email: email}

	if !emailPattern.MatchString(email) {
		return s.finish(ctx, op, log, with(base, OutcomeInvalidFormat))
	}
	if !strings.HasSuffix(email, s.settings.DomainSuffix) {
		return s.finish(ctx, op, log, with(base, OutcomeWrongDomain))
	}

	existing, err := s.Store.FindByPlatformID(ctx, in.PlatformID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return s.internal(ctx, op, log, in.PlatformID, err)
	}
	if existing != nil && existing.IsVerified() {
		return s.alreadyVerified(ctx, op, log, existing, email)
	}

	holder, err := s.Store.FindVerifiedByEmail(ctx, email)
	switch {
	case err == nil && holder.PlatformID == in.PlatformID:
		return s.alreadyVerified(ctx, op, log, holder, email)
	case err == nil:
		return s.finish(ctx, op, log, with(base, OutcomeEmailTaken))
	case !errors.Is(err, repo.ErrNotFound):
		return s.internal(ctx, op, log, in.PlatformID, err)
	}

	code, err := s.Codes.Generate()
	if err != nil {
		return s.internal(ctx, op, log, in.PlatformID, err)
	}
	expiresAt := s.now().Add(s.settings.CodeTTL)

	_, err = s.Store.UpsertPending(ctx, repo.PendingRegistration{
		PlatformID:  in.PlatformID,
		DisplayName: in.DisplayName,
		Email:       email,
		Code:        code,
		ExpiresAt:   expiresAt,
	})
	if errors.Is(err, repo.ErrAlreadyVerified) {
		// verified between our read and write
		current, ferr := s.Store.FindByPlatformID(ctx, in.PlatformID)
		if ferr != nil {
			return s.internal(ctx, op, log, in.PlatformID, ferr)
		}
		return s.alreadyVerified(ctx, op, log, current, email)
	}
	if err != nil {
		return s.internal(ctx, op, log, in.PlatformID, err)
	}

	base.ExpiresAt = expiresAt
	// The pending code stays persisted when delivery fails: a later /register or a
	// previously delivered code both remain valid ways forward.
	if err := s.Notifier.SendVerificationCode(ctx, VerificationMessage{
		Email:       email,
		DisplayName: in.DisplayName,
		Code:        code,
		ExpiresAt:   expiresAt,
	}); err != nil {
		return s.finish(ctx, op, log.WithError(err), with(base, OutcomeNotificationFailed))
	}
	return s.finish(ctx, op, log, with(base, OutcomeCodeSent))
}

func (s *Service) alreadyVerified(ctx context.Context, op string, log *logrus.Entry, i *entity.Identity, submitted string) Outcome {
	o := Outcome{
		Kind:           OutcomeAlreadyVerified,
		PlatformID:     i.PlatformID,
		Email:          i.Email,
		SubmittedEmail: submitted,
		EmailMismatch:  submitted != i.Email,
		RegisteredAt:   i.CreatedAt,
		VerifiedAt:     i.VerifiedAt(),
		Projects:       s.projectStats(ctx, i.PlatformID),
	}
	return s.finish(ctx, op, log, o)
}

func with(o Outcome, k OutcomeKind) Outcome {
	o.Kind = k
	return o
}
