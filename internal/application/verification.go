package application

import (
	"context"
	"errors"
	"strings"

	repo "github.com/oksasatya/edu-verify/internal/domain/repository"
)

// Verify consumes a submitted code. Wrong code, no pending verification and already
// verified all produce InvalidCode so callers cannot tell them apart.
func (s *Service) Verify(ctx context.Context, platformID, code string) Outcome {
	const op = "verify"
	log := s.entry(op, platformID)
	base := Outcome{PlatformID: platformID}

	code = strings.TrimSpace(code)
	if code == "" {
		return s.finish(ctx, op, log, with(base, OutcomeInvalidCode))
	}

	rec, err := s.Store.FindPendingMatch(ctx, platformID, code)
	if errors.Is(err, repo.ErrNotFound) {
		return s.finish(ctx, op, log, with(base, OutcomeInvalidCode))
	}
	if err != nil {
		return s.internal(ctx, op, log, platformID, err)
	}
	pending, ok := rec.Pending()
	if !ok || pending.Code != code {
		return s.finish(ctx, op, log, with(base, OutcomeInvalidCode))
	}
	base.Email = rec.Email

	now := s.now()
	if pending.Expired(now) {
		// ErrNotFound here means a newer code replaced this one; the attempt is still expired.
		if err := s.Store.ClearPending(ctx, rec.ID, code); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return s.internal(ctx, op, log, platformID, err)
		}
		base.ExpiresAt = pending.ExpiresAt
		return s.finish(ctx, op, log, with(base, OutcomeExpired))
	}

	verified, err := s.Store.MarkVerified(ctx, rec.ID, code, now)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return s.finish(ctx, op, log, with(base, OutcomeInvalidCode))
	case errors.Is(err, repo.ErrEmailTaken):
		return s.finish(ctx, op, log, with(base, OutcomeEmailTaken))
	case err != nil:
		return s.internal(ctx, op, log, platformID, err)
	}

	s.index(ctx, verified)
	base.Email = verified.Email
	base.VerifiedAt = verified.VerifiedAt()
	return s.finish(ctx, op, log, with(base, OutcomeVerified))
}

// BeginInteractiveVerify opens the two-step form. Only the identity that owns the
// pending verification may open it; nothing is consumed when it is refused.
func (s *Service) BeginInteractiveVerify(ctx context.Context, platformID, requesterID string) Outcome {
	const op = "verify_begin"
	log := s.entry(op, platformID).WithField("requester_id", requesterID)
	base := Outcome{PlatformID: platformID}

	if platformID == "" || platformID != requesterID {
		return s.finish(ctx, op, log, with(base, OutcomeNotAuthorized))
	}
	ticket, err := s.Tickets.Issue(ctx, platformID, s.settings.TicketTTL)
	if err != nil {
		return s.internal(ctx, op, log, platformID, err)
	}
	base.Ticket = ticket
	base.ExpiresAt = s.now().Add(s.settings.TicketTTL)
	return s.finish(ctx, op, log, with(base, OutcomeFormOpened))
}

// SubmitInteractiveVerify completes the two-step form and defers to Verify.
func (s *Service) SubmitInteractiveVerify(ctx context.Context, ticket, requesterID, code string) Outcome {
	const op = "verify_submit"
	log := s.entry(op, requesterID)

	platformID, err := s.Tickets.Resolve(ctx, ticket)
	if errors.Is(err, repo.ErrNotFound) {
		return s.finish(ctx, op, log, Outcome{Kind: OutcomeNotAuthorized, PlatformID: requesterID})
	}
	if err != nil {
		return s.internal(ctx, op, log, requesterID, err)
	}
	if platformID != requesterID {
		return s.finish(ctx, op, log, Outcome{Kind: OutcomeNotAuthorized, PlatformID: requesterID})
	}

	o := s.Verify(ctx, platformID, code)
	if o.Kind == OutcomeVerified || o.Kind == OutcomeExpired {
		if err := s.Tickets.Release(ctx, ticket); err != nil {
			log.WithError(err).Warn("ticket release failed")
		}
	}
	return o
}
