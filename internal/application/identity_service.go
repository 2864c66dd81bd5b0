package application

import (
	"context"
	"errors"
	"expvar"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edu-verify/internal/domain/entity"
	repo "github.com/oksasatya/edu-verify/internal/domain/repository"
	"github.com/oksasatya/edu-verify/pkg/helpers"
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrDirectoryOff     = errors.New("directory not configured")
)

// outcomeCounts is published under /debug/vars.
var outcomeCounts = expvar.NewMap("verification_outcomes")

const (
	DefaultDomainSuffix = ".edu"
	DefaultCodeTTL      = 15 * time.Minute
)

// Settings are the policy knobs of the flows.
type Settings struct {
	DomainSuffix string
	CodeTTL      time.Duration
	TicketTTL    time.Duration
}

// Service implements registration and verification. It keeps no mutable state of its
// own; every decision is made against the UserStore.
type Service struct {
	Store    repo.UserStore
	Notifier Notifier
	Tickets  TicketStore
	Codes    CodeGenerator
	Logger   *logrus.Logger

	// Optional collaborators.
	Stats     repo.ProjectStatsReader
	Audit     repo.AuditLog
	Directory Directory

	// Now is the clock; tests replace it.
	Now func() time.Time

	settings Settings
}

func NewService(store repo.UserStore, notifier Notifier, tickets TicketStore, logger *logrus.Logger, settings Settings) *Service {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	if settings.DomainSuffix == "" {
		settings.DomainSuffix = DefaultDomainSuffix
	}
	settings.DomainSuffix = strings.ToLower(settings.DomainSuffix)
	if settings.CodeTTL <= 0 {
		settings.CodeTTL = DefaultCodeTTL
	}
	if settings.TicketTTL <= 0 {
		settings.TicketTTL = settings.CodeTTL
	}
	return &Service{
		Store:    store,
		Notifier: notifier,
		Tickets:  tickets,
		Codes:    DefaultCodeGenerator,
		Logger:   logger,
		Now:      time.Now,
		settings: settings,
	}
}

func (s *Service) now() time.Time { return s.Now().UTC() }

func (s *Service) entry(op, platformID string) *logrus.Entry {
	return s.Logger.WithFields(logrus.Fields{"op": op, "platform_id": platformID})
}

// finish is the single exit of every flow: it counts, logs and audits the outcome.
func (s *Service) finish(ctx context.Context, op string, log *logrus.Entry, o Outcome) Outcome {
	outcomeCounts.Add(string(o.Kind), 1)
	log = log.WithField("outcome", o.Kind)
	if o.Kind == OutcomeInternalError {
		log.Error("flow failed")
	} else {
		log.Info("flow finished")
	}
	if s.Audit != nil && o.Kind != OutcomeInternalError {
		meta := map[string]any{}
		if o.EmailMismatch {
			meta["submitted_email"] = o.SubmittedEmail
		}
		if err := s.Audit.Record(ctx, repo.AuditEntry{
			PlatformID: o.PlatformID,
			Email:      o.Email,
			Action:     op + "_" + string(o.Kind),
			Metadata:   meta,
		}); err != nil {
			log.WithError(err).Warn("audit record failed")
		}
	}
	return o
}

func (s *Service) internal(ctx context.Context, op string, log *logrus.Entry, platformID string, err error) Outcome {
	return s.finish(ctx, op, log.WithError(err), Outcome{Kind: OutcomeInternalError, PlatformID: platformID})
}

// GetIdentity returns an identity with its project counts.
func (s *Service) GetIdentity(ctx context.Context, platformID string) (*entity.Identity, entity.ProjectStats, error) {
	i, err := s.Store.FindByPlatformID(ctx, platformID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, entity.ProjectStats{}, ErrIdentityNotFound
	}
	if err != nil {
		return nil, entity.ProjectStats{}, err
	}
	return i, s.projectStats(ctx, platformID), nil
}

// SetCouncilMember toggles the council flag and refreshes the directory entry.
func (s *Service) SetCouncilMember(ctx context.Context, platformID string, council bool) (*entity.Identity, error) {
	i, err := s.Store.SetCouncilMember(ctx, platformID, council)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	s.entry("set_council", platformID).WithField("council", council).Info("council flag updated")
	s.index(ctx, i)
	return i, nil
}

// SearchDirectory searches verified members.
func (s *Service) SearchDirectory(ctx context.Context, q string, size int) ([]DirectoryEntry, error) {
	if s.Directory == nil {
		return nil, ErrDirectoryOff
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Directory.Search(ctx, q, size)
}

func (s *Service) projectStats(ctx context.Context, platformID string) entity.ProjectStats {
	if s.Stats == nil {
		return entity.ProjectStats{}
	}
	st, err := s.Stats.ProjectStats(ctx, platformID)
	if err != nil {
		s.entry("project_stats", platformID).WithError(err).Warn("project stats unavailable")
		return entity.ProjectStats{}
	}
	return st
}

func (s *Service) index(ctx context.Context, i *entity.Identity) {
	if s.Directory == nil || i == nil || !i.IsVerified() {
		return
	}
	if err := s.Directory.Index(ctx, i); err != nil {
		s.entry("directory_index", i.PlatformID).WithError(err).Warn("directory index failed")
	}
}
