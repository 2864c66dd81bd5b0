package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/edu-verify/internal/domain/entity"
	"github.com/oksasatya/edu-verify/internal/domain/repository"
)

// IdentityRepository is a process-local UserStore. The mutex plays the role of the
// row lock a database would take, so every method is one atomic step.
type IdentityRepository struct {
	mu   sync.Mutex
	rows map[string]*entity.Identity // keyed by platform id
	now  func() time.Time
}

func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{rows: map[string]*entity.Identity{}, now: time.Now}
}

// SetClock replaces the clock used for created/updated timestamps.
func (r *IdentityRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func clone(i *entity.Identity) *entity.Identity {
	c := *i
	if u, ok := i.State.(entity.Unverified); ok && u.Pending != nil {
		p := *u.Pending
		c.State = entity.Unverified{Pending: &p}
	}
	return &c
}

func (r *IdentityRepository) byID(id string) *entity.Identity {
	for _, row := range r.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func (r *IdentityRepository) FindByPlatformID(ctx context.Context, platformID string) (*entity.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[platformID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(row), nil
}

func (r *IdentityRepository) FindVerifiedByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.IsVerified() && row.Email == email {
			return clone(row), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *IdentityRepository) UpsertPending(ctx context.Context, p repository.PendingRegistration) (*entity.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	pending := &entity.PendingCode{Code: p.Code, ExpiresAt: p.ExpiresAt}
	row, ok := r.rows[p.PlatformID]
	if !ok {
		row = &entity.Identity{
			ID:         uuid.NewString(),
			PlatformID: p.PlatformID,
			CreatedAt:  now,
		}
		r.rows[p.PlatformID] = row
	} else if row.IsVerified() {
		return nil, repository.ErrAlreadyVerified
	}
	row.DisplayName = p.DisplayName
	row.Email = p.Email
	row.State = entity.Unverified{Pending: pending}
	row.UpdatedAt = now
	return clone(row), nil
}

func (r *IdentityRepository) FindPendingMatch(ctx context.Context, platformID, code string) (*entity.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[platformID]
	if !ok || !pendingIs(row, code) {
		return nil, repository.ErrNotFound
	}
	return clone(row), nil
}

func (r *IdentityRepository) ClearPending(ctx context.Context, id, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.byID(id)
	if row == nil || !pendingIs(row, code) {
		return repository.ErrNotFound
	}
	row.State = entity.Unverified{}
	row.UpdatedAt = r.now().UTC()
	return nil
}

func (r *IdentityRepository) MarkVerified(ctx context.Context, id, code string, at time.Time) (*entity.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.byID(id)
	if row == nil || !pendingIs(row, code) {
		return nil, repository.ErrNotFound
	}
	// partial unique index on verified emails
	for _, other := range r.rows {
		if other != row && other.IsVerified() && other.Email == row.Email {
			return nil, repository.ErrEmailTaken
		}
	}
	row.State = entity.Verified{Email: row.Email, VerifiedAt: at.UTC()}
	row.UpdatedAt = r.now().UTC()
	return clone(row), nil
}

func (r *IdentityRepository) SetCouncilMember(ctx context.Context, platformID string, council bool) (*entity.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[platformID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	row.IsCouncilMember = council
	row.UpdatedAt = r.now().UTC()
	return clone(row), nil
}

// Put stores an identity as-is. Used by seeding and tests.
func (r *IdentityRepository) Put(i entity.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	i.Email = strings.ToLower(i.Email)
	if i.State == nil {
		i.State = entity.Unverified{}
	}
	r.rows[i.PlatformID] = clone(&i)
}

func pendingIs(row *entity.Identity, code string) bool {
	p, ok := row.Pending()
	return ok && code != "" && p.Code == code
}

var _ repository.UserStore = (*IdentityRepository)(nil)
