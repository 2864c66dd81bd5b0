package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/edu-verify/internal/domain/entity"
	"github.com/oksasatya/edu-verify/internal/domain/repository"
)

const (
	uniqueViolation         = "23505"
	verifiedEmailConstraint = "identities_verified_email_unique"
	identityColumns         = `id::text, platform_id, display_name, COALESCE(email, ''), email_verified, pending_code, code_expires_at, verified_at, is_council_member, created_at, updated_at`
)

type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func scanIdentity(row pgx.Row) (*entity.Identity, error) {
	var (
		i          entity.Identity
		verified   bool
		code       *string
		expiresAt  *time.Time
		verifiedAt *time.Time
	)
	if err := row.Scan(&i.ID, &i.PlatformID, &i.DisplayName, &i.Email, &verified, &code, &expiresAt,
		&verifiedAt, &i.IsCouncilMember, &i.CreatedAt, &i.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	switch {
	case verified:
		v := entity.Verified{Email: i.Email}
		if verifiedAt != nil {
			v.VerifiedAt = verifiedAt.UTC()
		}
		i.State = v
	case code != nil && expiresAt != nil:
		i.State = entity.Unverified{Pending: &entity.PendingCode{Code: *code, ExpiresAt: expiresAt.UTC()}}
	default:
		i.State = entity.Unverified{}
	}
	return &i, nil
}

func (r *IdentityRepository) FindByPlatformID(ctx context.Context, platformID string) (*entity.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE platform_id = $1
	`, platformID)
	return scanIdentity(row)
}

func (r *IdentityRepository) FindVerifiedByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE email = $1 AND email_verified
	`, email)
	return scanIdentity(row)
}

// UpsertPending creates or refreshes an unverified row. The conflict branch is
// guarded so a verified row is never reopened.
func (r *IdentityRepository) UpsertPending(ctx context.Context, p repository.PendingRegistration) (*entity.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO identities (platform_id, display_name, email, email_verified, pending_code, code_expires_at)
		VALUES ($1, $2, $3, false, $4, $5)
		ON CONFLICT (platform_id) DO UPDATE
		SET display_name    = EXCLUDED.display_name,
		    email           = EXCLUDED.email,
		    email_verified  = false,
		    pending_code    = EXCLUDED.pending_code,
		    code_expires_at = EXCLUDED.code_expires_at,
		    updated_at      = now()
		WHERE identities.email_verified = false
		RETURNING `+identityColumns, p.PlatformID, p.DisplayName, p.Email, p.Code, p.ExpiresAt)
	i, err := scanIdentity(row)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrAlreadyVerified
	}
	if err != nil {
		return nil, fmt.Errorf("upsert pending: %w", err)
	}
	return i, nil
}

func (r *IdentityRepository) FindPendingMatch(ctx context.Context, platformID, code string) (*entity.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE platform_id = $1 AND pending_code = $2 AND NOT email_verified
	`, platformID, code)
	return scanIdentity(row)
}

func (r *IdentityRepository) ClearPending(ctx context.Context, id, code string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET pending_code = NULL, code_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND pending_code = $2 AND NOT email_verified
	`, id, code)
	if err != nil {
		return fmt.Errorf("clear pending: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkVerified only succeeds while the matched code is still pending, so of two
// concurrent verifications exactly one gets a row back.
func (r *IdentityRepository) MarkVerified(ctx context.Context, id, code string, at time.Time) (*entity.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE identities
		SET email_verified = true, pending_code = NULL, code_expires_at = NULL,
		    verified_at = $3, updated_at = now()
		WHERE id = $1 AND pending_code = $2 AND NOT email_verified
		RETURNING `+identityColumns, id, code, at)
	i, err := scanIdentity(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == verifiedEmailConstraint {
			return nil, repository.ErrEmailTaken
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	return i, nil
}

func (r *IdentityRepository) SetCouncilMember(ctx context.Context, platformID string, council bool) (*entity.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE identities
		SET is_council_member = $2, updated_at = now()
		WHERE platform_id = $1
		RETURNING `+identityColumns, platformID, council)
	return scanIdentity(row)
}

var _ repository.UserStore = (*IdentityRepository)(nil)
