package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/edu-verify/internal/domain/repository"
)

type AuditLog struct {
	pool *pgxpool.Pool
}

func NewAuditLog(pool *pgxpool.Pool) *AuditLog {
	return &AuditLog{pool: pool}
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func (a *AuditLog) Record(ctx context.Context, e repository.AuditEntry) error {
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}
	md, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	_, err = a.pool.Exec(ctx, `
		INSERT INTO audit_logs (platform_id, email, action, metadata)
		VALUES ($1, $2, $3, $4)
	`, text(e.PlatformID), text(e.Email), e.Action, md)
	return err
}

var _ repository.AuditLog = (*AuditLog)(nil)
