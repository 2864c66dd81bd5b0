package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/edu-verify/internal/domain/entity"
	"github.com/oksasatya/edu-verify/internal/domain/repository"
)

type ProjectStatsRepository struct {
	pool *pgxpool.Pool
}

func NewProjectStatsRepository(pool *pgxpool.Pool) *ProjectStatsRepository {
	return &ProjectStatsRepository{pool: pool}
}

// ProjectStats counts distinct projects an identity is assigned to and leads.
// An unknown identity has zero of both.
func (r *ProjectStatsRepository) ProjectStats(ctx context.Context, platformID string) (entity.ProjectStats, error) {
	var st entity.ProjectStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT pm.project_id) FILTER (WHERE pm.role = 'member'),
			COUNT(DISTINCT pm.project_id) FILTER (WHERE pm.role = 'lead')
		FROM identities i
		LEFT JOIN project_members pm ON pm.identity_id = i.id
		WHERE i.platform_id = $1
	`, platformID).Scan(&st.Assigned, &st.Led)
	if err != nil {
		return entity.ProjectStats{}, err
	}
	return st, nil
}

var _ repository.ProjectStatsReader = (*ProjectStatsRepository)(nil)
