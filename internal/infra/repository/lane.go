package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"merch-api/internal/infra"
	"merch-api/internal/infra/db"
	"merch-api/internal/usecase/commands"
	"merch-api/internal/usecase/queries"
)

type LaneRepository struct {
	pool *pgxpool.Pool
}

func NewLaneRepository(pool *pgxpool.Pool) *LaneRepository {
	return &LaneRepository{pool: pool}
}

var _ commands.LaneRepository = (*LaneRepository)(nil)
var _ queries.LaneReadStore = (*LaneRepository)(nil)

func (r *LaneRepository) FindByState(ctx context.Context, state *string) ([]*queries.LaneView, error) {
	const query = `
		SELECT id, name, category, impact_score, state, views, completions,
		       engagement, description, difficulty, estimated_minutes,
		       created_at, updated_at
		FROM lanes
		WHERE $1::text IS NULL OR state = $1
		ORDER BY impact_score DESC, name`

	rows, err := r.pool.Query(ctx, query, state)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list lanes", err)
	}
	defer rows.Close()

	var views []*queries.LaneView
	for rows.Next() {
		var v queries.LaneView
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Category, &v.ImpactScore, &v.State, &v.Views,
			&v.Completions, &v.Engagement, &v.Description, &v.Difficulty,
			&v.EstimatedMinutes, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan lane", err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate lanes", err)
	}
	return views, nil
}

func (r *LaneRepository) UpdateState(ctx context.Context, dbtx db.DBTX, id uuid.UUID, state string) error {
	const query = `UPDATE lanes SET state = $2, updated_at = now() WHERE id = $1`

	tag, err := dbtx.Exec(ctx, query, id, state)
	if err != nil {
		return infra.WrapRepoErr("failed to update lane state", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("lane not found", nil, infra.KindNotFound)
	}
	return nil
}
