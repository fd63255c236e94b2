package repository

import (
	"context"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/domain"
)

type ActivityLogRepository struct {
	DB *db.Postgres
}

func (r ActivityLogRepository) Record(ctx context.Context, actorID int64, action, entity, entityID, detail string) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO activity_logs (actor_id, action, entity, entity_id, detail)
		VALUES ($1,$2,$3,$4,$5)
	`, actorID, action, entity, entityID, detail)
	return err
}

func (r ActivityLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, actor_id, action, entity, entity_id, detail, logged_at
		FROM activity_logs
		ORDER BY logged_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ActivityLog
	for rows.Next() {
		var l domain.ActivityLog
		if err := rows.Scan(&l.ID, &l.ActorID, &l.Action, &l.Entity, &l.EntityID, &l.Detail, &l.LoggedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
