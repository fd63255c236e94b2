package repository

import (
	"context"
	"errors"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/jackc/pgx/v5"
)

type CatalogRepository struct {
	DB *db.Postgres
}

const taskTypeColumns = `id, type_code, group_id, name, points, price, combo_sessions, active, sort_order, created_at`

func (r CatalogRepository) ListGroups(ctx context.Context) ([]domain.TaskGroup, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, group_code, name, active, sort_order, created_at
		FROM task_groups
		WHERE active
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TaskGroup
	for rows.Next() {
		var g domain.TaskGroup
		if err := rows.Scan(&g.ID, &g.GroupCode, &g.Name, &g.Active, &g.SortOrder, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r CatalogRepository) ListTypes(ctx context.Context, groupID int64) ([]domain.TaskType, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+taskTypeColumns+`
		FROM task_types
		WHERE active AND ($1 = 0 OR group_id = $1)
		ORDER BY sort_order, name
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TaskType
	for rows.Next() {
		var t domain.TaskType
		if err := scanTaskType(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r CatalogRepository) GetType(ctx context.Context, id int64) (*domain.TaskType, error) {
	t := &domain.TaskType{}
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+taskTypeColumns+` FROM task_types WHERE id = $1`, id)
	if err := scanTaskType(row, t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetTypes loads several catalog entries at once, failing if any ID is unknown
// or inactive.
func (r CatalogRepository) GetTypes(ctx context.Context, ids []int64) ([]domain.TaskType, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+taskTypeColumns+` FROM task_types WHERE active AND id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]domain.TaskType, len(ids))
	for rows.Next() {
		var t domain.TaskType
		if err := scanTaskType(rows, &t); err != nil {
			return nil, err
		}
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.TaskType, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, ErrNotFound
		}
		out = append(out, t)
	}
	return out, nil
}

type UpsertTypeInput struct {
	TypeCode      string
	GroupID       int64
	Name          string
	Points        int
	Price         *int64
	ComboSessions int
	SortOrder     int
}

func (r CatalogRepository) UpsertType(ctx context.Context, in UpsertTypeInput) (*domain.TaskType, error) {
	t := &domain.TaskType{}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO task_types (type_code, group_id, name, points, price, combo_sessions, sort_order)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (type_code) DO UPDATE SET
			group_id = EXCLUDED.group_id, name = EXCLUDED.name, points = EXCLUDED.points,
			price = EXCLUDED.price, combo_sessions = EXCLUDED.combo_sessions,
			sort_order = EXCLUDED.sort_order, active = TRUE
		RETURNING `+taskTypeColumns+`
	`, in.TypeCode, in.GroupID, in.Name, in.Points, in.Price, in.ComboSessions, in.SortOrder)
	if err := scanTaskType(row, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r CatalogRepository) DeactivateType(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `UPDATE task_types SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTaskType(row pgx.Row, t *domain.TaskType) error {
	return row.Scan(&t.ID, &t.TypeCode, &t.GroupID, &t.Name, &t.Points, &t.Price,
		&t.ComboSessions, &t.Active, &t.SortOrder, &t.CreatedAt)
}
