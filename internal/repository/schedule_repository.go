package repository

import (
	"context"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/jackc/pgx/v5"
)

type ScheduleRepository struct {
	DB *db.Postgres
}

const scheduleColumns = `id, staff_id, work_date, shift, start_time, end_time, branch, notes,
	created_by, created_at, updated_at`

type UpsertScheduleInput struct {
	StaffID   int64
	Date      time.Time
	Shift     domain.ShiftType
	StartTime string
	EndTime   string
	Branch    string
	Notes     string
	CreatedBy int64
}

// Upsert writes one staff-day. A second write for the same day replaces the
// shift instead of duplicating it.
func (r ScheduleRepository) Upsert(ctx context.Context, in UpsertScheduleInput) (*domain.Schedule, error) {
	s := &domain.Schedule{}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO schedules (staff_id, work_date, shift, start_time, end_time, branch, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (staff_id, work_date) DO UPDATE SET
			shift = EXCLUDED.shift, start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time,
			branch = EXCLUDED.branch, notes = EXCLUDED.notes, updated_at = now()
		RETURNING `+scheduleColumns+`
	`, in.StaffID, dateOf(in.Date), in.Shift, in.StartTime, in.EndTime, in.Branch, in.Notes, in.CreatedBy)
	if err := scanSchedule(row, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r ScheduleRepository) ListRange(ctx context.Context, staffID int64, from, to time.Time) ([]domain.Schedule, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+scheduleColumns+`
		FROM schedules
		WHERE ($1 = 0 OR staff_id = $1) AND work_date BETWEEN $2 AND $3
		ORDER BY work_date, staff_id
	`, staffID, dateOf(from), dateOf(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Schedule
	for rows.Next() {
		var s domain.Schedule
		if err := scanSchedule(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r ScheduleRepository) Delete(ctx context.Context, staffID int64, day time.Time) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		DELETE FROM schedules WHERE staff_id = $1 AND work_date = $2
	`, staffID, dateOf(day))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSchedule(row pgx.Row, s *domain.Schedule) error {
	return row.Scan(&s.ID, &s.StaffID, &s.Date, &s.Shift, &s.StartTime, &s.EndTime,
		&s.Branch, &s.Notes, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
}
