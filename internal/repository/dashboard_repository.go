package repository

import (
	"context"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/shopspring/decimal"
)

type DashboardRepository struct {
	DB *db.Postgres
}

// DaySummary is the manager dashboard's headline block for one branch-day.
type DaySummary struct {
	Date              time.Time
	Branch            string
	PackagesByType    map[string]int
	ArrivalsPending   int
	UnpaidPreBookings int
	TasksOpen         int
	TasksCompleted    int
	TeamPoints        decimal.Decimal
}

func (r DashboardRepository) DaySummary(ctx context.Context, day time.Time, branch string) (*DaySummary, error) {
	s := &DaySummary{
		Date:           dateOf(day),
		Branch:         branch,
		PackagesByType: map[string]int{},
		TeamPoints:     decimal.Zero,
	}

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT booking_type, COUNT(*)
		FROM task_packages
		WHERE created_at::date = $1 AND ($2 = '' OR branch = $2)
		GROUP BY booking_type
	`, s.Date, branch)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			rows.Close()
			return nil, err
		}
		s.PackagesByType[typ] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM task_packages
		WHERE booking_type = 'type_c' AND arrival_status = 'pending' AND ($1 = '' OR branch = $1)
	`, branch).Scan(&s.ArrivalsPending); err != nil {
		return nil, err
	}

	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM pending_bookings
		WHERE status = 'pending_payment' AND ($1 = '' OR branch = $1)
	`, branch).Scan(&s.UnpaidPreBookings); err != nil {
		return nil, err
	}

	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('pending','assigned','in_progress','submitted')),
			COUNT(*) FILTER (WHERE status = 'completed')
		FROM tasks
		WHERE scheduled_date = $1
	`, s.Date).Scan(&s.TasksOpen, &s.TasksCompleted); err != nil {
		return nil, err
	}

	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(d.total_points), 0)
		FROM daily_points d
		JOIN staff_accounts st ON st.id = d.staff_id
		WHERE d.entry_date = $1 AND ($2 = '' OR st.branch = $2)
	`, s.Date, branch).Scan(&s.TeamPoints); err != nil {
		return nil, err
	}

	return s, nil
}
