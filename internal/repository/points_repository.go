package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type PointsRepository struct {
	DB *db.Postgres
}

// pgxQuerier is satisfied by both pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

var categoryColumns = map[domain.PointCategory]string{
	domain.CategoryGrooming: "grooming_points",
	domain.CategoryService:  "service_points",
	domain.CategoryBooking:  "booking_points",
	domain.CategoryBonus:    "bonus_points",
}

// Award credits one staff member's daily entry and monthly incentive in a
// single transaction and returns the recalculated incentive row.
func (r PointsRepository) Award(ctx context.Context, staffID int64, day time.Time, category domain.PointCategory, amount decimal.Decimal, note string) (*domain.MonthlyIncentive, error) {
	var inc *domain.MonthlyIncentive
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		inc, txErr = awardPointsWith(ctx, tx, staffID, day, category, amount, note)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return inc, nil
}

// awardPointsWith is the one write path into the points ledger. Both upserts
// are additive, so concurrent awards for the same staff and date serialize on
// the row instead of losing updates. Callers that settle bookings run this
// inside their own transaction.
func awardPointsWith(ctx context.Context, q pgxQuerier, staffID int64, day time.Time, category domain.PointCategory, amount decimal.Decimal, note string) (*domain.MonthlyIncentive, error) {
	col, ok := categoryColumns[category]
	if !ok {
		return nil, fmt.Errorf("unknown point category %q", category)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative award %s for staff %d", amount, staffID)
	}

	// Daily entry. total_points stays the sum of the four categories because
	// both branches add the same amount to a category and to the total.
	daily := fmt.Sprintf(`
		INSERT INTO daily_points (staff_id, entry_date, %[1]s, total_points, notes)
		VALUES ($1, $2, $3, $3, $4)
		ON CONFLICT (staff_id, entry_date) DO UPDATE SET
			%[1]s = daily_points.%[1]s + EXCLUDED.%[1]s,
			total_points = daily_points.total_points + EXCLUDED.%[1]s,
			updated_at = now()
	`, col)
	if _, err := q.Exec(ctx, daily, staffID, dateOf(day), amount, note); err != nil {
		return nil, fmt.Errorf("upsert daily points: %w", err)
	}

	// Monthly rollup, bucketed by the award date's month.
	inc := &domain.MonthlyIncentive{}
	row := q.QueryRow(ctx, `
		INSERT INTO monthly_incentives (staff_id, month, total_points)
		VALUES ($1, $2, $3)
		ON CONFLICT (staff_id, month) DO UPDATE SET
			total_points = monthly_incentives.total_points + EXCLUDED.total_points
		RETURNING id, staff_id, month, total_points, warning_issued, warning_issued_at, paid, paid_at
	`, staffID, domain.MonthStart(day), amount)
	if err := row.Scan(&inc.ID, &inc.StaffID, &inc.Month, &inc.TotalPoints,
		&inc.WarningIssued, &inc.WarningIssuedAt, &inc.Paid, &inc.PaidAt); err != nil {
		return nil, fmt.Errorf("upsert monthly incentive: %w", err)
	}

	inc.Recalculate()
	if _, err := q.Exec(ctx, `
		UPDATE monthly_incentives
		SET incentive_earned = $1, bonus_earned = $2, milestone_reached = $3, below_warning = $4
		WHERE id = $5
	`, inc.IncentiveEarned, inc.BonusEarned, inc.MilestoneReached, inc.BelowWarning, inc.ID); err != nil {
		return nil, fmt.Errorf("store recalculated incentive: %w", err)
	}
	return inc, nil
}

func (r PointsRepository) GetDaily(ctx context.Context, staffID int64, day time.Time) (*domain.DailyPointEntry, error) {
	e := &domain.DailyPointEntry{}
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, staff_id, entry_date, grooming_points, service_points, booking_points,
		       bonus_points, total_points, notes, created_at, updated_at
		FROM daily_points
		WHERE staff_id = $1 AND entry_date = $2
	`, staffID, dateOf(day))
	if err := scanDailyEntry(row, e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r PointsRepository) ListDailyRange(ctx context.Context, staffID int64, from, to time.Time) ([]domain.DailyPointEntry, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, staff_id, entry_date, grooming_points, service_points, booking_points,
		       bonus_points, total_points, notes, created_at, updated_at
		FROM daily_points
		WHERE staff_id = $1 AND entry_date BETWEEN $2 AND $3
		ORDER BY entry_date
	`, staffID, dateOf(from), dateOf(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.DailyPointEntry
	for rows.Next() {
		var e domain.DailyPointEntry
		if err := scanDailyEntry(rows, &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TeamDailyRow is one staff member's day as shown on the team dashboard.
type TeamDailyRow struct {
	domain.DailyPointEntry
	StaffName string
	Branch    string
}

func (r PointsRepository) ListDailyForDate(ctx context.Context, day time.Time, branch string) ([]TeamDailyRow, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT d.id, d.staff_id, d.entry_date, d.grooming_points, d.service_points,
		       d.booking_points, d.bonus_points, d.total_points, d.notes,
		       d.created_at, d.updated_at, s.name, s.branch
		FROM daily_points d
		JOIN staff_accounts s ON s.id = d.staff_id
		WHERE d.entry_date = $1 AND ($2 = '' OR s.branch = $2)
		ORDER BY d.total_points DESC
	`, dateOf(day), branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamDailyRow
	for rows.Next() {
		var t TeamDailyRow
		e := &t.DailyPointEntry
		if err := rows.Scan(&e.ID, &e.StaffID, &e.Date, &e.GroomingPoints, &e.ServicePoints,
			&e.BookingPoints, &e.BonusPoints, &e.TotalPoints, &e.Notes,
			&e.CreatedAt, &e.UpdatedAt, &t.StaffName, &t.Branch); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r PointsRepository) GetMonthly(ctx context.Context, staffID int64, month time.Time) (*domain.MonthlyIncentive, error) {
	inc := &domain.MonthlyIncentive{}
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, staff_id, month, total_points, incentive_earned, bonus_earned,
		       milestone_reached, below_warning, warning_issued, warning_issued_at, paid, paid_at
		FROM monthly_incentives
		WHERE staff_id = $1 AND month = $2
	`, staffID, domain.MonthStart(month))
	if err := scanMonthlyIncentive(row, inc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inc, nil
}

// MonthlyIncentiveRow pairs an incentive with staff identity for reporting.
type MonthlyIncentiveRow struct {
	domain.MonthlyIncentive
	StaffName string
	Branch    string
}

func (r PointsRepository) ListMonthlyForMonth(ctx context.Context, month time.Time, branch string) ([]MonthlyIncentiveRow, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT m.id, m.staff_id, m.month, m.total_points, m.incentive_earned, m.bonus_earned,
		       m.milestone_reached, m.below_warning, m.warning_issued, m.warning_issued_at,
		       m.paid, m.paid_at, s.name, s.branch
		FROM monthly_incentives m
		JOIN staff_accounts s ON s.id = m.staff_id
		WHERE m.month = $1 AND ($2 = '' OR s.branch = $2)
		ORDER BY m.total_points DESC
	`, domain.MonthStart(month), branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthlyIncentiveRow
	for rows.Next() {
		var row MonthlyIncentiveRow
		inc := &row.MonthlyIncentive
		if err := rows.Scan(&inc.ID, &inc.StaffID, &inc.Month, &inc.TotalPoints,
			&inc.IncentiveEarned, &inc.BonusEarned, &inc.MilestoneReached, &inc.BelowWarning,
			&inc.WarningIssued, &inc.WarningIssuedAt, &inc.Paid, &inc.PaidAt,
			&row.StaffName, &row.Branch); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r PointsRepository) ListMonthlyForStaff(ctx context.Context, staffID int64, limit int) ([]domain.MonthlyIncentive, error) {
	if limit <= 0 {
		limit = 12
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, staff_id, month, total_points, incentive_earned, bonus_earned,
		       milestone_reached, below_warning, warning_issued, warning_issued_at, paid, paid_at
		FROM monthly_incentives
		WHERE staff_id = $1
		ORDER BY month DESC
		LIMIT $2
	`, staffID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MonthlyIncentive
	for rows.Next() {
		var inc domain.MonthlyIncentive
		if err := rows.Scan(&inc.ID, &inc.StaffID, &inc.Month, &inc.TotalPoints,
			&inc.IncentiveEarned, &inc.BonusEarned, &inc.MilestoneReached, &inc.BelowWarning,
			&inc.WarningIssued, &inc.WarningIssuedAt, &inc.Paid, &inc.PaidAt); err != nil {
			return nil, err
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

// MarkWarningIssued is a one-way flag set when a warning letter goes out.
func (r PointsRepository) MarkWarningIssued(ctx context.Context, incentiveID int64, at time.Time) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE monthly_incentives
		SET warning_issued = TRUE, warning_issued_at = $2
		WHERE id = $1 AND warning_issued = FALSE
	`, incentiveID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid is a one-way flag set when payroll settles the incentive.
func (r PointsRepository) MarkPaid(ctx context.Context, incentiveID int64, at time.Time) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE monthly_incentives
		SET paid = TRUE, paid_at = $2
		WHERE id = $1 AND paid = FALSE
	`, incentiveID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDailyEntry(row pgx.Row, e *domain.DailyPointEntry) error {
	return row.Scan(&e.ID, &e.StaffID, &e.Date, &e.GroomingPoints, &e.ServicePoints,
		&e.BookingPoints, &e.BonusPoints, &e.TotalPoints, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
}

func scanMonthlyIncentive(row pgx.Row, inc *domain.MonthlyIncentive) error {
	return row.Scan(&inc.ID, &inc.StaffID, &inc.Month, &inc.TotalPoints,
		&inc.IncentiveEarned, &inc.BonusEarned, &inc.MilestoneReached, &inc.BelowWarning,
		&inc.WarningIssued, &inc.WarningIssuedAt, &inc.Paid, &inc.PaidAt)
}

// dateOf truncates to the calendar date for DATE columns.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
