package repository

import (
	"context"
	"errors"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/jackc/pgx/v5"
)

type WarningRepository struct {
	DB *db.Postgres
}

const warningColumns = `id, staff_id, month, reason, points_achieved, description,
	issued_by, issued_at, acknowledged, acknowledged_at`

type IssueWarningInput struct {
	StaffID     int64
	Month       time.Time
	Reason      string
	Description string
	IssuedBy    int64
}

// Issue writes the letter and flips the incentive's warning flag in one
// transaction. A month that was already warned is rejected.
func (r WarningRepository) Issue(ctx context.Context, in IssueWarningInput) (*domain.WarningLetter, error) {
	var w *domain.WarningLetter
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		month := domain.MonthStart(in.Month)

		inc := &domain.MonthlyIncentive{}
		row := tx.QueryRow(ctx, `
			SELECT id, total_points, warning_issued
			FROM monthly_incentives
			WHERE staff_id = $1 AND month = $2
			FOR UPDATE
		`, in.StaffID, month)
		if err := row.Scan(&inc.ID, &inc.TotalPoints, &inc.WarningIssued); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if inc.WarningIssued {
			return ErrAlreadyHandled
		}

		now := time.Now()
		w = &domain.WarningLetter{}
		letterRow := tx.QueryRow(ctx, `
			INSERT INTO warning_letters (staff_id, month, reason, points_achieved, description, issued_by, issued_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING `+warningColumns+`
		`, in.StaffID, month, in.Reason, inc.TotalPoints, in.Description, in.IssuedBy, now)
		if err := scanWarning(letterRow, w); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			UPDATE monthly_incentives SET warning_issued = TRUE, warning_issued_at = $2 WHERE id = $1
		`, inc.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r WarningRepository) ListForStaff(ctx context.Context, staffID int64) ([]domain.WarningLetter, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+warningColumns+` FROM warning_letters WHERE staff_id = $1 ORDER BY month DESC
	`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WarningLetter
	for rows.Next() {
		var w domain.WarningLetter
		if err := scanWarning(rows, &w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// WarningCandidate is a below-threshold month that has not been warned yet.
type WarningCandidate struct {
	StaffID     int64
	StaffName   string
	Branch      string
	Month       time.Time
	TotalPoints string
}

func (r WarningRepository) ListCandidates(ctx context.Context, month time.Time) ([]WarningCandidate, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT m.staff_id, s.name, s.branch, m.month, m.total_points::text
		FROM monthly_incentives m
		JOIN staff_accounts s ON s.id = m.staff_id
		WHERE m.month = $1 AND m.below_warning AND NOT m.warning_issued AND s.deleted_at IS NULL
		ORDER BY m.total_points
	`, domain.MonthStart(month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WarningCandidate
	for rows.Next() {
		var c WarningCandidate
		if err := rows.Scan(&c.StaffID, &c.StaffName, &c.Branch, &c.Month, &c.TotalPoints); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r WarningRepository) Acknowledge(ctx context.Context, id, staffID int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE warning_letters SET acknowledged = TRUE, acknowledged_at = now()
		WHERE id = $1 AND staff_id = $2 AND NOT acknowledged
	`, id, staffID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWarning(row pgx.Row, w *domain.WarningLetter) error {
	return row.Scan(&w.ID, &w.StaffID, &w.Month, &w.Reason, &w.PointsAchieved,
		&w.Description, &w.IssuedBy, &w.IssuedAt, &w.Acknowledged, &w.AcknowledgedAt)
}
