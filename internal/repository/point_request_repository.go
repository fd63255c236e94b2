package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PointRequestRepository struct {
	DB *db.Postgres
}

const pointRequestColumns = `id, request_code, staff_id, task_type_id, points_requested,
	date_completed, reason, reason_details, proof_ref, status, decided_by, decided_at,
	manager_notes, points_awarded, points_awarded_at, created_at`

type CreatePointRequestInput struct {
	StaffID         int64
	TaskTypeID      *int64
	PointsRequested decimal.Decimal
	DateCompleted   time.Time
	Reason          string
	ReasonDetails   string
	ProofRef        string
}

func (r PointRequestRepository) Create(ctx context.Context, in CreatePointRequestInput) (*domain.PointRequest, error) {
	var pr *domain.PointRequest
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		seq, err := nextDailySeqWith(ctx, tx, "point_requests", "created_at")
		if err != nil {
			return err
		}
		reason := in.Reason
		if reason == "" {
			reason = "not_in_system"
		}
		pr = &domain.PointRequest{}
		row := tx.QueryRow(ctx, `
			INSERT INTO point_requests
				(request_code, staff_id, task_type_id, points_requested, date_completed,
				 reason, reason_details, proof_ref)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING `+pointRequestColumns+`
		`, domain.FormatPointRequestCode(time.Now(), seq), in.StaffID, in.TaskTypeID,
			in.PointsRequested, dateOf(in.DateCompleted), reason, in.ReasonDetails, in.ProofRef)
		return scanPointRequest(row, pr)
	})
	if err != nil {
		return nil, err
	}
	return pr, nil
}

func (r PointRequestRepository) GetByID(ctx context.Context, id int64) (*domain.PointRequest, error) {
	pr := &domain.PointRequest{}
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+pointRequestColumns+` FROM point_requests WHERE id = $1`, id)
	if err := scanPointRequest(row, pr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return pr, nil
}

func (r PointRequestRepository) List(ctx context.Context, staffID int64, status domain.ApprovalStatus) ([]domain.PointRequest, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+pointRequestColumns+`
		FROM point_requests
		WHERE ($1 = 0 OR staff_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
	`, staffID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PointRequest
	for rows.Next() {
		var pr domain.PointRequest
		if err := scanPointRequest(rows, &pr); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// Approve settles the claim: bonus points land on the date the work was done,
// so the incentive month matches the work month, not the approval month.
func (r PointRequestRepository) Approve(ctx context.Context, id, managerID int64, notes string) (*domain.PointRequest, error) {
	var pr *domain.PointRequest
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		pr, err = getPointRequestWith(ctx, tx, id)
		if err != nil {
			return err
		}
		if pr.Status != domain.ApprovalPending {
			return ErrAlreadyHandled
		}

		now := time.Now()
		note := fmt.Sprintf("point request %s", pr.RequestCode)
		if _, err := awardPointsWith(ctx, tx, pr.StaffID, pr.DateCompleted, domain.CategoryBonus, pr.PointsRequested, note); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE point_requests
			SET status = $2, decided_by = $3, decided_at = $4, manager_notes = $5,
			    points_awarded = points_requested, points_awarded_at = $4
			WHERE id = $1
		`, pr.ID, domain.ApprovalApproved, managerID, now, notes); err != nil {
			return err
		}
		pr.Status = domain.ApprovalApproved
		pr.DecidedBy = &managerID
		pr.DecidedAt = &now
		pr.ManagerNotes = notes
		pr.PointsAwarded = pr.PointsRequested
		pr.PointsAwardedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pr, nil
}

func (r PointRequestRepository) Reject(ctx context.Context, id, managerID int64, notes string) (*domain.PointRequest, error) {
	var pr *domain.PointRequest
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		pr, err = getPointRequestWith(ctx, tx, id)
		if err != nil {
			return err
		}
		if pr.Status != domain.ApprovalPending {
			return ErrAlreadyHandled
		}
		now := time.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE point_requests
			SET status = $2, decided_by = $3, decided_at = $4, manager_notes = $5
			WHERE id = $1
		`, pr.ID, domain.ApprovalRejected, managerID, now, notes); err != nil {
			return err
		}
		pr.Status = domain.ApprovalRejected
		pr.DecidedBy = &managerID
		pr.DecidedAt = &now
		pr.ManagerNotes = notes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pr, nil
}

func getPointRequestWith(ctx context.Context, q pgxQuerier, id int64) (*domain.PointRequest, error) {
	pr := &domain.PointRequest{}
	row := q.QueryRow(ctx, `SELECT `+pointRequestColumns+` FROM point_requests WHERE id = $1 FOR UPDATE`, id)
	if err := scanPointRequest(row, pr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return pr, nil
}

func scanPointRequest(row pgx.Row, pr *domain.PointRequest) error {
	return row.Scan(&pr.ID, &pr.RequestCode, &pr.StaffID, &pr.TaskTypeID, &pr.PointsRequested,
		&pr.DateCompleted, &pr.Reason, &pr.ReasonDetails, &pr.ProofRef, &pr.Status,
		&pr.DecidedBy, &pr.DecidedAt, &pr.ManagerNotes, &pr.PointsAwarded,
		&pr.PointsAwardedAt, &pr.CreatedAt)
}
