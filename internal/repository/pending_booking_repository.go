package repository

import (
	"context"
	"errors"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/jackc/pgx/v5"
)

type PendingBookingRepository struct {
	DB *db.Postgres
}

type CreatePendingInput struct {
	CustomerID     int64
	CatID          int64
	ServiceTypeIDs []int64
	TotalPoints    int
	ScheduledDate  time.Time
	ScheduledTime  string
	Notes          string
	Branch         string
	CreatedBy      int64
}

func (r PendingBookingRepository) Create(ctx context.Context, in CreatePendingInput) (*domain.PendingBooking, error) {
	var b *domain.PendingBooking
	create := func(tx pgx.Tx) error {
		seq, err := nextDailySeqWith(ctx, tx, "pending_bookings", "created_at")
		if err != nil {
			return err
		}
		code := domain.FormatPendingBookingCode(time.Now(), seq)

		t := in.ScheduledTime
		if t == "" {
			t = "09:00"
		}
		b = &domain.PendingBooking{}
		row := tx.QueryRow(ctx, `
			INSERT INTO pending_bookings
				(booking_code, customer_id, cat_id, service_type_ids, total_points,
				 scheduled_date, scheduled_time, notes, branch, created_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING `+pendingColumns+`
		`, code, in.CustomerID, in.CatID, in.ServiceTypeIDs, in.TotalPoints,
			dateOf(in.ScheduledDate), t, in.Notes, in.Branch, in.CreatedBy)
		return scanPending(row, b)
	}
	err := retryCodeCollision(func() error {
		return r.DB.InTx(ctx, create)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ConfirmAndConvert turns a paid pre-booking into a real Type A package in one
// transaction: package and task rows are created, booking points credited to
// the original taker, and the pre-booking closed. The row lock keeps a racing
// expiry sweep or second confirmation out.
func (r PendingBookingRepository) ConfirmAndConvert(ctx context.Context, pendingID, managerID int64, proofRef string) (*domain.TaskPackage, error) {
	var pkg *domain.TaskPackage
	convert := func(tx pgx.Tx) error {
		b, err := getPendingWith(ctx, tx, pendingID, true)
		if err != nil {
			return err
		}
		now := time.Now()
		if b.IsExpired(now) {
			return ErrBookingExpired
		}
		if !b.CanBeConfirmed(now) {
			return ErrAlreadyHandled
		}

		specs, err := taskSpecsForTypesWith(ctx, tx, b.ServiceTypeIDs, b.ScheduledDate, b.ScheduledTime)
		if err != nil {
			return err
		}

		var createdBy int64
		if b.CreatedBy != nil {
			createdBy = *b.CreatedBy
		}
		sched := b.ScheduledDate
		in := CreatePackageInput{
			CatID:           b.CatID,
			CreatedBy:       createdBy,
			Branch:          b.Branch,
			BookingType:     domain.BookingTypeA,
			TotalPoints:     b.TotalPoints,
			Notes:           b.Notes,
			ScheduledDate:   &sched,
			PaymentProofRef: proofRef,
		}
		pkg, err = insertPackageWith(ctx, tx, in, nil)
		if err != nil {
			return err
		}
		if err := insertTasksWith(ctx, tx, pkg.ID, specs); err != nil {
			return err
		}
		if b.CreatedBy != nil && b.TotalPoints > 0 {
			if err := awardPackagePointsWith(ctx, tx, pkg, *b.CreatedBy); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE pending_bookings
			SET status = $2, confirmed_at = $3, confirmed_by = $4,
			    payment_proof_ref = $5, converted_to = $6
			WHERE id = $1
		`, b.ID, domain.PendingConfirmed, now, managerID, proofRef, pkg.ID)
		return err
	}
	err := retryCodeCollision(func() error {
		return r.DB.InTx(ctx, convert)
	})
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

// ExpireDue flips every unpaid pre-booking whose date has passed and returns
// the rows it closed. The status guard in the WHERE clause makes a concurrent
// confirmation win cleanly.
func (r PendingBookingRepository) ExpireDue(ctx context.Context, today time.Time) ([]domain.PendingBooking, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		UPDATE pending_bookings
		SET status = $1, expired_at = now()
		WHERE status = $2 AND scheduled_date < $3
		RETURNING `+pendingColumns+`
	`, domain.PendingExpired, domain.PendingPayment, dateOf(today))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PendingBooking
	for rows.Next() {
		var b domain.PendingBooking
		if err := scanPending(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r PendingBookingRepository) Cancel(ctx context.Context, id, byID int64) (*domain.PendingBooking, error) {
	var b *domain.PendingBooking
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		b, err = getPendingWith(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if b.Status != domain.PendingPayment {
			return ErrAlreadyHandled
		}
		now := time.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE pending_bookings SET status = $2, confirmed_by = $3, confirmed_at = $4 WHERE id = $1
		`, b.ID, domain.PendingCancelled, byID, now); err != nil {
			return err
		}
		b.Status = domain.PendingCancelled
		b.ConfirmedBy = &byID
		b.ConfirmedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r PendingBookingRepository) GetByID(ctx context.Context, id int64) (*domain.PendingBooking, error) {
	return getPendingWith(ctx, r.DB.Pool, id, false)
}

func (r PendingBookingRepository) ListByStatus(ctx context.Context, status domain.PendingBookingStatus, branch string) ([]domain.PendingBooking, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+pendingColumns+`
		FROM pending_bookings
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR branch = $2)
		ORDER BY scheduled_date, created_at
	`, string(status), branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PendingBooking
	for rows.Next() {
		var b domain.PendingBooking
		if err := scanPending(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

const pendingColumns = `id, booking_code, customer_id, cat_id, service_type_ids, total_points,
	scheduled_date, scheduled_time, notes, status, branch, created_by,
	confirmed_at, confirmed_by, payment_proof_ref, expired_at, converted_to, created_at`

func getPendingWith(ctx context.Context, q pgxQuerier, id int64, forUpdate bool) (*domain.PendingBooking, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_bookings WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	b := &domain.PendingBooking{}
	if err := scanPending(q.QueryRow(ctx, query, id), b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func scanPending(row pgx.Row, b *domain.PendingBooking) error {
	return row.Scan(&b.ID, &b.BookingCode, &b.CustomerID, &b.CatID, &b.ServiceTypeIDs,
		&b.TotalPoints, &b.ScheduledDate, &b.ScheduledTime, &b.Notes, &b.Status, &b.Branch,
		&b.CreatedBy, &b.ConfirmedAt, &b.ConfirmedBy, &b.PaymentProofRef, &b.ExpiredAt,
		&b.ConvertedTo, &b.CreatedAt)
}

// taskSpecsForTypesWith expands stored service type IDs into task lines,
// repeating a type when it was requested more than once.
func taskSpecsForTypesWith(ctx context.Context, q pgxQuerier, typeIDs []int64, date time.Time, at string) ([]TaskSpec, error) {
	if len(typeIDs) == 0 {
		return nil, nil
	}
	rows, err := q.Query(ctx, `SELECT id, points FROM task_types WHERE id = ANY($1)`, typeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make(map[int64]int, len(typeIDs))
	for rows.Next() {
		var id int64
		var p int
		if err := rows.Scan(&id, &p); err != nil {
			return nil, err
		}
		points[id] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	specs := make([]TaskSpec, 0, len(typeIDs))
	for _, id := range typeIDs {
		p, ok := points[id]
		if !ok {
			return nil, ErrNotFound
		}
		specs = append(specs, TaskSpec{TaskTypeID: id, Points: p, ScheduledDate: date, ScheduledTime: at})
	}
	return specs, nil
}
