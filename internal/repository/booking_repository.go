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

type BookingRepository struct {
	DB *db.Postgres
}

// TaskSpec is one service line inside a package being created.
type TaskSpec struct {
	TaskTypeID    int64
	Points        int
	ScheduledDate time.Time
	ScheduledTime string
	Notes         string
}

// ComboSaleSpec is set when a Type A package sells a multi-session combo. The
// ownership it creates is credited to the selling staff at intake.
type ComboSaleSpec struct {
	CustomerID      int64
	ComboTaskTypeID int64
	TotalSessions   int
	ExpiresAt       *time.Time
}

type CreatePackageInput struct {
	CatID            int64
	CreatedBy        int64
	Branch           string
	BookingType      domain.BookingType
	TotalPoints      int
	Notes            string
	ScheduledDate    *time.Time
	PaymentProofRef  string
	ComboOwnershipID *int64
	Tasks            []TaskSpec
	ComboSale        *ComboSaleSpec
}

// Create settles a new package atomically: Type B consumes one combo session
// before anything is written, Type A credits booking points at intake, Type C
// leaves the award held behind arrival confirmation.
func (r BookingRepository) Create(ctx context.Context, in CreatePackageInput) (*domain.TaskPackage, error) {
	var pkg *domain.TaskPackage
	create := func(tx pgx.Tx) error {
		var sessionNumber *int
		if in.BookingType == domain.BookingTypeB {
			if in.ComboOwnershipID == nil {
				return fmt.Errorf("type_b package without combo ownership")
			}
			n, err := consumeComboSessionWith(ctx, tx, *in.ComboOwnershipID)
			if err != nil {
				return err
			}
			sessionNumber = &n
		}

		var err error
		pkg, err = insertPackageWith(ctx, tx, in, sessionNumber)
		if err != nil {
			return err
		}
		if err := insertTasksWith(ctx, tx, pkg.ID, in.Tasks); err != nil {
			return err
		}

		if in.BookingType == domain.BookingTypeA && in.TotalPoints > 0 {
			if err := awardPackagePointsWith(ctx, tx, pkg, in.CreatedBy); err != nil {
				return err
			}
		}

		if in.ComboSale != nil {
			if err := insertComboSaleWith(ctx, tx, pkg, in.CreatedBy, *in.ComboSale); err != nil {
				return err
			}
		}
		return nil
	}
	err := retryCodeCollision(func() error {
		return r.DB.InTx(ctx, create)
	})
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

// ConfirmArrival settles a held Type C award. The row lock serializes racing
// confirmations; the points_awarded flag makes the award happen at most once.
func (r BookingRepository) ConfirmArrival(ctx context.Context, packageID, managerID int64) (*domain.TaskPackage, bool, error) {
	var pkg *domain.TaskPackage
	var awarded bool
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		pkg, err = getPackageWith(ctx, tx, packageID, true)
		if err != nil {
			return err
		}
		if !pkg.CanConfirmArrival() {
			return ErrAlreadyHandled
		}

		now := time.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE task_packages
			SET arrival_status = $2, arrival_confirmed_at = $3, confirmed_by = $4, updated_at = now()
			WHERE id = $1
		`, pkg.ID, domain.ArrivalArrived, now, managerID); err != nil {
			return err
		}
		pkg.ArrivalStatus = domain.ArrivalArrived
		pkg.ArrivalConfirmedAt = &now
		pkg.ConfirmedBy = &managerID

		if pkg.AwardsOnArrival() && pkg.CreatedBy != nil && pkg.TotalPoints > 0 {
			if err := awardPackagePointsWith(ctx, tx, pkg, *pkg.CreatedBy); err != nil {
				return err
			}
			awarded = true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return pkg, awarded, nil
}

// MarkNoShow closes the arrival decision without releasing points. The held
// award is forfeited permanently.
func (r BookingRepository) MarkNoShow(ctx context.Context, packageID, managerID int64) (*domain.TaskPackage, error) {
	var pkg *domain.TaskPackage
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		pkg, err = getPackageWith(ctx, tx, packageID, true)
		if err != nil {
			return err
		}
		if !pkg.CanConfirmArrival() {
			return ErrAlreadyHandled
		}

		now := time.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE task_packages
			SET arrival_status = $2, arrival_confirmed_at = $3, confirmed_by = $4,
			    status = $5, updated_at = now()
			WHERE id = $1
		`, pkg.ID, domain.ArrivalNoShow, now, managerID, domain.PackageCancelled); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE tasks SET status = $2 WHERE package_id = $1 AND status = $3
		`, pkg.ID, domain.TaskCancelled, domain.TaskPending); err != nil {
			return err
		}
		pkg.ArrivalStatus = domain.ArrivalNoShow
		pkg.ArrivalConfirmedAt = &now
		pkg.ConfirmedBy = &managerID
		pkg.Status = domain.PackageCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

func (r BookingRepository) GetPackage(ctx context.Context, id int64) (*domain.TaskPackage, error) {
	return getPackageWith(ctx, r.DB.Pool, id, false)
}

type PackageFilter struct {
	Branch        string
	Status        domain.PackageStatus
	BookingType   domain.BookingType
	ArrivalStatus domain.ArrivalStatus
	Date          *time.Time
	Limit         int
}

func (r BookingRepository) ListPackages(ctx context.Context, f PackageFilter) ([]domain.TaskPackage, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+packageColumns+`
		FROM task_packages
		WHERE ($1 = '' OR branch = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR booking_type = $3)
		  AND ($4 = '' OR arrival_status = $4)
		  AND ($5::date IS NULL OR scheduled_date = $5)
		ORDER BY created_at DESC
		LIMIT $6
	`, string(f.Branch), string(f.Status), string(f.BookingType), string(f.ArrivalStatus), nullableDate(f.Date), f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TaskPackage
	for rows.Next() {
		var p domain.TaskPackage
		if err := scanPackage(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListArrivalQueue returns Type C packages still waiting for a manager decision.
func (r BookingRepository) ListArrivalQueue(ctx context.Context, branch string) ([]domain.TaskPackage, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+packageColumns+`
		FROM task_packages
		WHERE booking_type = $1 AND arrival_status = $2 AND ($3 = '' OR branch = $3)
		ORDER BY scheduled_date NULLS LAST, created_at
	`, domain.BookingTypeC, domain.ArrivalPending, branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TaskPackage
	for rows.Next() {
		var p domain.TaskPackage
		if err := scanPackage(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const packageColumns = `id, package_code, cat_id, created_by, branch, status, booking_type,
	total_points, notes, scheduled_date, payment_proof_ref, combo_ownership_id,
	combo_session_number, arrival_status, arrival_confirmed_at, confirmed_by,
	points_awarded, points_awarded_at, created_at, updated_at`

func getPackageWith(ctx context.Context, q pgxQuerier, id int64, forUpdate bool) (*domain.TaskPackage, error) {
	query := `SELECT ` + packageColumns + ` FROM task_packages WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	p := &domain.TaskPackage{}
	if err := scanPackage(q.QueryRow(ctx, query, id), p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanPackage(row pgx.Row, p *domain.TaskPackage) error {
	return row.Scan(&p.ID, &p.PackageCode, &p.CatID, &p.CreatedBy, &p.Branch, &p.Status,
		&p.BookingType, &p.TotalPoints, &p.Notes, &p.ScheduledDate, &p.PaymentProofRef,
		&p.ComboOwnershipID, &p.ComboSessionNumber, &p.ArrivalStatus, &p.ArrivalConfirmedAt,
		&p.ConfirmedBy, &p.PointsAwarded, &p.PointsAwardedAt, &p.CreatedAt, &p.UpdatedAt)
}

func insertPackageWith(ctx context.Context, q pgxQuerier, in CreatePackageInput, sessionNumber *int) (*domain.TaskPackage, error) {
	seq, err := nextDailySeqWith(ctx, q, "task_packages", "created_at")
	if err != nil {
		return nil, err
	}
	code := domain.FormatPackageCode(time.Now(), seq)

	// Type A arrives paid; B and C wait for the cat at the door.
	arrival := domain.ArrivalPending
	if in.BookingType == domain.BookingTypeA {
		arrival = domain.ArrivalArrived
	}

	p := &domain.TaskPackage{}
	row := q.QueryRow(ctx, `
		INSERT INTO task_packages
			(package_code, cat_id, created_by, branch, status, booking_type, total_points,
			 notes, scheduled_date, payment_proof_ref, combo_ownership_id, combo_session_number,
			 arrival_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING `+packageColumns+`
	`, code, in.CatID, in.CreatedBy, in.Branch, domain.PackagePending, in.BookingType,
		in.TotalPoints, in.Notes, nullableDate(in.ScheduledDate), in.PaymentProofRef,
		in.ComboOwnershipID, sessionNumber, arrival)
	if err := scanPackage(row, p); err != nil {
		return nil, fmt.Errorf("insert package: %w", err)
	}
	return p, nil
}

func insertTasksWith(ctx context.Context, q pgxQuerier, packageID int64, specs []TaskSpec) error {
	for _, s := range specs {
		seq, err := nextDailySeqWith(ctx, q, "tasks", "created_at")
		if err != nil {
			return err
		}
		code := domain.FormatTaskCode(time.Now(), seq)
		t := s.ScheduledTime
		if t == "" {
			t = "09:00"
		}
		if _, err := q.Exec(ctx, `
			INSERT INTO tasks (task_code, package_id, task_type_id, points, scheduled_date, scheduled_time, notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, code, packageID, s.TaskTypeID, s.Points, dateOf(s.ScheduledDate), t, s.Notes); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
	}
	return nil
}

// awardPackagePointsWith credits the package's booking points to staffID on the
// package's award date and flips the idempotence flag in the same transaction.
func awardPackagePointsWith(ctx context.Context, q pgxQuerier, pkg *domain.TaskPackage, staffID int64) error {
	amount := decimal.NewFromInt(int64(pkg.TotalPoints))
	note := fmt.Sprintf("booking %s", pkg.PackageCode)
	if _, err := awardPointsWith(ctx, q, staffID, pkg.AwardDate(), domain.CategoryBooking, amount, note); err != nil {
		return err
	}

	now := time.Now()
	tag, err := q.Exec(ctx, `
		UPDATE task_packages
		SET points_awarded = TRUE, points_awarded_at = $2, updated_at = now()
		WHERE id = $1 AND points_awarded = FALSE
	`, pkg.ID, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("package %s already settled", pkg.PackageCode)
	}
	pkg.PointsAwarded = true
	pkg.PointsAwardedAt = &now
	return nil
}

func insertComboSaleWith(ctx context.Context, q pgxQuerier, pkg *domain.TaskPackage, sellerID int64, sale ComboSaleSpec) error {
	seq, err := nextDailySeqWith(ctx, q, "combo_ownerships", "purchased_at")
	if err != nil {
		return err
	}
	code := domain.FormatComboCode(time.Now(), seq)
	if _, err := q.Exec(ctx, `
		INSERT INTO combo_ownerships
			(ownership_code, customer_id, cat_id, combo_task_type_id, total_sessions,
			 sessions_used, sessions_remaining, points_awarded, awarded_to, awarded_at,
			 purchase_package_id, expires_at)
		VALUES ($1,$2,$3,$4,$5,0,$5,$6,$7,now(),$8,$9)
	`, code, sale.CustomerID, pkg.CatID, sale.ComboTaskTypeID, sale.TotalSessions,
		pkg.TotalPoints, sellerID, pkg.ID, nullableDate(sale.ExpiresAt)); err != nil {
		return fmt.Errorf("insert combo ownership: %w", err)
	}
	return nil
}

// consumeComboSessionWith decrements the session counters in one guarded
// statement and returns the session number just used. Zero rows means the
// combo is exhausted or inactive.
func consumeComboSessionWith(ctx context.Context, q pgxQuerier, ownershipID int64) (int, error) {
	var used int
	row := q.QueryRow(ctx, `
		UPDATE combo_ownerships
		SET sessions_used = sessions_used + 1,
		    sessions_remaining = sessions_remaining - 1,
		    fully_used = (sessions_remaining - 1) <= 0,
		    active = (sessions_remaining - 1) > 0
		WHERE id = $1 AND active AND sessions_remaining > 0
		RETURNING sessions_used
	`, ownershipID)
	if err := row.Scan(&used); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoSessionsRemaining
		}
		return 0, err
	}
	return used, nil
}

// retryCodeCollision reruns fn when a day-scoped code collides under
// concurrent intake. Each attempt opens a fresh transaction, recounts and
// takes the next number.
func retryCodeCollision(fn func() error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = fn()
		if err == nil || !db.IsUniqueViolation(err) {
			return err
		}
	}
	return err
}

// nextDailySeqWith numbers codes within the current day. Codes also carry a
// unique constraint, so a concurrent collision fails the transaction and the
// caller retries with a fresh count.
func nextDailySeqWith(ctx context.Context, q pgxQuerier, table, tsColumn string) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) + 1 FROM %s WHERE %s::date = CURRENT_DATE`, table, tsColumn)
	if err := q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dateOf(*t)
}
