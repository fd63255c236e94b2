package repository

import (
	"context"
	"errors"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/jackc/pgx/v5"
)

type ComboRepository struct {
	DB *db.Postgres
}

const comboColumns = `id, ownership_code, customer_id, cat_id, combo_task_type_id,
	total_sessions, sessions_used, sessions_remaining, points_awarded, awarded_to,
	awarded_at, purchase_package_id, active, fully_used, purchased_at, expires_at`

func (r ComboRepository) GetByID(ctx context.Context, id int64) (*domain.ComboPackageOwnership, error) {
	c := &domain.ComboPackageOwnership{}
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+comboColumns+` FROM combo_ownerships WHERE id = $1`, id)
	if err := scanCombo(row, c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r ComboRepository) GetByCode(ctx context.Context, code string) (*domain.ComboPackageOwnership, error) {
	c := &domain.ComboPackageOwnership{}
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+comboColumns+` FROM combo_ownerships WHERE ownership_code = $1`, code)
	if err := scanCombo(row, c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r ComboRepository) ListForCustomer(ctx context.Context, customerID int64, activeOnly bool) ([]domain.ComboPackageOwnership, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+comboColumns+`
		FROM combo_ownerships
		WHERE customer_id = $1 AND (NOT $2 OR active)
		ORDER BY purchased_at DESC
	`, customerID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCombos(rows)
}

func (r ComboRepository) ListForCat(ctx context.Context, catID int64, activeOnly bool) ([]domain.ComboPackageOwnership, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+comboColumns+`
		FROM combo_ownerships
		WHERE cat_id = $1 AND (NOT $2 OR active)
		ORDER BY purchased_at DESC
	`, catID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCombos(rows)
}

// RedemptionHistory lists the packages that consumed sessions of one combo,
// in session order.
func (r ComboRepository) RedemptionHistory(ctx context.Context, ownershipID int64) ([]domain.TaskPackage, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+packageColumns+`
		FROM task_packages
		WHERE combo_ownership_id = $1
		ORDER BY combo_session_number
	`, ownershipID)
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

func collectCombos(rows pgx.Rows) ([]domain.ComboPackageOwnership, error) {
	var out []domain.ComboPackageOwnership
	for rows.Next() {
		var c domain.ComboPackageOwnership
		if err := scanCombo(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCombo(row pgx.Row, c *domain.ComboPackageOwnership) error {
	return row.Scan(&c.ID, &c.OwnershipCode, &c.CustomerID, &c.CatID, &c.ComboTaskTypeID,
		&c.TotalSessions, &c.SessionsUsed, &c.SessionsRemaining, &c.PointsAwarded,
		&c.AwardedTo, &c.AwardedAt, &c.PurchasePackageID, &c.Active, &c.FullyUsed,
		&c.PurchasedAt, &c.ExpiresAt)
}
