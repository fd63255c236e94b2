package repository

import (
	"context"
	"errors"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/jackc/pgx/v5"
)

type StaffRepository struct {
	DB *db.Postgres
}

const staffColumns = `id, name, email, phone, branch, role, password_hash, active,
	join_date, created_at, updated_at, deleted_at`

func (r StaffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffAccount, error) {
	s := &domain.StaffAccount{}
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+staffColumns+` FROM staff_accounts
		WHERE email = $1 AND deleted_at IS NULL
	`, email)
	if err := scanStaff(row, s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r StaffRepository) GetByID(ctx context.Context, id int64) (*domain.StaffAccount, error) {
	s := &domain.StaffAccount{}
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+staffColumns+` FROM staff_accounts
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err := scanStaff(row, s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r StaffRepository) List(ctx context.Context, branch string, role domain.UserRole) ([]domain.StaffAccount, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+staffColumns+` FROM staff_accounts
		WHERE deleted_at IS NULL
		  AND ($1 = '' OR branch = $1)
		  AND ($2 = '' OR role = $2)
		ORDER BY name
	`, branch, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StaffAccount
	for rows.Next() {
		var s domain.StaffAccount
		if err := scanStaff(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type CreateStaffInput struct {
	Name         string
	Email        string
	Phone        string
	Branch       string
	Role         domain.UserRole
	PasswordHash string
	JoinDate     time.Time
}

func (r StaffRepository) Create(ctx context.Context, in CreateStaffInput) (*domain.StaffAccount, error) {
	s := &domain.StaffAccount{}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO staff_accounts (name, email, phone, branch, role, password_hash, join_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+staffColumns+`
	`, in.Name, in.Email, in.Phone, in.Branch, in.Role, in.PasswordHash, dateOf(in.JoinDate))
	if err := scanStaff(row, s); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return s, nil
}

type UpdateStaffInput struct {
	ID     int64
	Name   string
	Phone  string
	Branch string
	Role   domain.UserRole
	Active bool
}

func (r StaffRepository) Update(ctx context.Context, in UpdateStaffInput) (*domain.StaffAccount, error) {
	s := &domain.StaffAccount{}
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE staff_accounts
		SET name = $2, phone = $3, branch = $4, role = $5, active = $6, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+staffColumns+`
	`, in.ID, in.Name, in.Phone, in.Branch, in.Role, in.Active)
	if err := scanStaff(row, s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r StaffRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE staff_accounts SET password_hash = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes the account so historical ledger rows keep their
// staff reference.
func (r StaffRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE staff_accounts SET active = FALSE, deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStaff(row pgx.Row, s *domain.StaffAccount) error {
	return row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Branch, &s.Role, &s.PasswordHash,
		&s.Active, &s.JoinDate, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
}
