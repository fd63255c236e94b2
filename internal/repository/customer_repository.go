package repository

import (
	"context"
	"errors"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/jackc/pgx/v5"
)

type CustomerRepository struct {
	DB *db.Postgres
}

const customerColumns = `id, customer_code, name, phone, email, address, registered_by, created_at, updated_at`
const catColumns = `id, cat_code, name, owner_id, breed, gender, age, medical_notes, active, registered_by, created_at`

type CreateCustomerInput struct {
	Name         string
	Phone        string
	Email        string
	Address      string
	RegisteredBy int64
}

func (r CustomerRepository) Create(ctx context.Context, in CreateCustomerInput) (*domain.Customer, error) {
	var c *domain.Customer
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		var seq int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) + 1 FROM customers`).Scan(&seq); err != nil {
			return err
		}
		c = &domain.Customer{}
		row := tx.QueryRow(ctx, `
			INSERT INTO customers (customer_code, name, phone, email, address, registered_by)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING `+customerColumns+`
		`, domain.FormatCustomerCode(seq), in.Name, in.Phone, in.Email, in.Address, in.RegisteredBy)
		return scanCustomer(row, c)
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicatePhone
		}
		return nil, err
	}
	return c, nil
}

func (r CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	c := &domain.Customer{}
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	if err := scanCustomer(row, c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetByPhone backs the front-desk lookup at intake.
func (r CustomerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	c := &domain.Customer{}
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone = $1`, phone)
	if err := scanCustomer(row, c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r CustomerRepository) Search(ctx context.Context, term string, limit int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR phone LIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type CreateCatInput struct {
	Name         string
	OwnerID      int64
	Breed        string
	Gender       string
	Age          int
	MedicalNotes string
	RegisteredBy int64
}

func (r CustomerRepository) CreateCat(ctx context.Context, in CreateCatInput) (*domain.Cat, error) {
	var cat *domain.Cat
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		var seq int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) + 1 FROM cats`).Scan(&seq); err != nil {
			return err
		}
		breed := in.Breed
		if breed == "" {
			breed = "mixed"
		}
		cat = &domain.Cat{}
		row := tx.QueryRow(ctx, `
			INSERT INTO cats (cat_code, name, owner_id, breed, gender, age, medical_notes, registered_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING `+catColumns+`
		`, domain.FormatCatCode(seq), in.Name, in.OwnerID, breed, in.Gender, in.Age, in.MedicalNotes, in.RegisteredBy)
		return scanCat(row, cat)
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func (r CustomerRepository) GetCat(ctx context.Context, id int64) (*domain.Cat, error) {
	c := &domain.Cat{}
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+catColumns+` FROM cats WHERE id = $1`, id)
	if err := scanCat(row, c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r CustomerRepository) ListCats(ctx context.Context, ownerID int64) ([]domain.Cat, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+catColumns+` FROM cats WHERE owner_id = $1 AND active ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Cat
	for rows.Next() {
		var c domain.Cat
		if err := scanCat(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCustomer(row pgx.Row, c *domain.Customer) error {
	return row.Scan(&c.ID, &c.CustomerCode, &c.Name, &c.Phone, &c.Email, &c.Address,
		&c.RegisteredBy, &c.CreatedAt, &c.UpdatedAt)
}

func scanCat(row pgx.Row, c *domain.Cat) error {
	return row.Scan(&c.ID, &c.CatCode, &c.Name, &c.OwnerID, &c.Breed, &c.Gender, &c.Age,
		&c.MedicalNotes, &c.Active, &c.RegisteredBy, &c.CreatedAt)
}
