package repository

import "context"

// SeedDefaults installs the standard service catalog on first boot. Existing
// rows are left alone so branch managers can retune points and prices.
func (r CatalogRepository) SeedDefaults(ctx context.Context) error {
	groups := []struct {
		code string
		name string
		sort int
	}{
		{"GRP-GROOM", "Grooming", 1},
		{"GRP-TREAT", "Treatment", 2},
		{"GRP-COMBO", "Combo Packages", 3},
		{"GRP-ADDON", "Add-ons", 4},
	}
	for _, g := range groups {
		if _, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO task_groups (group_code, name, sort_order)
			VALUES ($1, $2, $3)
			ON CONFLICT (group_code) DO NOTHING
		`, g.code, g.name, g.sort); err != nil {
			return err
		}
	}

	types := []struct {
		code     string
		group    string
		name     string
		points   int
		price    int64
		sessions int
		sort     int
	}{
		{"TT-BASIC", "GRP-GROOM", "Basic Grooming", 10, 5000, 0, 1},
		{"TT-FULL", "GRP-GROOM", "Full Grooming", 20, 8000, 0, 2},
		{"TT-MEDICATED", "GRP-TREAT", "Medicated Bath", 25, 10000, 0, 1},
		{"TT-FLEA", "GRP-TREAT", "Flea Treatment", 15, 6000, 0, 2},
		{"TT-COMBO5", "GRP-COMBO", "5-Session Grooming Combo", 45, 22500, 5, 1},
		{"TT-COMBO10", "GRP-COMBO", "10-Session Grooming Combo", 80, 40000, 10, 2},
		{"TT-NAILS", "GRP-ADDON", "Nail Trim", 5, 1500, 0, 1},
		{"TT-EARS", "GRP-ADDON", "Ear Cleaning", 5, 1500, 0, 2},
	}
	for _, t := range types {
		if _, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO task_types (type_code, group_id, name, points, price, combo_sessions, sort_order)
			SELECT $1, g.id, $3, $4, $5, $6, $7
			FROM task_groups g
			WHERE g.group_code = $2
			ON CONFLICT (type_code) DO NOTHING
		`, t.code, t.group, t.name, t.points, t.price, t.sessions, t.sort); err != nil {
			return err
		}
	}
	return nil
}
