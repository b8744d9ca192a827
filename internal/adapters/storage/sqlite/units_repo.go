package sqlite

import (
	"context"
	"database/sql"

	"med-tracker/internal/domain/units"
)

type UnitsRepo struct {
	db *sql.DB
}

func NewUnitsRepo(db *sql.DB) *UnitsRepo {
	return &UnitsRepo{db: db}
}

func (r *UnitsRepo) Create(ctx context.Context, u units.Unit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dosage_units (id, owner_user_id, name, created_at)
		VALUES (?,?,?,?)
	`, u.ID, u.OwnerUserID, u.Name, formatTimestamp(u.CreatedAt))
	return err
}

func (r *UnitsRepo) Update(ctx context.Context, u units.Unit) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE dosage_units
		SET name = ?
		WHERE id = ? AND owner_user_id = ?
	`, u.Name, u.ID, u.OwnerUserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UnitsRepo) GetByID(ctx context.Context, ownerUserID, id string) (units.Unit, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_user_id, name, created_at
		FROM dosage_units
		WHERE id = ? AND owner_user_id = ?
	`, id, ownerUserID)
	return scanUnit(row)
}

func (r *UnitsRepo) GetByName(ctx context.Context, ownerUserID, name string) (units.Unit, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_user_id, name, created_at
		FROM dosage_units
		WHERE owner_user_id = ? AND name = ?
	`, ownerUserID, name)
	return scanUnit(row)
}

func (r *UnitsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]units.Unit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_user_id, name, created_at
		FROM dosage_units
		WHERE owner_user_id = ?
		ORDER BY created_at ASC, name ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]units.Unit, 0)
	for rows.Next() {
		var u units.Unit
		var created string
		if err := rows.Scan(&u.ID, &u.OwnerUserID, &u.Name, &created); err != nil {
			return nil, err
		}
		if u.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UnitsRepo) Delete(ctx context.Context, ownerUserID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM dosage_units
		WHERE id = ? AND owner_user_id = ?
	`, id, ownerUserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUnit(row *sql.Row) (units.Unit, error) {
	var u units.Unit
	var created string
	if err := row.Scan(&u.ID, &u.OwnerUserID, &u.Name, &created); err != nil {
		if err == sql.ErrNoRows {
			return units.Unit{}, ErrNotFound
		}
		return units.Unit{}, err
	}
	t, err := parseTimestamp(created)
	if err != nil {
		return units.Unit{}, err
	}
	u.CreatedAt = t
	return u, nil
}
