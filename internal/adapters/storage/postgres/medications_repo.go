package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"med-tracker/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

const medicationColumns = `
	id, owner_user_id,
	name, dosage_value, dosage_unit,
	intake_times, frequency_count, frequency_unit,
	start_date, end_date, notes,
	is_completed, created_at, updated_at
`

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (`+medicationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		m.ID,
		m.OwnerUserID,
		m.Name,
		m.Dosage.Value,
		m.Dosage.Unit,
		strings.Join(m.IntakeTimes, ","),
		m.Frequency.Count,
		string(m.Frequency.Unit),
		m.StartDate,
		toNullDate(m.EndDate),
		m.Notes,
		m.IsCompleted,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications SET
			name = $1,
			dosage_value = $2,
			dosage_unit = $3,
			intake_times = $4,
			frequency_count = $5,
			frequency_unit = $6,
			start_date = $7,
			end_date = $8,
			notes = $9,
			is_completed = $10,
			updated_at = $11
		WHERE id = $12 AND owner_user_id = $13
	`,
		m.Name,
		m.Dosage.Value,
		m.Dosage.Unit,
		strings.Join(m.IntakeTimes, ","),
		m.Frequency.Count,
		string(m.Frequency.Unit),
		m.StartDate,
		toNullDate(m.EndDate),
		m.Notes,
		m.IsCompleted,
		m.UpdatedAt,
		m.ID,
		m.OwnerUserID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, ownerUserID, id string) (medications.Medication, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE id = $1 AND owner_user_id = $2
	`, id, ownerUserID)

	m, err := scanMedication(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, ErrNotFound
		}
		return medications.Medication{}, err
	}
	return m, nil
}

func (r *MedicationsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]medications.Medication, error) {
	return r.list(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
	`, ownerUserID)
}

func (r *MedicationsRepo) ListByDosageUnit(ctx context.Context, ownerUserID, unit string) ([]medications.Medication, error) {
	return r.list(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE owner_user_id = $1 AND dosage_unit = $2
		ORDER BY created_at DESC
	`, ownerUserID, unit)
}

func (r *MedicationsRepo) Delete(ctx context.Context, ownerUserID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM medications
		WHERE id = $1 AND owner_user_id = $2
	`, id, ownerUserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) list(ctx context.Context, query string, args ...any) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMedication(scan func(dest ...any) error) (medications.Medication, error) {
	var m medications.Medication
	var times, freqUnit string
	var end sql.NullTime

	if err := scan(
		&m.ID,
		&m.OwnerUserID,
		&m.Name,
		&m.Dosage.Value,
		&m.Dosage.Unit,
		&times,
		&m.Frequency.Count,
		&freqUnit,
		&m.StartDate,
		&end,
		&m.Notes,
		&m.IsCompleted,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}

	if times != "" {
		m.IntakeTimes = strings.Split(times, ",")
	}
	m.Frequency.Unit = medications.FrequencyUnit(freqUnit)
	m.StartDate = asDate(m.StartDate)
	if end.Valid {
		d := asDate(end.Time)
		m.EndDate = &d
	}

	return m, nil
}

func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// asDate normaliza una columna DATE a medianoche UTC, tal como la maneja el dominio.
func asDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
