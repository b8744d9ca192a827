package sqlite

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
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		m.ID,
		m.OwnerUserID,
		m.Name,
		m.Dosage.Value,
		m.Dosage.Unit,
		strings.Join(m.IntakeTimes, ","),
		m.Frequency.Count,
		string(m.Frequency.Unit),
		formatDate(m.StartDate),
		nullableDate(m.EndDate),
		m.Notes,
		m.IsCompleted,
		formatTimestamp(m.CreatedAt),
		formatTimestamp(m.UpdatedAt),
	)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications SET
			name = ?,
			dosage_value = ?,
			dosage_unit = ?,
			intake_times = ?,
			frequency_count = ?,
			frequency_unit = ?,
			start_date = ?,
			end_date = ?,
			notes = ?,
			is_completed = ?,
			updated_at = ?
		WHERE id = ? AND owner_user_id = ?
	`,
		m.Name,
		m.Dosage.Value,
		m.Dosage.Unit,
		strings.Join(m.IntakeTimes, ","),
		m.Frequency.Count,
		string(m.Frequency.Unit),
		formatDate(m.StartDate),
		nullableDate(m.EndDate),
		m.Notes,
		m.IsCompleted,
		formatTimestamp(m.UpdatedAt),
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
		WHERE id = ? AND owner_user_id = ?
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
		WHERE owner_user_id = ?
		ORDER BY created_at DESC
	`, ownerUserID)
}

func (r *MedicationsRepo) ListByDosageUnit(ctx context.Context, ownerUserID, unit string) ([]medications.Medication, error) {
	return r.list(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE owner_user_id = ? AND dosage_unit = ?
		ORDER BY created_at DESC
	`, ownerUserID, unit)
}

func (r *MedicationsRepo) Delete(ctx context.Context, ownerUserID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM medications
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
	var times, freqUnit, start, created, updated string
	var end sql.NullString

	if err := scan(
		&m.ID,
		&m.OwnerUserID,
		&m.Name,
		&m.Dosage.Value,
		&m.Dosage.Unit,
		&times,
		&m.Frequency.Count,
		&freqUnit,
		&start,
		&end,
		&m.Notes,
		&m.IsCompleted,
		&created,
		&updated,
	); err != nil {
		return medications.Medication{}, err
	}

	if times != "" {
		m.IntakeTimes = strings.Split(times, ",")
	}
	m.Frequency.Unit = medications.FrequencyUnit(freqUnit)

	var err error
	if m.StartDate, err = parseDate(start); err != nil {
		return medications.Medication{}, err
	}
	if end.Valid {
		d, err := parseDate(end.String)
		if err != nil {
			return medications.Medication{}, err
		}
		m.EndDate = &d
	}
	if m.CreatedAt, err = parseTimestamp(created); err != nil {
		return medications.Medication{}, err
	}
	if m.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return medications.Medication{}, err
	}

	return m, nil
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}
