package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"med-tracker/internal/domain/intakes"
)

type IntakesRepo struct {
	db *sql.DB
}

func NewIntakesRepo(db *sql.DB) *IntakesRepo {
	return &IntakesRepo{db: db}
}

// InsertBatch inserta la generación completa en una transacción: o entra toda
// la tanda o no entra nada. El índice único sobre (medication_id, date, time)
// hace abortar la transacción ante un slot duplicado.
func (r *IntakesRepo) InsertBatch(ctx context.Context, items []intakes.Intake) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO medication_intakes (id, owner_user_id, medication_id, date, time, status)
			VALUES ($1,$2,$3,$4,$5,$6)
		`,
			it.ID,
			it.OwnerUserID,
			it.MedicationID,
			it.Date,
			it.Time,
			string(it.Status),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *IntakesRepo) GetByID(ctx context.Context, ownerUserID, id string) (intakes.Intake, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_user_id, medication_id, date, time, status
		FROM medication_intakes
		WHERE id = $1 AND owner_user_id = $2
	`, id, ownerUserID)

	var it intakes.Intake
	var status string
	if err := row.Scan(&it.ID, &it.OwnerUserID, &it.MedicationID, &it.Date, &it.Time, &status); err != nil {
		if err == sql.ErrNoRows {
			return intakes.Intake{}, ErrNotFound
		}
		return intakes.Intake{}, err
	}
	it.Date = asDate(it.Date)
	it.Status = intakes.Status(status)
	return it, nil
}

func (r *IntakesRepo) List(ctx context.Context, ownerUserID string, filter intakes.ListFilter) ([]intakes.Intake, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT id, owner_user_id, medication_id, date, time, status
		FROM medication_intakes
		WHERE owner_user_id = $1
	`)

	args := []any{ownerUserID}
	argN := 2

	if filter.MedicationID != "" {
		sb.WriteString(fmt.Sprintf(" AND medication_id = $%d", argN))
		args = append(args, filter.MedicationID)
		argN++
	}
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND date >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND date <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	sb.WriteString(" ORDER BY date ASC, time ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]intakes.Intake, 0)
	for rows.Next() {
		var it intakes.Intake
		var status string
		if err := rows.Scan(&it.ID, &it.OwnerUserID, &it.MedicationID, &it.Date, &it.Time, &status); err != nil {
			return nil, err
		}
		it.Date = asDate(it.Date)
		it.Status = intakes.Status(status)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *IntakesRepo) UpdateStatus(ctx context.Context, ownerUserID, id string, status intakes.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medication_intakes
		SET status = $1
		WHERE id = $2 AND owner_user_id = $3
	`, string(status), id, ownerUserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *IntakesRepo) DeleteByMedication(ctx context.Context, ownerUserID, medicationID string, onlyStatus *intakes.Status) error {
	query := `
		DELETE FROM medication_intakes
		WHERE owner_user_id = $1 AND medication_id = $2
	`
	args := []any{ownerUserID, medicationID}

	if onlyStatus != nil {
		query += " AND status = $3"
		args = append(args, string(*onlyStatus))
	}

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}
