package intakes

import (
	"context"
	"time"
)

type Repository interface {
	// InsertBatch persiste una generación completa en una sola operación.
	// Debe rechazar duplicados de (medication_id, date, time).
	InsertBatch(ctx context.Context, items []Intake) error

	GetByID(ctx context.Context, ownerUserID, id string) (Intake, error)
	List(ctx context.Context, ownerUserID string, filter ListFilter) ([]Intake, error)
	UpdateStatus(ctx context.Context, ownerUserID, id string, status Status) error

	// DeleteByMedication borra en bloque las tomas de un medicamento.
	// Con onlyStatus != nil borra solo las de ese estado (flujo de completar).
	DeleteByMedication(ctx context.Context, ownerUserID, medicationID string, onlyStatus *Status) error
}

type ListFilter struct {
	MedicationID string
	From         *time.Time
	To           *time.Time
}
