package medications

import "context"

type Repository interface {
	Create(ctx context.Context, m Medication) error
	Update(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, ownerUserID, id string) (Medication, error)

	// ListByOwner devuelve los medicamentos del dueño, más recientes primero.
	ListByOwner(ctx context.Context, ownerUserID string) ([]Medication, error)

	// ListByDosageUnit devuelve los medicamentos del dueño cuya dosis usa esa unidad.
	ListByDosageUnit(ctx context.Context, ownerUserID, unit string) ([]Medication, error)

	Delete(ctx context.Context, ownerUserID, id string) error
}
