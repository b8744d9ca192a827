package units

import "time"

// Unit es una unidad de dosis permitida para un dueño (mg, ml, ...).
// Cada usuario tiene su propio catálogo; el nombre es único dentro de él.
type Unit struct {
	ID          string
	OwnerUserID string
	Name        string
	CreatedAt   time.Time
}
