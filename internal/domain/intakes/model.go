package intakes

import "time"

// Status es el estado de una toma concreta.
// @Enum planned, taken, missed
type Status string

const (
	StatusPlanned Status = "planned"
	StatusTaken   Status = "taken"
	StatusMissed  Status = "missed"
)

// Intake es una obligación de toma concreta: un (día, hora) derivado de la
// definición de un medicamento. Se crea únicamente por generación; nunca a mano.
type Intake struct {
	ID           string
	OwnerUserID  string
	MedicationID string

	Date time.Time // solo día (medianoche UTC)
	Time string    // HH:MM, copiado de la definición al generar

	Status Status
}

// ScheduleSnapshot es la vista mínima del medicamento que acompaña cada toma
// al listar (join en lectura, no se persiste denormalizado).
type ScheduleSnapshot struct {
	Name        string
	DosageValue float64
	DosageUnit  string
}

// IntakeWithSchedule es lo que devuelve el ledger hacia afuera.
type IntakeWithSchedule struct {
	Intake
	Schedule ScheduleSnapshot
}

// SlotKey identifica el slot (fecha, hora) dentro de un medicamento.
// La tripleta (MedicationID, Date, Time) es única en el ledger.
func (i Intake) SlotKey() string {
	return i.Date.Format("2006-01-02") + "|" + i.Time
}
