package medications

import "time"

// FrequencyUnit es la unidad del intervalo de repetición.
// @Enum day, week, month
type FrequencyUnit string

const (
	FrequencyUnitDay   FrequencyUnit = "day"
	FrequencyUnitWeek  FrequencyUnit = "week"
	FrequencyUnitMonth FrequencyUnit = "month"
)

// Frequency define cada cuánto se repite un día de tomas.
type Frequency struct {
	Count int // 1..30
	Unit  FrequencyUnit
}

// Dosage es la dosis por toma. Unit referencia una unidad del registro del dueño.
type Dosage struct {
	Value float64 // > 0, <= 9999
	Unit  string
}

// Medication es la definición de una prescripción recurrente.
type Medication struct {
	ID          string
	OwnerUserID string

	Name   string
	Dosage Dosage

	IntakeTimes []string // HH:MM 24h, 1..10 entradas, en el orden dado
	Frequency   Frequency

	StartDate time.Time // solo día; no puede quedar en el futuro al escribir
	EndDate   *time.Time

	Notes string

	IsCompleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	maxNameLen        = 100
	maxNotesLen       = 500
	maxDosageValue    = 9999
	maxIntakeTimes    = 10
	maxFrequencyCount = 30
)
