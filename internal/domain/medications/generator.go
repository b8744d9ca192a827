package medications

import (
	"time"

	"med-tracker/internal/domain/intakes"

	"github.com/google/uuid"
)

// Generate expande una definición en su secuencia acotada de tomas concretas.
// No toca almacenamiento: el caller persiste el resultado (y borra la
// generación anterior cuando regenera).
//
// La ventana va de StartDate a EndDate inclusive. Sin EndDate se aplica un tope
// de un mes calendario para que una prescripción abierta no genere tomas sin
// límite: el último día generado es el anterior a StartDate+1mes, así una
// prescripción diaria que arranca el 1 de enero produce exactamente los 31 días
// de enero.
func Generate(m Medication) []intakes.Intake {
	end := windowEnd(m)

	step := m.Frequency
	if step.Count < 1 {
		// el cursor siempre debe avanzar; count inválido no pasa la validación,
		// pero el generador no depende de ella para terminar
		step.Count = 1
	}

	out := make([]intakes.Intake, 0)
	for d := dateOnly(m.StartDate); !d.After(end); d = advance(d, step) {
		for _, tod := range m.IntakeTimes {
			out = append(out, intakes.Intake{
				ID:           uuid.NewString(),
				OwnerUserID:  m.OwnerUserID,
				MedicationID: m.ID,
				Date:         d,
				Time:         tod,
				Status:       intakes.StatusPlanned,
			})
		}
	}
	return out
}

func windowEnd(m Medication) time.Time {
	if m.EndDate != nil {
		return dateOnly(*m.EndDate)
	}
	return dateOnly(m.StartDate).AddDate(0, 1, 0).AddDate(0, 0, -1)
}

func advance(d time.Time, f Frequency) time.Time {
	switch f.Unit {
	case FrequencyUnitWeek:
		return d.AddDate(0, 0, 7*f.Count)
	case FrequencyUnitMonth:
		return d.AddDate(0, f.Count, 0)
	default:
		return d.AddDate(0, 0, f.Count)
	}
}
