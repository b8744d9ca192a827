package medications

import (
	"context"

	"med-tracker/internal/domain/intakes"
)

// Snapshot expone la vista mínima del medicamento que el ledger anota al
// listar tomas. Implementa intakes.ScheduleSource; la interfaz vive en intakes
// para evitar ciclos de imports entre módulos (medications -> intakes).
func (s *Service) Snapshot(ctx context.Context, ownerUserID, medicationID string) (intakes.ScheduleSnapshot, error) {
	m, err := s.GetByID(ctx, ownerUserID, medicationID)
	if err != nil {
		return intakes.ScheduleSnapshot{}, err
	}
	return intakes.ScheduleSnapshot{
		Name:        m.Name,
		DosageValue: m.Dosage.Value,
		DosageUnit:  m.Dosage.Unit,
	}, nil
}
