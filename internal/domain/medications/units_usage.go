package medications

import (
	"context"
	"strings"
)

// Integración con el registro de unidades (units.ScheduleUnits).
// El registro no conoce este módulo: le alcanza con estas dos operaciones para
// renombrar en cascada y para proteger el borrado de una unidad en uso.

// RenameDosageUnit reescribe dosage.unit en cada medicamento del dueño que
// usa oldName. Devuelve cuántos medicamentos se reescribieron.
func (s *Service) RenameDosageUnit(ctx context.Context, ownerUserID, oldName, newName string) (int, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if ownerUserID == "" || oldName == "" || newName == "" {
		return 0, ErrInvalidInput
	}

	items, err := s.repo.ListByDosageUnit(ctx, ownerUserID, oldName)
	if err != nil {
		return 0, err
	}

	now := s.now()
	count := 0
	for _, m := range items {
		m.Dosage.Unit = newName
		m.UpdatedAt = now
		if err := s.repo.Update(ctx, m); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// DosageUnitInUse responde si algún medicamento del dueño usa la unidad.
func (s *Service) DosageUnitInUse(ctx context.Context, ownerUserID, name string) (bool, error) {
	items, err := s.repo.ListByDosageUnit(ctx, strings.TrimSpace(ownerUserID), strings.TrimSpace(name))
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}
