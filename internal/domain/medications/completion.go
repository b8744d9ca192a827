package medications

import (
	"context"
	"fmt"
	"strings"

	"med-tracker/internal/domain/intakes"
)

// Ciclo de vida de cierre de una prescripción: activa -> completada -> borrada.
// Completar conserva el historial (taken/missed) y descarta lo pendiente;
// restaurar vuelve a generar; borrar exige que esté completada.

// Complete marca el medicamento como completado y borra sus tomas planned.
// Las tomas ya taken/missed quedan como historial. Idempotente.
func (s *Service) Complete(ctx context.Context, ownerUserID, id string) (Medication, error) {
	m, err := s.GetByID(ctx, ownerUserID, id)
	if err != nil {
		return Medication{}, err
	}
	if m.IsCompleted {
		return m, nil
	}

	m.IsCompleted = true
	m.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}

	planned := intakes.StatusPlanned
	if err := s.intakes.DeleteByMedication(ctx, ownerUserID, id, &planned); err != nil {
		return Medication{}, err
	}

	return m, nil
}

// Restore reactiva un medicamento completado y regenera sus tomas a partir de
// la definición (sin cambios). Los slots que sobrevivieron como historial no se
// duplican; el resto se reinserta como planned, incluyendo fechas ya pasadas.
func (s *Service) Restore(ctx context.Context, ownerUserID, id string) (Medication, error) {
	m, err := s.GetByID(ctx, ownerUserID, id)
	if err != nil {
		return Medication{}, err
	}
	if !m.IsCompleted {
		return m, nil
	}

	m.IsCompleted = false
	m.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}

	existing, err := s.intakes.List(ctx, ownerUserID, intakes.ListFilter{MedicationID: id})
	if err != nil {
		return Medication{}, err
	}
	taken := map[string]struct{}{}
	for _, it := range existing {
		taken[it.SlotKey()] = struct{}{}
	}

	generated := Generate(m)
	missing := make([]intakes.Intake, 0, len(generated))
	for _, it := range generated {
		if _, ok := taken[it.SlotKey()]; ok {
			continue
		}
		missing = append(missing, it)
	}

	if err := s.intakes.InsertBatch(ctx, missing); err != nil {
		return Medication{}, err
	}

	return m, nil
}

// Delete elimina definitivamente un medicamento completado junto con todas sus
// tomas restantes. Sobre uno activo falla: completar primero es la precondición.
func (s *Service) Delete(ctx context.Context, ownerUserID, id string) error {
	ownerUserID = strings.TrimSpace(ownerUserID)
	id = strings.TrimSpace(id)
	if ownerUserID == "" || id == "" {
		return ErrInvalidInput
	}

	m, err := s.repo.GetByID(ctx, ownerUserID, id)
	if err != nil {
		return ErrNotFound
	}
	if !m.IsCompleted {
		return fmt.Errorf("%w: medication must be completed before deletion", ErrBadState)
	}

	if err := s.intakes.DeleteByMedication(ctx, ownerUserID, id, nil); err != nil {
		return err
	}
	return s.repo.Delete(ctx, ownerUserID, id)
}
