package intakes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

// ScheduleSource expone el snapshot del medicamento dueño de una toma.
// Definido acá para evitar ciclos de imports entre módulos
// (medications importa intakes para generar; intakes solo conoce esta interfaz).
type ScheduleSource interface {
	Snapshot(ctx context.Context, ownerUserID, medicationID string) (ScheduleSnapshot, error)
}

type Service struct {
	repo      Repository
	schedules ScheduleSource
	now       func() time.Time
}

func NewService(repo Repository, schedules ScheduleSource) *Service {
	return &Service{
		repo:      repo,
		schedules: schedules,
		now:       time.Now,
	}
}

// List devuelve las tomas del dueño, con filtro opcional por medicamento
// y por rango de fechas. Cada toma sale anotada con el snapshot de su medicamento.
func (s *Service) List(ctx context.Context, ownerUserID string, filter ListFilter) ([]IntakeWithSchedule, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}
	filter.MedicationID = strings.TrimSpace(filter.MedicationID)

	items, err := s.repo.List(ctx, ownerUserID, filter)
	if err != nil {
		return nil, err
	}

	// Join en lectura: un snapshot por medicamento, cacheado para la pasada.
	snapshots := map[string]ScheduleSnapshot{}
	out := make([]IntakeWithSchedule, 0, len(items))

	for _, it := range items {
		snap, ok := snapshots[it.MedicationID]
		if !ok {
			snap, err = s.schedules.Snapshot(ctx, ownerUserID, it.MedicationID)
			if err != nil {
				// tolera tomas huérfanas (borrado parcial en curso)
				continue
			}
			snapshots[it.MedicationID] = snap
		}
		out = append(out, IntakeWithSchedule{Intake: it, Schedule: snap})
	}

	return out, nil
}

// SetStatus aplica una transición de estado a una toma.
// Volver a planned solo se permite si la fecha de la toma no quedó en el pasado
// (el mismo día sí se permite).
func (s *Service) SetStatus(ctx context.Context, ownerUserID, intakeID string, status Status) (IntakeWithSchedule, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	intakeID = strings.TrimSpace(intakeID)
	if ownerUserID == "" || intakeID == "" {
		return IntakeWithSchedule{}, ErrInvalidInput
	}

	switch status {
	case StatusPlanned, StatusTaken, StatusMissed:
	default:
		return IntakeWithSchedule{}, fmt.Errorf("%w: status must be one of planned, taken, missed", ErrInvalidInput)
	}

	it, err := s.repo.GetByID(ctx, ownerUserID, intakeID)
	if err != nil {
		return IntakeWithSchedule{}, ErrNotFound
	}

	if status == StatusPlanned {
		today := dateOnly(s.now())
		if it.Date.Before(today) {
			return IntakeWithSchedule{}, fmt.Errorf("%w: a past intake cannot go back to planned", ErrBadState)
		}
	}

	if err := s.repo.UpdateStatus(ctx, ownerUserID, intakeID, status); err != nil {
		return IntakeWithSchedule{}, err
	}
	it.Status = status

	snap, err := s.schedules.Snapshot(ctx, ownerUserID, it.MedicationID)
	if err != nil {
		return IntakeWithSchedule{Intake: it}, nil
	}
	return IntakeWithSchedule{Intake: it, Schedule: snap}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
