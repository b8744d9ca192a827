package medications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"med-tracker/internal/domain/intakes"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

// UnitCatalog es la vista que este módulo necesita del registro de unidades:
// solo saber si una unidad existe para el dueño. Se define acá para no acoplar
// medications a la implementación de units.
type UnitCatalog interface {
	Exists(ctx context.Context, ownerUserID, name string) (bool, error)
}

type Service struct {
	repo    Repository
	intakes intakes.Repository
	units   UnitCatalog
	now     func() time.Time
}

func NewService(repo Repository, intakeRepo intakes.Repository, units UnitCatalog) *Service {
	return &Service{
		repo:    repo,
		intakes: intakeRepo,
		units:   units,
		now:     time.Now,
	}
}

// Input son los campos de creación/edición. Update recibe el set completo,
// no hay edición parcial de una prescripción.
type Input struct {
	Name           string
	DosageValue    float64
	DosageUnit     string
	IntakeTimes    []string
	FrequencyCount int
	FrequencyUnit  string
	StartDate      time.Time
	EndDate        *time.Time
	Notes          string
}

// Create valida la definición completa, la persiste y deja el ledger de tomas
// poblado antes de retornar.
func (s *Service) Create(ctx context.Context, ownerUserID string, in Input) (Medication, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Medication{}, ErrInvalidInput
	}

	norm, err := s.validate(ctx, ownerUserID, in)
	if err != nil {
		return Medication{}, err
	}

	now := s.now()
	m := Medication{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        norm.Name,
		Dosage:      Dosage{Value: norm.DosageValue, Unit: norm.DosageUnit},
		IntakeTimes: norm.IntakeTimes,
		Frequency:   Frequency{Count: norm.FrequencyCount, Unit: FrequencyUnit(norm.FrequencyUnit)},
		StartDate:   dateOnly(norm.StartDate),
		EndDate:     norm.EndDate,
		Notes:       norm.Notes,
		IsCompleted: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}

	if err := s.intakes.InsertBatch(ctx, Generate(m)); err != nil {
		return Medication{}, err
	}

	return m, nil
}

// Update aplica el contrato de validación completo y regenera el ledger:
// borra todas las tomas existentes del medicamento y vuelve a generar desde la
// definición nueva. Eso descarta el estado registrado (taken/missed) de cada
// slot; ver los tests de regeneración, que documentan esta pérdida.
func (s *Service) Update(ctx context.Context, ownerUserID, id string, in Input) (Medication, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	id = strings.TrimSpace(id)
	if ownerUserID == "" || id == "" {
		return Medication{}, ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, ownerUserID, id)
	if err != nil {
		return Medication{}, ErrNotFound
	}

	norm, err := s.validate(ctx, ownerUserID, in)
	if err != nil {
		return Medication{}, err
	}

	m := current
	m.Name = norm.Name
	m.Dosage = Dosage{Value: norm.DosageValue, Unit: norm.DosageUnit}
	m.IntakeTimes = norm.IntakeTimes
	m.Frequency = Frequency{Count: norm.FrequencyCount, Unit: FrequencyUnit(norm.FrequencyUnit)}
	m.StartDate = dateOnly(norm.StartDate)
	m.EndDate = norm.EndDate
	m.Notes = norm.Notes
	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}

	if err := s.intakes.DeleteByMedication(ctx, ownerUserID, id, nil); err != nil {
		return Medication{}, err
	}
	if err := s.intakes.InsertBatch(ctx, Generate(m)); err != nil {
		return Medication{}, err
	}

	return m, nil
}

func (s *Service) GetByID(ctx context.Context, ownerUserID, id string) (Medication, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	id = strings.TrimSpace(id)
	if ownerUserID == "" || id == "" {
		return Medication{}, ErrInvalidInput
	}
	m, err := s.repo.GetByID(ctx, ownerUserID, id)
	if err != nil {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Medication, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// validate aplica el contrato completo de escritura. Devuelve el input
// normalizado; cualquier violación nombra el primer campo ofensor.
func (s *Service) validate(ctx context.Context, ownerUserID string, in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.DosageUnit = strings.TrimSpace(in.DosageUnit)
	in.FrequencyUnit = strings.TrimSpace(in.FrequencyUnit)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.Name == "" {
		return Input{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(in.Name) > maxNameLen {
		return Input{}, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, maxNameLen)
	}

	if in.DosageValue <= 0 {
		return Input{}, fmt.Errorf("%w: dosage_value must be positive", ErrInvalidInput)
	}
	if in.DosageValue > maxDosageValue {
		return Input{}, fmt.Errorf("%w: dosage_value must be at most %d", ErrInvalidInput, maxDosageValue)
	}

	if in.DosageUnit == "" {
		return Input{}, fmt.Errorf("%w: dosage_unit is required", ErrInvalidInput)
	}
	exists, err := s.units.Exists(ctx, ownerUserID, in.DosageUnit)
	if err != nil {
		return Input{}, err
	}
	if !exists {
		return Input{}, fmt.Errorf("%w: dosage_unit %q is not registered", ErrInvalidInput, in.DosageUnit)
	}

	if len(in.IntakeTimes) == 0 {
		return Input{}, fmt.Errorf("%w: intake_times must have at least one entry", ErrInvalidInput)
	}
	if len(in.IntakeTimes) > maxIntakeTimes {
		return Input{}, fmt.Errorf("%w: intake_times must have at most %d entries", ErrInvalidInput, maxIntakeTimes)
	}
	seen := map[string]struct{}{}
	times := make([]string, 0, len(in.IntakeTimes))
	for _, raw := range in.IntakeTimes {
		t := strings.TrimSpace(raw)
		if !validTimeOfDay(t) {
			return Input{}, fmt.Errorf("%w: intake_times entry %q must be HH:MM (24h)", ErrInvalidInput, raw)
		}
		if _, dup := seen[t]; dup {
			return Input{}, fmt.Errorf("%w: intake_times entry %q is duplicated", ErrInvalidInput, t)
		}
		seen[t] = struct{}{}
		times = append(times, t)
	}
	in.IntakeTimes = times

	if in.FrequencyCount < 1 || in.FrequencyCount > maxFrequencyCount {
		return Input{}, fmt.Errorf("%w: frequency_count must be between 1 and %d", ErrInvalidInput, maxFrequencyCount)
	}
	switch FrequencyUnit(in.FrequencyUnit) {
	case FrequencyUnitDay, FrequencyUnitWeek, FrequencyUnitMonth:
	default:
		return Input{}, fmt.Errorf("%w: frequency_unit must be one of day, week, month", ErrInvalidInput)
	}

	if in.StartDate.IsZero() {
		return Input{}, fmt.Errorf("%w: start_date is required", ErrInvalidInput)
	}
	today := dateOnly(s.now())
	if dateOnly(in.StartDate).After(today) {
		return Input{}, fmt.Errorf("%w: start_date must not be in the future", ErrInvalidInput)
	}

	if in.EndDate != nil {
		end := dateOnly(*in.EndDate)
		if end.Before(dateOnly(in.StartDate)) {
			return Input{}, fmt.Errorf("%w: end_date must not precede start_date", ErrInvalidInput)
		}
		in.EndDate = &end
	}

	if len(in.Notes) > maxNotesLen {
		return Input{}, fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, maxNotesLen)
	}

	return in, nil
}

// validTimeOfDay exige HH:MM estricto (dos dígitos, 24h).
func validTimeOfDay(s string) bool {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return false
	}
	return t.Format("15:04") == s
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
