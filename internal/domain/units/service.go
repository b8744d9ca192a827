package units

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("unit already exists")
	ErrUnitInUse    = errors.New("unit in use")
)

const maxUnitNameLen = 20

// defaultUnits se siembran la primera vez que un dueño consulta su catálogo.
var defaultUnits = []string{"mg", "ml", "tablets", "drops", "ampoules"}

// ScheduleUnits es lo que el registro necesita de las prescripciones para
// renombrar en cascada y para proteger el borrado de una unidad en uso.
// Definido acá para evitar ciclos de imports; se enlaza con BindSchedules
// después de construir ambos servicios (ver router).
type ScheduleUnits interface {
	RenameDosageUnit(ctx context.Context, ownerUserID, oldName, newName string) (int, error)
	DosageUnitInUse(ctx context.Context, ownerUserID, name string) (bool, error)
}

type Service struct {
	repo      Repository
	schedules ScheduleUnits
	now       func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// BindSchedules enlaza el colaborador de prescripciones. Separado del
// constructor porque medications también depende de este servicio para
// validar unidades (dependencia mutua, sin ciclo de imports).
func (s *Service) BindSchedules(schedules ScheduleUnits) {
	s.schedules = schedules
}

// List devuelve el catálogo del dueño. La primera llamada siembra los
// defaults; la siembra es idempotente: solo crea los nombres que faltan.
func (s *Service) List(ctx context.Context, ownerUserID string) ([]Unit, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.repo.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	have := map[string]struct{}{}
	for _, u := range existing {
		have[u.Name] = struct{}{}
	}

	seeded := false
	for _, name := range defaultUnits {
		if _, ok := have[name]; ok {
			continue
		}
		u := Unit{
			ID:          uuid.NewString(),
			OwnerUserID: ownerUserID,
			Name:        name,
			CreatedAt:   s.now(),
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, err
		}
		seeded = true
	}

	if !seeded {
		return existing, nil
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) Create(ctx context.Context, ownerUserID, name string) (Unit, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Unit{}, ErrInvalidInput
	}

	name, err := validName(name)
	if err != nil {
		return Unit{}, err
	}

	if _, err := s.repo.GetByName(ctx, ownerUserID, name); err == nil {
		return Unit{}, fmt.Errorf("%w: %s", ErrConflict, name)
	}

	u := Unit{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        name,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return Unit{}, err
	}
	return u, nil
}

// Rename cambia el nombre de la unidad y reescribe dosage.unit en cada
// prescripción del dueño que usaba el nombre anterior. Es la única escritura
// cruzada que hace el registro.
func (s *Service) Rename(ctx context.Context, ownerUserID, id, newName string) (Unit, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	id = strings.TrimSpace(id)
	if ownerUserID == "" || id == "" {
		return Unit{}, ErrInvalidInput
	}

	newName, err := validName(newName)
	if err != nil {
		return Unit{}, err
	}

	u, err := s.repo.GetByID(ctx, ownerUserID, id)
	if err != nil {
		return Unit{}, ErrNotFound
	}
	if u.Name == newName {
		return u, nil
	}

	if _, err := s.repo.GetByName(ctx, ownerUserID, newName); err == nil {
		return Unit{}, fmt.Errorf("%w: %s", ErrConflict, newName)
	}

	oldName := u.Name
	u.Name = newName
	if err := s.repo.Update(ctx, u); err != nil {
		return Unit{}, err
	}

	if s.schedules != nil {
		if _, err := s.schedules.RenameDosageUnit(ctx, ownerUserID, oldName, newName); err != nil {
			return Unit{}, err
		}
	}

	return u, nil
}

// Delete elimina la unidad. Falla mientras alguna prescripción del dueño la use.
func (s *Service) Delete(ctx context.Context, ownerUserID, id string) error {
	ownerUserID = strings.TrimSpace(ownerUserID)
	id = strings.TrimSpace(id)
	if ownerUserID == "" || id == "" {
		return ErrInvalidInput
	}

	u, err := s.repo.GetByID(ctx, ownerUserID, id)
	if err != nil {
		return ErrNotFound
	}

	if s.schedules != nil {
		inUse, err := s.schedules.DosageUnitInUse(ctx, ownerUserID, u.Name)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("%w: %s is referenced by a medication", ErrUnitInUse, u.Name)
		}
	}

	return s.repo.Delete(ctx, ownerUserID, id)
}

// Exists implementa medications.UnitCatalog.
func (s *Service) Exists(ctx context.Context, ownerUserID, name string) (bool, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	name = strings.TrimSpace(name)
	if ownerUserID == "" || name == "" {
		return false, nil
	}
	if _, err := s.repo.GetByName(ctx, ownerUserID, name); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		// los repos devuelven su propio not found; cualquier otro error sube
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(name) > maxUnitNameLen {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, maxUnitNameLen)
	}
	return name, nil
}
