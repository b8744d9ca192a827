package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"med-tracker/internal/domain/intakes"
)

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type intakesRepo struct {
	mu   sync.RWMutex
	byID map[string]intakes.Intake
}

func NewIntakesRepo() intakes.Repository {
	return &intakesRepo{
		byID: make(map[string]intakes.Intake),
	}
}

// InsertBatch inserta la generación completa bajo un solo lock.
// Rechaza la tanda entera si algún slot (medication_id, date, time) ya existe.
func (r *intakesRepo) InsertBatch(ctx context.Context, items []intakes.Intake) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots := map[string]struct{}{}
	for _, it := range r.byID {
		slots[it.MedicationID+"|"+it.SlotKey()] = struct{}{}
	}

	for _, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			return errors.New("intake id required")
		}
		key := it.MedicationID + "|" + it.SlotKey()
		if _, dup := slots[key]; dup {
			return errors.New("intake slot already exists")
		}
		slots[key] = struct{}{}
	}

	for _, it := range items {
		r.byID[it.ID] = it
	}
	return nil
}

func (r *intakesRepo) GetByID(ctx context.Context, ownerUserID, id string) (intakes.Intake, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.byID[id]
	if !ok || it.OwnerUserID != ownerUserID {
		return intakes.Intake{}, ErrNotFound
	}
	return it, nil
}

func (r *intakesRepo) List(ctx context.Context, ownerUserID string, filter intakes.ListFilter) ([]intakes.Intake, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]intakes.Intake, 0)
	for _, it := range r.byID {
		if it.OwnerUserID != ownerUserID {
			continue
		}
		if filter.MedicationID != "" && it.MedicationID != filter.MedicationID {
			continue
		}
		if filter.From != nil && it.Date.Before(dateOnly(*filter.From)) {
			continue
		}
		if filter.To != nil && it.Date.After(dateOnly(*filter.To)) {
			continue
		}
		out = append(out, it)
	}

	// Orden por fecha y hora asc (agenda)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].Time < out[j].Time
		}
		return out[i].Date.Before(out[j].Date)
	})

	return out, nil
}

func (r *intakesRepo) UpdateStatus(ctx context.Context, ownerUserID, id string, status intakes.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.byID[id]
	if !ok || it.OwnerUserID != ownerUserID {
		return ErrNotFound
	}
	it.Status = status
	r.byID[id] = it
	return nil
}

func (r *intakesRepo) DeleteByMedication(ctx context.Context, ownerUserID, medicationID string, onlyStatus *intakes.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, it := range r.byID {
		if it.OwnerUserID != ownerUserID || it.MedicationID != medicationID {
			continue
		}
		if onlyStatus != nil && it.Status != *onlyStatus {
			continue
		}
		delete(r.byID, id)
	}
	return nil
}
