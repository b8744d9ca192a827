package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"med-tracker/internal/domain/units"
)

var (
	ErrNotFound = errors.New("not found")
)

type unitsRepo struct {
	mu   sync.RWMutex
	byID map[string]units.Unit
}

func NewUnitsRepo() units.Repository {
	return &unitsRepo{
		byID: make(map[string]units.Unit),
	}
}

func (r *unitsRepo) Create(ctx context.Context, u units.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("unit id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("unit already exists")
	}
	r.byID[u.ID] = u
	return nil
}

func (r *unitsRepo) Update(ctx context.Context, u units.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[u.ID]; !exists {
		return ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *unitsRepo) GetByID(ctx context.Context, ownerUserID, id string) (units.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok || u.OwnerUserID != ownerUserID {
		return units.Unit{}, ErrNotFound
	}
	return u, nil
}

func (r *unitsRepo) GetByName(ctx context.Context, ownerUserID, name string) (units.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.OwnerUserID == ownerUserID && u.Name == name {
			return u, nil
		}
	}
	return units.Unit{}, ErrNotFound
}

func (r *unitsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]units.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]units.Unit, 0)
	for _, u := range r.byID {
		if u.OwnerUserID == ownerUserID {
			out = append(out, u)
		}
	}

	// Orden estable por created_at asc, luego nombre (consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *unitsRepo) Delete(ctx context.Context, ownerUserID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || u.OwnerUserID != ownerUserID {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
