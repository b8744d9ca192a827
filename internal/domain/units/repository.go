package units

import "context"

type Repository interface {
	Create(ctx context.Context, u Unit) error
	Update(ctx context.Context, u Unit) error
	GetByID(ctx context.Context, ownerUserID, id string) (Unit, error)
	GetByName(ctx context.Context, ownerUserID, name string) (Unit, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Unit, error)
	Delete(ctx context.Context, ownerUserID, id string) error
}
