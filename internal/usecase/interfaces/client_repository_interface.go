package interfaces

import (
	"context"
	"mis_invoicing/internal/domain/entities"
)

// IClientRepository abstracts persistence for Client.
//
// Like every repository here, lookups return a zero-value entity and a nil
// error when the item does not exist.

type IClientRepository interface {
	Create(ctx context.Context, c entities.Client) (entities.Client, error)
	GetByID(ctx context.Context, id string) (entities.Client, error)
	List(ctx context.Context) ([]entities.Client, error)
	Update(ctx context.Context, c entities.Client) (entities.Client, error)
	Delete(ctx context.Context, id string) error
}
