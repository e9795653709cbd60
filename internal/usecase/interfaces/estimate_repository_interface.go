package interfaces

import (
	"context"
	"mis_invoicing/internal/domain/entities"
)

// IEstimateRepository abstracts persistence for Estimate.
//
// The invoicing service must be able to:
//   - create an estimate for a client
//   - rewrite items/amounts/status of an existing estimate
//   - list estimates globally or per client

type IEstimateRepository interface {
	Create(ctx context.Context, e entities.Estimate) (entities.Estimate, error)
	GetByID(ctx context.Context, id string) (entities.Estimate, error)
	List(ctx context.Context) ([]entities.Estimate, error)
	ListByClientID(ctx context.Context, clientID string) ([]entities.Estimate, error)
	Update(ctx context.Context, e entities.Estimate) (entities.Estimate, error)
	Delete(ctx context.Context, id string) error
}
