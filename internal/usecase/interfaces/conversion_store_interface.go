package interfaces

import (
	"context"
	"mis_invoicing/internal/domain/entities"
)

// IConversionStore persists an estimate-to-invoice conversion as one unit of
// work: the CONVERTED estimate and the new invoice are written together or
// not at all.
//
// Implementations must refuse the write when the stored estimate is no longer
// APPROVED (a concurrent conversion won), returning an error wrapping
// entities.ErrInvalidState.
type IConversionStore interface {
	SaveConversion(ctx context.Context, estimate entities.Estimate, invoice entities.Invoice) error
}
