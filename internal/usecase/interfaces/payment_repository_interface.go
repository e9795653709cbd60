package interfaces

import (
	"context"
	"mis_invoicing/internal/domain/entities"
)

// IPaymentRepository abstracts persistence for Payment.
//
// ListByInvoiceID must see every payment written or deleted before the call
// returns; reconciliation sums its result. Delete is addressed by invoice and
// payment id.

type IPaymentRepository interface {
	Create(ctx context.Context, p entities.Payment) (entities.Payment, error)
	GetByID(ctx context.Context, id string) (entities.Payment, error)
	List(ctx context.Context) ([]entities.Payment, error)
	ListByInvoiceID(ctx context.Context, invoiceID string) ([]entities.Payment, error)
	Delete(ctx context.Context, invoiceID, id string) error
}
