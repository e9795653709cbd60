package interfaces

import (
	"context"
	"mis_invoicing/internal/domain/entities"
)

// IInvoiceRepository abstracts persistence for Invoice.
//
// UpdateStatus writes the status field only, so reconciliation never
// overwrites concurrent edits of items or amounts.

type IInvoiceRepository interface {
	Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error)
	GetByID(ctx context.Context, id string) (entities.Invoice, error)
	List(ctx context.Context) ([]entities.Invoice, error)
	ListByClientID(ctx context.Context, clientID string) ([]entities.Invoice, error)
	ListByStatus(ctx context.Context, status entities.InvoiceStatus) ([]entities.Invoice, error)
	Update(ctx context.Context, inv entities.Invoice) (entities.Invoice, error)
	UpdateStatus(ctx context.Context, id string, status entities.InvoiceStatus) (entities.Invoice, error)
	Delete(ctx context.Context, id string) error
}
