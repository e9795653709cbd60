package interfaces

import (
	"context"
	"time"

	"mis_invoicing/internal/domain/entities"
)

// InvoiceStatusChanged is emitted when reconciliation flips an invoice status.
type InvoiceStatusChanged struct {
	InvoiceID     string                 `json:"invoice_id"`
	InvoiceNumber string                 `json:"invoice_number"`
	ClientID      string                 `json:"client_id"`
	From          entities.InvoiceStatus `json:"from"`
	To            entities.InvoiceStatus `json:"to"`
	PaidAmount    string                 `json:"paid_amount"`
	Total         string                 `json:"total"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

// IInvoiceEventPublisher delivers invoice status events (e.g. to Kafka).
type IInvoiceEventPublisher interface {
	PublishInvoiceStatusChanged(ctx context.Context, event InvoiceStatusChanged) error
}
