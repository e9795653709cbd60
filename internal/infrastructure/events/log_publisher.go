// Package events delivers invoice status events.
package events

import (
	"context"
	"log"

	"mis_invoicing/internal/usecase/interfaces"
)

// LogPublisher only logs events. Used when no broker is configured.
type LogPublisher struct{}

var _ interfaces.IInvoiceEventPublisher = LogPublisher{}

func (LogPublisher) PublishInvoiceStatusChanged(_ context.Context, event interfaces.InvoiceStatusChanged) error {
	log.Printf("[events][log] invoice status changed invoice_id=%s number=%s from=%s to=%s paid=%s total=%s",
		event.InvoiceID, event.InvoiceNumber, event.From, event.To, event.PaidAmount, event.Total)
	return nil
}
