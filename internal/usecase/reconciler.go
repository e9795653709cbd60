package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"mis_invoicing/internal/domain/billing"
	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase/interfaces"
)

var (
	ErrInvoiceNotFound   = fmt.Errorf("invoice %w", entities.ErrNotFound)
	ErrInvalidInvoiceID  = errors.New("invalid invoice id")
	ErrInvalidClientID   = errors.New("invalid client_id")
	ErrClientNotFound    = fmt.Errorf("client %w", entities.ErrNotFound)
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidStatus     = fmt.Errorf("%w: unknown status", entities.ErrInvalidState)
	ErrLockNotAcquired   = errors.New("invoice lock not acquired")
	ErrMissingRepository = errors.New("repository not configured")
)

// Reconciler re-derives an invoice's PENDING/PAID status from every payment
// linked to it. Runs are serialized per invoice through the locker, so two
// payments recorded at once cannot lose an update.
type Reconciler struct {
	invoices  interfaces.IInvoiceRepository
	payments  interfaces.IPaymentRepository
	locker    interfaces.IInvoiceLocker
	publisher interfaces.IInvoiceEventPublisher
}

func NewReconciler(invoices interfaces.IInvoiceRepository, payments interfaces.IPaymentRepository, locker interfaces.IInvoiceLocker, publisher interfaces.IInvoiceEventPublisher) *Reconciler {
	return &Reconciler{invoices: invoices, payments: payments, locker: locker, publisher: publisher}
}

// Reconcile loads the invoice and all of its payments, derives the status and
// persists it when it changed. Calling it again without new payments is a
// no-op.
func (r *Reconciler) Reconcile(ctx context.Context, invoiceID string) (entities.Invoice, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return entities.Invoice{}, ErrInvalidInvoiceID
	}

	var out entities.Invoice
	err := r.WithLock(ctx, invoiceID, func(ctx context.Context) error {
		var err error
		out, err = r.reconcileLocked(ctx, invoiceID)
		return err
	})
	return out, err
}

// WithLock runs fn while holding the invoice lock. Payment writes run their
// insert or delete and the following reconcile inside one WithLock call.
func (r *Reconciler) WithLock(ctx context.Context, invoiceID string, fn func(ctx context.Context) error) error {
	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, invoiceID)
		if err != nil {
			log.Printf("[invoice][reconcile] lock failed invoice_id=%s err=%v", invoiceID, err)
			return fmt.Errorf("%w: %v", ErrLockNotAcquired, err)
		}
		defer unlock()
	}
	return fn(ctx)
}

// reconcileLocked expects the caller to hold the invoice lock.
func (r *Reconciler) reconcileLocked(ctx context.Context, invoiceID string) (entities.Invoice, error) {
	if r.invoices == nil || r.payments == nil {
		return entities.Invoice{}, ErrMissingRepository
	}
	inv, err := r.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return entities.Invoice{}, err
	}
	if inv.ID == "" {
		return entities.Invoice{}, ErrInvoiceNotFound
	}

	payments, err := r.payments.ListByInvoiceID(ctx, invoiceID)
	if err != nil {
		return entities.Invoice{}, err
	}

	updated := billing.ReconcileInvoiceStatus(inv, payments)
	paid := billing.PaidAmount(inv, payments)
	if updated.Status == inv.Status {
		log.Printf("[invoice][reconcile] unchanged invoice_id=%s status=%s paid=%s", invoiceID, inv.Status, paid.StringFixed(2))
		return inv, nil
	}

	saved, err := r.invoices.UpdateStatus(ctx, invoiceID, updated.Status)
	if err != nil {
		log.Printf("[invoice][reconcile] status write failed invoice_id=%s err=%v", invoiceID, err)
		return entities.Invoice{}, err
	}
	if saved.ID == "" {
		return entities.Invoice{}, ErrInvoiceNotFound
	}
	log.Printf("[invoice][reconcile] status changed invoice_id=%s from=%s to=%s paid=%s", invoiceID, inv.Status, saved.Status, paid.StringFixed(2))

	r.publish(ctx, inv, saved, paid.StringFixed(2))
	return saved, nil
}

func (r *Reconciler) publish(ctx context.Context, before, after entities.Invoice, paid string) {
	if r.publisher == nil {
		return
	}
	total := ""
	if after.Total.Valid {
		total = after.Total.Decimal.StringFixed(2)
	}
	event := interfaces.InvoiceStatusChanged{
		InvoiceID:     after.ID,
		InvoiceNumber: after.Number,
		ClientID:      after.ClientID,
		From:          before.Status,
		To:            after.Status,
		PaidAmount:    paid,
		Total:         total,
		OccurredAt:    time.Now().UTC(),
	}
	// The status is already persisted; a lost event is logged, not retried.
	if err := r.publisher.PublishInvoiceStatusChanged(ctx, event); err != nil {
		log.Printf("[invoice][reconcile] publish failed invoice_id=%s err=%v", after.ID, err)
	}
}
