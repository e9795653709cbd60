package interfaces

import "context"

// IInvoiceLocker serializes reconciliation per invoice ID.
//
// Lock blocks until the lock for invoiceID is held or ctx is done. The
// returned function releases it.
type IInvoiceLocker interface {
	Lock(ctx context.Context, invoiceID string) (unlock func(), err error)
}
