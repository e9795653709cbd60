// Package billing holds the invoice financial engine: applying GST to
// estimates and invoices, converting an approved estimate into an invoice and
// deriving invoice status from payments.
//
// Every function here is pure. Loading and persisting entities is the
// caller's job.
package billing

import (
	"fmt"
	"time"

	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/domain/tax"

	"github.com/shopspring/decimal"
)

// ErrNotApproved is returned when converting an estimate that is not APPROVED.
var ErrNotApproved = fmt.Errorf("%w: only approved estimates can be converted", entities.ErrInvalidState)

// ApplyEstimateTax recomputes the derived tax fields of e from its subtotal.
// Estimates carry the blended GST amount; jurisdiction is decided at invoice
// time.
func ApplyEstimateTax(e *entities.Estimate) {
	b, ok := tax.Compute(e.Subtotal, false)
	if !ok {
		e.GSTAmount = decimal.NullDecimal{}
		e.Total = decimal.NullDecimal{}
		return
	}
	e.GSTAmount = decimal.NewNullDecimal(b.GSTAmount)
	e.Total = decimal.NewNullDecimal(b.Total)
}

// ApplyInvoiceTax recomputes the tax fields of inv from its subtotal for the
// given jurisdiction.
func ApplyInvoiceTax(inv *entities.Invoice, interState bool) {
	b, ok := tax.Compute(inv.Subtotal, interState)
	if !ok {
		inv.CGST = decimal.NullDecimal{}
		inv.SGST = decimal.NullDecimal{}
		inv.IGST = decimal.NullDecimal{}
		inv.Total = decimal.NullDecimal{}
		return
	}
	inv.CGST = decimal.NewNullDecimal(b.CGST)
	inv.SGST = decimal.NewNullDecimal(b.SGST)
	inv.IGST = decimal.NewNullDecimal(b.IGST)
	inv.Total = decimal.NewNullDecimal(b.Total)
}

// ConvertEstimateToInvoice turns an APPROVED estimate into a new PENDING
// invoice and returns the estimate marked CONVERTED.
//
// Conversion is always intra-state: the estimate's GST amount is split evenly
// into CGST and SGST and the total is copied verbatim. invoiceID and number
// identify the new invoice.
func ConvertEstimateToInvoice(est entities.Estimate, invoiceID, number string, now time.Time) (entities.Estimate, entities.Invoice, error) {
	if err := CheckConvertible(est); err != nil {
		return est, entities.Invoice{}, err
	}

	inv := entities.Invoice{
		ID:         invoiceID,
		ClientID:   est.ClientID,
		EstimateID: est.ID,
		Number:     number,
		Items:      est.Items,
		Subtotal:   est.Subtotal,
		Total:      est.Total,
		Status:     entities.InvoiceStatusPending,
		CreatedAt:  now,
	}
	if est.GSTAmount.Valid {
		cgst, sgst := tax.SplitIntraState(est.GSTAmount.Decimal)
		inv.CGST = decimal.NewNullDecimal(cgst)
		inv.SGST = decimal.NewNullDecimal(sgst)
		inv.IGST = decimal.NewNullDecimal(decimal.Zero)
	}

	est.Status = entities.EstimateStatusConverted
	est.InvoiceID = invoiceID
	return est, inv, nil
}

// CheckConvertible reports ErrNotApproved unless est is APPROVED.
func CheckConvertible(est entities.Estimate) error {
	if est.Status != entities.EstimateStatusApproved {
		return ErrNotApproved
	}
	return nil
}

// PaidAmount sums the amounts of the payments linked to inv. Payments for
// other invoices are ignored.
func PaidAmount(inv entities.Invoice, payments []entities.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		if p.InvoiceID != inv.ID {
			continue
		}
		sum = sum.Add(p.Amount)
	}
	return sum
}

// ReconcileInvoiceStatus re-derives the invoice status from the complete set
// of its payments: PAID when they cover the total, PENDING otherwise. An
// invoice without a total has nothing to settle and stays PENDING.
func ReconcileInvoiceStatus(inv entities.Invoice, payments []entities.Payment) entities.Invoice {
	if !inv.Total.Valid {
		inv.Status = entities.InvoiceStatusPending
		return inv
	}
	if PaidAmount(inv, payments).GreaterThanOrEqual(inv.Total.Decimal) {
		inv.Status = entities.InvoiceStatusPaid
	} else {
		inv.Status = entities.InvoiceStatusPending
	}
	return inv
}

// OutstandingAmount is what remains to be paid on inv, never negative.
func OutstandingAmount(inv entities.Invoice, payments []entities.Payment) decimal.Decimal {
	if !inv.Total.Valid {
		return decimal.Zero
	}
	rest := inv.Total.Decimal.Sub(PaidAmount(inv, payments))
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}
