package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is owned by payment reconciliation, which only toggles
// between PENDING and PAID. OVERDUE belongs to due-date reporting.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
)

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	st := InvoiceStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown invoice status %q", ErrInvalidState, s)
}

// Invoice is a binding bill for one client.
//
// Tax representation:
//   - intra-state: CGST = SGST = GST/2, IGST = 0
//   - inter-state: IGST = GST, CGST = SGST = 0
//   - Total = Subtotal + GST (the undivided amount)
//
// EstimateID is set only when the invoice was produced by converting an
// estimate.
type Invoice struct {
	ID         string              `json:"id"`
	ClientID   string              `json:"client_id"`
	EstimateID string              `json:"estimate_id,omitempty"`
	Number     string              `json:"invoice_number"`
	Items      json.RawMessage     `json:"items,omitempty"`
	Subtotal   decimal.NullDecimal `json:"subtotal"`
	CGST       decimal.NullDecimal `json:"cgst"`
	SGST       decimal.NullDecimal `json:"sgst"`
	IGST       decimal.NullDecimal `json:"igst"`
	Total      decimal.NullDecimal `json:"total"`
	Status     InvoiceStatus       `json:"status"`
	DueDate    *time.Time          `json:"due_date,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

func (i Invoice) IsInterState() bool {
	return i.IGST.Valid && !i.IGST.Decimal.IsZero()
}
