package request

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"mis_invoicing/internal/usecase"

	"github.com/shopspring/decimal"
)

var ErrInvalidDueDate = errors.New("invalid due_date")

const dateLayout = "2006-01-02"

// InvoiceRequest is the create/update payload for invoices. The jurisdiction
// flag travels as the inter_state query parameter, not in the body.
type InvoiceRequest struct {
	InvoiceNumber string              `json:"invoice_number"`
	Items         json.RawMessage     `json:"items"`
	Subtotal      decimal.NullDecimal `json:"subtotal"`
	DueDate       string              `json:"due_date"`
}

func (r InvoiceRequest) ToInput() (usecase.InvoiceInput, error) {
	due, err := parseDate(r.DueDate)
	if err != nil {
		return usecase.InvoiceInput{}, ErrInvalidDueDate
	}
	return usecase.InvoiceInput{
		Number:   strings.TrimSpace(r.InvoiceNumber),
		Items:    nonNullRaw(r.Items),
		Subtotal: r.Subtotal,
		DueDate:  due,
	}, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. Empty means unset.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
