package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is money received against one invoice.
//
// Mode is a free-form tag (cash, UPI, bank transfer, card, ...). Amount is not
// bounded above: overpayment simply satisfies the invoice.
type Payment struct {
	ID             string          `json:"id"`
	InvoiceID      string          `json:"invoice_id"`
	Amount         decimal.Decimal `json:"amount"`
	Mode           string          `json:"payment_mode"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
	PaymentDate    time.Time       `json:"payment_date"`
}
