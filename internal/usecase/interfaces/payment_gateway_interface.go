package interfaces

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ChargeRequest is an online charge for (part of) an invoice. Payload holds
// the provider-specific fields (payment method, card token, payer) and is
// forwarded as-is; the gateway owns the amount and the invoice reference.
type ChargeRequest struct {
	InvoiceID     string
	InvoiceNumber string
	Amount        decimal.Decimal
	Payload       json.RawMessage
}

// ChargeResult is the provider's answer to a charge.
type ChargeResult struct {
	ProviderPaymentID string
	Status            string
	Response          json.RawMessage
}

func (r ChargeResult) Approved() bool {
	return strings.EqualFold(r.Status, "approved")
}

// IPaymentGateway abstracts external payment providers (e.g. Mercado Pago).
//
// The provider payment id of an approved charge becomes the payment's
// transaction reference.
type IPaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}
