package request

import (
	"encoding/json"
	"errors"
	"strings"

	"mis_invoicing/internal/usecase"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingAmount      = errors.New("amount is required")
	ErrInvalidPaymentDate = errors.New("invalid payment_date")
)

// PaymentRequest records a payment against an invoice. When mp_payload is
// present the charge is processed by Mercado Pago first; the payload is
// forwarded as-is to support varying provider schemas.
type PaymentRequest struct {
	Amount         decimal.NullDecimal `json:"amount"`
	PaymentMode    string              `json:"payment_mode"`
	TransactionRef string              `json:"transaction_ref"`
	PaymentDate    string              `json:"payment_date"`
	MPPayload      json.RawMessage     `json:"mp_payload"`
}

func (r PaymentRequest) ToInput() (usecase.PaymentInput, error) {
	if !r.Amount.Valid {
		return usecase.PaymentInput{}, ErrMissingAmount
	}
	date, err := parseDate(r.PaymentDate)
	if err != nil {
		return usecase.PaymentInput{}, ErrInvalidPaymentDate
	}
	in := usecase.PaymentInput{
		Amount:         r.Amount.Decimal,
		Mode:           strings.TrimSpace(r.PaymentMode),
		TransactionRef: strings.TrimSpace(r.TransactionRef),
		GatewayPayload: nonNullRaw(r.MPPayload),
	}
	if date != nil {
		in.PaymentDate = *date
	}
	return in, nil
}
