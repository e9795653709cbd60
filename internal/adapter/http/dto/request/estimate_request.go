package request

import (
	"encoding/json"
	"strings"

	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase"

	"github.com/shopspring/decimal"
)

// EstimateRequest is the create/update payload for estimates. Subtotal may be
// sent as a JSON string ("1000.00") or number; null or absent leaves the
// estimate without amounts.
type EstimateRequest struct {
	EstimateNumber string              `json:"estimate_number"`
	Items          json.RawMessage     `json:"items"`
	Subtotal       decimal.NullDecimal `json:"subtotal"`
	Status         string              `json:"status"`
}

func (r EstimateRequest) ToInput() (usecase.EstimateInput, error) {
	in := usecase.EstimateInput{
		Number:   strings.TrimSpace(r.EstimateNumber),
		Items:    nonNullRaw(r.Items),
		Subtotal: r.Subtotal,
	}
	if strings.TrimSpace(r.Status) != "" {
		st, err := entities.ParseEstimateStatus(r.Status)
		if err != nil {
			return usecase.EstimateInput{}, err
		}
		in.Status = st
	}
	return in, nil
}

// nonNullRaw maps an absent or explicit JSON null to nil.
func nonNullRaw(raw json.RawMessage) json.RawMessage {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	return raw
}
