package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EstimateStatus represents the lifecycle of an estimate (quotation).
//
// Lifecycle is linear: DRAFT -> SENT -> APPROVED -> CONVERTED.
//   - Moves only go forward; skipping a step forward is allowed.
//   - CONVERTED is reached only through the estimate-to-invoice conversion.
//   - CONVERTED is terminal; a converted estimate is immutable.
type EstimateStatus string

const (
	EstimateStatusDraft     EstimateStatus = "DRAFT"
	EstimateStatusSent      EstimateStatus = "SENT"
	EstimateStatusApproved  EstimateStatus = "APPROVED"
	EstimateStatusConverted EstimateStatus = "CONVERTED"
)

var estimateStatusOrder = map[EstimateStatus]int{
	EstimateStatusDraft:     0,
	EstimateStatusSent:      1,
	EstimateStatusApproved:  2,
	EstimateStatusConverted: 3,
}

// ParseEstimateStatus normalizes s (case-insensitive) into a known status.
func ParseEstimateStatus(s string) (EstimateStatus, error) {
	st := EstimateStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := estimateStatusOrder[st]; !ok {
		return "", fmt.Errorf("%w: unknown estimate status %q", ErrInvalidState, s)
	}
	return st, nil
}

func (s EstimateStatus) Valid() bool {
	_, ok := estimateStatusOrder[s]
	return ok
}

// CanTransitionTo reports whether a manual status change from s to next is
// allowed. Staying on the same status is always allowed except for
// CONVERTED, which no manual write may touch.
func (s EstimateStatus) CanTransitionTo(next EstimateStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == EstimateStatusConverted || next == EstimateStatusConverted {
		return false
	}
	return estimateStatusOrder[next] >= estimateStatusOrder[s]
}

// Estimate is a pre-invoice quotation for one client.
//
// Monetary representation:
//   - Subtotal is supplied by the caller, GSTAmount and Total are derived.
//   - All three are null together when no subtotal was supplied.
//
// Items is an opaque JSON payload; line-item structure is not interpreted.
// InvoiceID is set by the conversion, in the same write that marks the
// estimate CONVERTED.
type Estimate struct {
	ID        string              `json:"id"`
	ClientID  string              `json:"client_id"`
	Number    string              `json:"estimate_number"`
	Items     json.RawMessage     `json:"items,omitempty"`
	Subtotal  decimal.NullDecimal `json:"subtotal"`
	GSTAmount decimal.NullDecimal `json:"gst_amount"`
	Total     decimal.NullDecimal `json:"total"`
	Status    EstimateStatus      `json:"status"`
	InvoiceID string              `json:"invoice_id,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

func (e Estimate) IsConverted() bool {
	return e.Status == EstimateStatusConverted
}
