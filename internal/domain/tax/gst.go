// Package tax computes India GST breakdowns.
//
// One fixed rate applies to every document. Intra-state supplies carry
// CGST + SGST (each half of the GST amount), inter-state supplies carry IGST.
// All amounts are rounded HALF_UP to two decimal places.
package tax

import "github.com/shopspring/decimal"

// Scale is the number of decimal places kept on every monetary amount.
const Scale int32 = 2

var (
	// GSTRate is the single 18% GST rate.
	GSTRate = decimal.RequireFromString("0.18")

	two = decimal.NewFromInt(2)
)

// Breakdown is the result of a GST computation.
type Breakdown struct {
	CGST      decimal.Decimal `json:"cgst"`
	SGST      decimal.Decimal `json:"sgst"`
	IGST      decimal.Decimal `json:"igst"`
	GSTAmount decimal.Decimal `json:"gst_amount"`
	Total     decimal.Decimal `json:"total"`
}

// Round rounds an amount HALF_UP at Scale.
//
// decimal.Round rounds half away from zero, which matches HALF_UP for both
// signs.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// GSTAmount returns round(subtotal * 18%).
func GSTAmount(subtotal decimal.Decimal) decimal.Decimal {
	return Round(subtotal.Mul(GSTRate))
}

// SplitIntraState splits a GST amount into equal CGST and SGST halves.
//
// Each half is rounded on its own, so for an odd number of cents the two
// halves add up to one cent more than gstAmount. Totals are never derived
// from the halves.
func SplitIntraState(gstAmount decimal.Decimal) (cgst, sgst decimal.Decimal) {
	half := Round(gstAmount.Div(two))
	return half, half
}

// Compute returns the GST breakdown for subtotal. When subtotal is absent ok
// is false and nothing is computed.
func Compute(subtotal decimal.NullDecimal, interState bool) (b Breakdown, ok bool) {
	if !subtotal.Valid {
		return Breakdown{}, false
	}

	gst := GSTAmount(subtotal.Decimal)
	b = Breakdown{
		CGST:      decimal.Zero,
		SGST:      decimal.Zero,
		IGST:      decimal.Zero,
		GSTAmount: gst,
		Total:     subtotal.Decimal.Add(gst),
	}
	if interState {
		b.IGST = gst
	} else {
		b.CGST, b.SGST = SplitIntraState(gst)
	}
	return b, true
}
