package usecase

import (
	"github.com/shopspring/decimal"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
