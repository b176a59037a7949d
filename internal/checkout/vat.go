package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/internal/cart"
)

var oneHundred = decimal.NewFromInt(100)

// RawVAT sums the VAT share embedded in each line's VAT-inclusive total:
// VAT_i = total_i − total_i / (1 + rate_i/100).
func RawVAT(items []cart.LineItem) decimal.Decimal {
	vat := decimal.Zero
	for _, item := range items {
		divisor := decimal.NewFromInt(1).Add(item.VATRate.Div(oneHundred))
		net := item.TotalPrice.Div(divisor)
		vat = vat.Add(item.TotalPrice.Sub(net))
	}
	return vat
}

// ApportionVAT spreads the discount uniformly across the whole cart and
// scales the raw VAT by the adjusted total: (total − discount) * (vat/total).
// This deliberately ignores which items the discount actually targeted; the
// tax authority sees one proportionally reduced VAT amount.
//
// The caller must not pass a zero total: an empty cart never reaches checkout,
// so a zero here is an upstream bug, not a condition this function guards.
func ApportionVAT(total, rawVAT, discount decimal.Decimal) decimal.Decimal {
	adjustedTotal := total.Sub(discount)
	proportion := rawVAT.Div(total)
	return adjustedTotal.Mul(proportion)
}
