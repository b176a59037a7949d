package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/internal/cart"
	pkgerrors "github.com/monplancbd/storefront/pkg/errors"
)

// Quote is the priced result of running the active promotions over a cart
// snapshot.
type Quote struct {
	Total         decimal.Decimal `json:"total"`
	Discount      decimal.Decimal `json:"discount"`
	AdjustedTotal decimal.Decimal `json:"adjustedTotal"`
	RawVAT        decimal.Decimal `json:"rawVAT"`
	AdjustedVAT   decimal.Decimal `json:"adjustedVAT"`
}

// ComputeQuote prices the cart against every supplied descriptor. Discounts
// accumulate across descriptors but never push the adjusted total below zero.
// An empty or zero-total cart is rejected before the VAT division runs.
func ComputeQuote(c cart.Cart, descriptors []Descriptor) (*Quote, error) {
	if c.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	total := c.Total()
	if !total.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart total must be positive")
	}

	discount := decimal.Zero
	for _, d := range descriptors {
		discount = discount.Add(ComputeDiscount(c.Items, d))
	}
	if discount.GreaterThan(total) {
		discount = total
	}

	rawVAT := RawVAT(c.Items)
	adjustedVAT := ApportionVAT(total, rawVAT, discount)

	return &Quote{
		Total:         total,
		Discount:      discount,
		AdjustedTotal: total.Sub(discount),
		RawVAT:        rawVAT,
		AdjustedVAT:   adjustedVAT,
	}, nil
}
