package checkout

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/internal/cart"
	"github.com/monplancbd/storefront/pkg/enums"
)

// Descriptor is a promotion supplied by the promotions API at checkout time.
// Value carries percentage points for percent discounts and a currency amount
// for fixed ones. NbItemsLimit of zero means uncapped.
type Descriptor struct {
	Name               string             `json:"name"`
	Type               enums.DiscountType `json:"type"`
	Value              decimal.Decimal    `json:"discountValue"`
	NbItemsLimit       int                `json:"nbItemsLimit"`
	RequiredProducts   []string           `json:"requiredProducts"`
	RequiredCategories []string           `json:"requiredCategories"`
	ExcludedProducts   []string           `json:"excludedProducts"`
	ExcludedCategories []string           `json:"excludedCategories"`
}

// EligibleItems applies the descriptor's inclusion/exclusion filters. A line
// survives unless its product or category is excluded; when required sets are
// non-empty the line must match every non-empty one. Contradictory sets simply
// yield no eligible items, which downstream degrades to a zero discount.
func EligibleItems(items []cart.LineItem, d Descriptor) []cart.LineItem {
	excludedProducts := asSet(d.ExcludedProducts)
	excludedCategories := asSet(d.ExcludedCategories)
	requiredProducts := asSet(d.RequiredProducts)
	requiredCategories := asSet(d.RequiredCategories)

	eligible := make([]cart.LineItem, 0, len(items))
	for _, item := range items {
		if _, excluded := excludedProducts[item.ProductID]; excluded {
			continue
		}
		if _, excluded := excludedCategories[item.CategoryID]; excluded {
			continue
		}
		if len(requiredProducts) > 0 {
			if _, ok := requiredProducts[item.ProductID]; !ok {
				continue
			}
		}
		if len(requiredCategories) > 0 {
			if _, ok := requiredCategories[item.CategoryID]; !ok {
				continue
			}
		}
		eligible = append(eligible, item)
	}
	return eligible
}

// ComputeDiscount dispatches on the descriptor type. Discount kinds the
// calculator does not price (free shipping for one) contribute zero.
func ComputeDiscount(items []cart.LineItem, d Descriptor) decimal.Decimal {
	switch d.Type {
	case enums.DiscountTypePercent:
		return ComputePercentDiscount(items, d)
	case enums.DiscountTypeFixedPerItem:
		return ComputeFixedItemDiscount(items, d)
	default:
		return decimal.Zero
	}
}

// ComputePercentDiscount returns Value% of the eligible total. With an item
// cap, lines expand into single units priced at their frozen unit price and
// the cap takes the most expensive units first so cheap units cannot dilute
// the discount.
func ComputePercentDiscount(items []cart.LineItem, d Descriptor) decimal.Decimal {
	eligible := EligibleItems(items, d)
	rate := d.Value.Div(decimal.NewFromInt(100))

	if d.NbItemsLimit <= 0 {
		sum := decimal.Zero
		for _, item := range eligible {
			sum = sum.Add(item.TotalPrice.Mul(rate))
		}
		return sum
	}

	units := expandUnits(eligible)
	sort.SliceStable(units, func(i, j int) bool { return units[i].GreaterThan(units[j]) })
	if len(units) > d.NbItemsLimit {
		units = units[:d.NbItemsLimit]
	}

	sum := decimal.Zero
	for _, price := range units {
		sum = sum.Add(price.Mul(rate))
	}
	return sum
}

// ComputeFixedItemDiscount returns Value per eligible unit, capped at
// NbItemsLimit units when set.
func ComputeFixedItemDiscount(items []cart.LineItem, d Descriptor) decimal.Decimal {
	units := expandUnits(EligibleItems(items, d))
	count := len(units)
	if d.NbItemsLimit > 0 && count > d.NbItemsLimit {
		count = d.NbItemsLimit
	}
	return d.Value.Mul(decimal.NewFromInt(int64(count)))
}

// expandUnits flattens quantity-N lines into N unit prices.
func expandUnits(items []cart.LineItem) []decimal.Decimal {
	var units []decimal.Decimal
	for _, item := range items {
		for i := 0; i < item.Quantity; i++ {
			units = append(units, item.UnitPrice)
		}
	}
	return units
}

func asSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}
