package cart

import "sort"

// RemovalReason explains why the reconciler dropped a line item.
type RemovalReason string

const (
	// RemovalReasonProductGone means the stock feed no longer lists the product.
	RemovalReasonProductGone RemovalReason = "product_gone"
	// RemovalReasonStockShortfall means the cart committed more than reported.
	RemovalReasonStockShortfall RemovalReason = "stock_shortfall"
)

// Removal reports one line item dropped during a reconciliation pass.
type Removal struct {
	Item   LineItem
	Reason RemovalReason
}

// Reconcile aligns the cart with an authoritative stock snapshot and returns
// the adjusted cart plus one removal record per dropped line. The pass is pure
// and idempotent: running it twice against the same snapshot returns the same
// cart the second time with no removals.
//
// Products absent from the snapshot lose all their lines. For products whose
// committed quantity exceeds the reported stock, lines are removed smallest
// option first (stable within equal options) until the shortfall is covered.
func Reconcile(c Cart, stocks map[string]int) (Cart, []Removal) {
	var removals []Removal
	drop := map[string]RemovalReason{}

	committed := c.CommittedQuantities()

	for productID := range committed {
		if _, listed := stocks[productID]; !listed {
			for _, item := range c.Items {
				if item.ProductID == productID {
					drop[item.CartItemID] = RemovalReasonProductGone
				}
			}
			delete(committed, productID)
		}
	}

	for productID, total := range committed {
		reported := stocks[productID]
		if total <= reported {
			continue
		}
		shortfall := total - reported

		lines := make([]LineItem, 0, len(c.Items))
		for _, item := range c.Items {
			if item.ProductID == productID {
				lines = append(lines, item)
			}
		}
		// Smallest purchase quantities go first; SliceStable keeps the
		// original cart order between equal options.
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].Option < lines[j].Option })

		for _, line := range lines {
			if shortfall <= 0 {
				break
			}
			drop[line.CartItemID] = RemovalReasonStockShortfall
			shortfall -= line.Committed()
		}
	}

	if len(drop) == 0 {
		return c, nil
	}

	kept := make([]LineItem, 0, len(c.Items))
	for _, item := range c.Items {
		if reason, marked := drop[item.CartItemID]; marked {
			removals = append(removals, Removal{Item: item, Reason: reason})
			continue
		}
		kept = append(kept, item)
	}
	return Cart{Items: kept}, removals
}
