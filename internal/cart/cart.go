package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/internal/catalog"
	"github.com/monplancbd/storefront/pkg/enums"
)

// LineItem is one cart entry for a specific product+option pair. UnitPrice is
// frozen at add time so later catalog price changes never touch items already
// in the cart.
type LineItem struct {
	CartItemID string            `json:"cartItemId"`
	ProductID  string            `json:"id"`
	Name       string            `json:"name"`
	Option     int               `json:"option"`
	Per        enums.PriceUnit   `json:"per"`
	Quantity   int               `json:"quantity"`
	UnitPrice  decimal.Decimal   `json:"unitPrice"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	VATRate    decimal.Decimal   `json:"VATRate"`
	CategoryID string            `json:"categoryId"`
	IsPromo    bool              `json:"isPromo"`
	Image      catalog.Image     `json:"image"`
}

// Committed is the quantity this line removes from availability, expressed in
// the product's price unit.
func (li LineItem) Committed() int {
	return li.Quantity * li.Option
}

// Cart is the ordered list of line items for one session.
type Cart struct {
	Items []LineItem `json:"products"`
}

// Total sums every line's total price.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// IsEmpty reports whether the cart has no line items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CommittedQuantities sums quantity*option per product across all lines. Two
// lines for the same product with different options fold into one number, e.g.
// 2x10g and 1x50g of the same flower commit 70.
func (c Cart) CommittedQuantities() map[string]int {
	committed := make(map[string]int, len(c.Items))
	for _, item := range c.Items {
		committed[item.ProductID] += item.Committed()
	}
	return committed
}

// CommittedFor returns the committed quantity for a single product.
func (c Cart) CommittedFor(productID string) int {
	total := 0
	for _, item := range c.Items {
		if item.ProductID == productID {
			total += item.Committed()
		}
	}
	return total
}

// Find returns the line with the given cart item id, or nil.
func (c Cart) Find(cartItemID string) *LineItem {
	for i := range c.Items {
		if c.Items[i].CartItemID == cartItemID {
			return &c.Items[i]
		}
	}
	return nil
}

// AddRequest carries everything needed to add a product+option to the cart.
type AddRequest struct {
	ProductID  string
	Name       string
	Option     int
	Per        enums.PriceUnit
	Quantity   int
	UnitPrice  decimal.Decimal
	VATRate    decimal.Decimal
	CategoryID string
	IsPromo    bool
	Image      catalog.Image
}

// Add merges the request into the cart. An existing line for the same
// (product, option) pair has its quantity incremented and total recomputed
// from the stored unit price; the incoming price is ignored in that case.
// Otherwise a new line is appended with a fresh cart item id. Add performs no
// stock validation: availability is the caller's concern and the reconciler's
// asynchronous truth.
func (c *Cart) Add(req AddRequest) LineItem {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	for i := range c.Items {
		item := &c.Items[i]
		if item.ProductID == req.ProductID && item.Option == req.Option {
			item.Quantity += req.Quantity
			item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			return *item
		}
	}

	line := LineItem{
		CartItemID: uuid.NewString(),
		ProductID:  req.ProductID,
		Name:       req.Name,
		Option:     req.Option,
		Per:        req.Per,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		TotalPrice: req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
		VATRate:    req.VATRate,
		CategoryID: req.CategoryID,
		IsPromo:    req.IsPromo,
		Image:      req.Image,
	}
	c.Items = append(c.Items, line)
	return line
}

// Remove deletes the line with the given cart item id. Removing an unknown id
// is a no-op.
func (c *Cart) Remove(cartItemID string) bool {
	for i := range c.Items {
		if c.Items[i].CartItemID == cartItemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep-enough copy: line items are values, so copying the
// backing slice is sufficient.
func (c Cart) Clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}
