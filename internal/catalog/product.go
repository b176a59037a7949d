package catalog

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/pkg/enums"
)

// Image is the denormalized main visual carried on products and cart lines.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Ratings mirrors the review aggregate exposed by the product API.
type Ratings struct {
	Amount int     `json:"amount"`
	Value  float64 `json:"value"`
}

// OptionPrice pairs a purchase quantity with its price.
type OptionPrice struct {
	Option int             `json:"option"`
	Price  decimal.Decimal `json:"price"`
}

// Product is a catalog entry plus its authoritative stock as last reported by
// the feed. Options map purchase quantities (in PricesPer units) to prices.
type Product struct {
	ID         string
	Name       string
	Slug       string
	Kind       enums.ProductKind
	Category   string
	CategoryID string
	PricesPer  enums.PriceUnit
	Options    map[int]decimal.Decimal
	Stock      int
	VATRate    decimal.Decimal
	IsPromo    bool
	Image      Image
	Ratings    Ratings

	// DefaultOption is the smallest purchase quantity, selected when a
	// session first sees the product.
	DefaultOption int
}

// SortedOptions returns every option ascending by quantity, ignoring stock.
func (p *Product) SortedOptions() []OptionPrice {
	return sortOptions(p.Options)
}

// HasOption reports whether the given quantity is a configured option.
func (p *Product) HasOption(option int) bool {
	_, ok := p.Options[option]
	return ok
}

// PriceFor returns the price of the given option and whether it exists.
func (p *Product) PriceFor(option int) (decimal.Decimal, bool) {
	price, ok := p.Options[option]
	return price, ok
}

func sortOptions(options map[int]decimal.Decimal) []OptionPrice {
	out := make([]OptionPrice, 0, len(options))
	for option, price := range options {
		out = append(out, OptionPrice{Option: option, Price: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Option < out[j].Option })
	return out
}
