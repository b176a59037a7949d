package catalog

import "github.com/shopspring/decimal"

// FormatOptions returns the options purchasable within the available stock,
// ascending by quantity. Negative availability behaves like zero, yielding an
// empty slice. The function is total: it never fails on odd input.
func FormatOptions(options map[int]decimal.Decimal, availableStock int) []OptionPrice {
	if availableStock <= 0 || len(options) == 0 {
		return []OptionPrice{}
	}
	fitting := make(map[int]decimal.Decimal, len(options))
	for option, price := range options {
		if option <= availableStock {
			fitting[option] = price
		}
	}
	return sortOptions(fitting)
}

// ContainsOption reports whether the formatted slice includes the quantity.
func ContainsOption(formatted []OptionPrice, option int) bool {
	for _, entry := range formatted {
		if entry.Option == option {
			return true
		}
	}
	return false
}
