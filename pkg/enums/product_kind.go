package enums

import "fmt"

// ProductKind classifies a catalog entry once at load time. Kind-specific
// attributes (cannabinoid rates, growing method, pour-rate) hang off the kind
// instead of being probed field-by-field.
type ProductKind string

const (
	ProductKindFlower    ProductKind = "flower"
	ProductKindHash      ProductKind = "hash"
	ProductKindOil       ProductKind = "oil"
	ProductKindTea       ProductKind = "tea"
	ProductKindVape      ProductKind = "vape"
	ProductKindAccessory ProductKind = "accessory"
)

var validProductKinds = []ProductKind{
	ProductKindFlower,
	ProductKindHash,
	ProductKindOil,
	ProductKindTea,
	ProductKindVape,
	ProductKindAccessory,
}

// String implements fmt.Stringer.
func (k ProductKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known ProductKind.
func (k ProductKind) IsValid() bool {
	for _, candidate := range validProductKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseProductKind converts raw input into a ProductKind.
func ParseProductKind(value string) (ProductKind, error) {
	for _, candidate := range validProductKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product kind %q", value)
}

// KindForCategory maps an upstream category slug onto a ProductKind. Unknown
// categories fall back to accessory so the catalog loader never rejects a
// product over presentation taxonomy.
func KindForCategory(category string) ProductKind {
	switch category {
	case "fleurs-cbd", "fleurs":
		return ProductKindFlower
	case "pollens-resines-hash-cbd", "hash":
		return ProductKindHash
	case "huiles-cbd", "huiles":
		return ProductKindOil
	case "infusions-cbd", "infusions":
		return ProductKindTea
	case "vaporisateur", "e-liquides":
		return ProductKindVape
	default:
		return ProductKindAccessory
	}
}
