package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func optionsFixture() map[int]decimal.Decimal {
	return map[int]decimal.Decimal{
		1:   decimal.RequireFromString("3.50"),
		5:   decimal.RequireFromString("15.00"),
		10:  decimal.RequireFromString("28.00"),
		25:  decimal.RequireFromString("62.50"),
		100: decimal.RequireFromString("220.00"),
	}
}

func TestFormatOptionsFiltersAndSortsAscending(t *testing.T) {
	t.Parallel()

	got := FormatOptions(optionsFixture(), 12)
	if len(got) != 3 {
		t.Fatalf("expected 3 options within stock 12, got %d", len(got))
	}
	for i, want := range []int{1, 5, 10} {
		if got[i].Option != want {
			t.Fatalf("position %d: expected option %d, got %d", i, want, got[i].Option)
		}
	}
	if !got[2].Price.Equal(decimal.RequireFromString("28.00")) {
		t.Fatalf("price not carried through: %s", got[2].Price)
	}
}

func TestFormatOptionsExactBoundary(t *testing.T) {
	t.Parallel()

	got := FormatOptions(optionsFixture(), 25)
	if len(got) != 4 {
		t.Fatalf("option equal to stock must be included, got %d entries", len(got))
	}
	if got[len(got)-1].Option != 25 {
		t.Fatalf("expected 25 as largest entry, got %d", got[len(got)-1].Option)
	}
}

func TestFormatOptionsZeroAndNegativeStock(t *testing.T) {
	t.Parallel()

	if got := FormatOptions(optionsFixture(), 0); len(got) != 0 {
		t.Fatalf("zero stock must yield no options, got %d", len(got))
	}
	if got := FormatOptions(optionsFixture(), -7); len(got) != 0 {
		t.Fatalf("negative stock must clamp to zero availability, got %d", len(got))
	}
}

func TestFormatOptionsEmptyInput(t *testing.T) {
	t.Parallel()

	if got := FormatOptions(nil, 50); len(got) != 0 {
		t.Fatalf("nil options must yield empty slice, got %d", len(got))
	}
}

func TestContainsOption(t *testing.T) {
	t.Parallel()

	formatted := FormatOptions(optionsFixture(), 10)
	if !ContainsOption(formatted, 5) {
		t.Fatal("expected option 5 to be present")
	}
	if ContainsOption(formatted, 25) {
		t.Fatal("option 25 exceeds stock and must be absent")
	}
}
