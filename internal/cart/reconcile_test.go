package cart

import (
	"reflect"
	"testing"
)

func reconcileFixture() Cart {
	var c Cart
	c.Add(AddRequest{ProductID: "trim", Option: 5, UnitPrice: dec("6.00"), Quantity: 2})
	c.Add(AddRequest{ProductID: "trim", Option: 10, UnitPrice: dec("11.00")})
	c.Add(AddRequest{ProductID: "oil", Option: 1, UnitPrice: dec("29.90"), Quantity: 2})
	return c
}

func TestReconcileNoChangesWhenStockSuffices(t *testing.T) {
	t.Parallel()

	c := reconcileFixture()
	got, removals := Reconcile(c, map[string]int{"trim": 20, "oil": 2})
	if len(removals) != 0 {
		t.Fatalf("no removals expected, got %d", len(removals))
	}
	if !reflect.DeepEqual(got.Items, c.Items) {
		t.Fatal("cart must be unchanged when stock covers commitments")
	}
}

func TestReconcileRemovesVanishedProduct(t *testing.T) {
	t.Parallel()

	c := reconcileFixture()
	got, removals := Reconcile(c, map[string]int{"oil": 2})

	if len(removals) != 2 {
		t.Fatalf("expected both trim lines removed, got %d", len(removals))
	}
	for _, r := range removals {
		if r.Reason != RemovalReasonProductGone {
			t.Fatalf("expected product_gone reason, got %s", r.Reason)
		}
		if r.Item.ProductID != "trim" {
			t.Fatalf("unexpected product removed: %s", r.Item.ProductID)
		}
	}
	if got.CommittedFor("trim") != 0 {
		t.Fatal("trim lines should be gone")
	}
	if got.CommittedFor("oil") != 2 {
		t.Fatal("oil lines must survive untouched")
	}
}

func TestReconcileTrimsSmallestOptionFirst(t *testing.T) {
	t.Parallel()

	// Committed = 2x5 + 1x10 = 20; reported 12 leaves a shortfall of 8.
	// Removing the 5g line (10 committed) already covers it, so the 10g
	// line survives.
	var c Cart
	c.Add(AddRequest{ProductID: "trim", Option: 5, UnitPrice: dec("6.00"), Quantity: 2})
	c.Add(AddRequest{ProductID: "trim", Option: 10, UnitPrice: dec("11.00")})

	got, removals := Reconcile(c, map[string]int{"trim": 12})

	if len(removals) != 1 {
		t.Fatalf("expected one removal, got %d", len(removals))
	}
	if removals[0].Item.Option != 5 {
		t.Fatalf("smallest option must be removed first, got %d", removals[0].Item.Option)
	}
	if removals[0].Reason != RemovalReasonStockShortfall {
		t.Fatalf("unexpected reason %s", removals[0].Reason)
	}
	if len(got.Items) != 1 || got.Items[0].Option != 10 {
		t.Fatalf("expected only the 10g line to remain, got %+v", got.Items)
	}
}

func TestReconcileRemovesEverythingWhenStockCollapses(t *testing.T) {
	t.Parallel()

	c := reconcileFixture()
	got, removals := Reconcile(c, map[string]int{"trim": 0, "oil": 0})

	if !got.IsEmpty() {
		t.Fatalf("expected empty cart, got %d items", len(got.Items))
	}
	if len(removals) != 3 {
		t.Fatalf("expected 3 removals, got %d", len(removals))
	}
}

func TestReconcileConservation(t *testing.T) {
	t.Parallel()

	stocks := map[string]int{"trim": 12, "oil": 1}
	got, _ := Reconcile(reconcileFixture(), stocks)

	for productID, committed := range got.CommittedQuantities() {
		if committed > stocks[productID] {
			t.Fatalf("product %s commits %d over reported %d", productID, committed, stocks[productID])
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	t.Parallel()

	stocks := map[string]int{"trim": 12, "oil": 2}
	once, _ := Reconcile(reconcileFixture(), stocks)
	twice, removals := Reconcile(once, stocks)

	if len(removals) != 0 {
		t.Fatalf("second pass over same snapshot must remove nothing, got %d", len(removals))
	}
	if !reflect.DeepEqual(once.Items, twice.Items) {
		t.Fatal("second pass must leave the cart identical")
	}
}

func TestReconcileStableOrderOnEqualOptions(t *testing.T) {
	t.Parallel()

	var c Cart
	first := c.Add(AddRequest{ProductID: "tea", Option: 2, UnitPrice: dec("4.00")})
	c.Items = append(c.Items, LineItem{
		CartItemID: "second-line",
		ProductID:  "tea",
		Option:     2,
		Quantity:   1,
		UnitPrice:  dec("4.00"),
		TotalPrice: dec("4.00"),
	})

	// Shortfall of 2: only the first of the two equal-option lines goes.
	got, removals := Reconcile(c, map[string]int{"tea": 2})

	if len(removals) != 1 {
		t.Fatalf("expected one removal, got %d", len(removals))
	}
	if removals[0].Item.CartItemID != first.CartItemID {
		t.Fatal("tie-break must follow original cart order")
	}
	if len(got.Items) != 1 || got.Items[0].CartItemID != "second-line" {
		t.Fatal("expected the later line to survive")
	}
}
