package inventory

import (
	"errors"
	"testing"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/storage/memory"
)

func newLedgerFixture(t *testing.T) (domain.InventoryLedger, domain.ProductRepository) {
	t.Helper()
	products := memory.NewProductRepository()
	return NewLedger(products, nil), products
}

func seedProduct(t *testing.T, products domain.ProductRepository, id string, qty int32) {
	t.Helper()
	err := products.Save(domain.Product{
		ID:         id,
		Name:       "product " + id,
		Quantity:   qty,
		PriceMinor: 1000,
	})
	if err != nil {
		t.Fatalf("seed product %s: %v", id, err)
	}
}

func TestLedger_Available(t *testing.T) {
	ledger, products := newLedgerFixture(t)
	seedProduct(t, products, "p-1", 7)

	got, err := ledger.Available("p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}

	if _, err := ledger.Available("ghost"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestLedger_ValidateBatch(t *testing.T) {
	ledger, products := newLedgerFixture(t)
	seedProduct(t, products, "p-1", 10)
	seedProduct(t, products, "p-2", 2)

	lines := []domain.CartLine{
		{ID: "l-1", UserID: "u", ProductID: "p-1", Qty: 10, RateMinor: 1000, AmountMinor: 10000},
		{ID: "l-2", UserID: "u", ProductID: "p-2", Qty: 3, RateMinor: 1000, AmountMinor: 3000},
		{ID: "l-3", UserID: "u", ProductID: "ghost", Qty: 1, RateMinor: 1000, AmountMinor: 1000},
	}

	failed, err := ledger.ValidateBatch(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failed) != 2 {
		t.Fatalf("expected 2 failed lines, got %d", len(failed))
	}

	kinds := map[string]domain.FailureKind{}
	for _, fl := range failed {
		kinds[fl.Line.ID] = fl.Kind
	}
	if kinds["l-2"] != domain.FailureOutOfStock {
		t.Fatalf("expected out_of_stock for l-2, got %s", kinds["l-2"])
	}
	if kinds["l-3"] != domain.FailureProductMissing {
		t.Fatalf("expected product_missing for l-3, got %s", kinds["l-3"])
	}

	// Проверка только читает: остаток не меняется.
	if got, _ := ledger.Available("p-1"); got != 10 {
		t.Fatalf("expected unchanged stock 10, got %d", got)
	}
}

func TestLedger_ValidateBatch_AllFit(t *testing.T) {
	ledger, products := newLedgerFixture(t)
	seedProduct(t, products, "p-1", 5)

	failed, err := ledger.ValidateBatch([]domain.CartLine{
		{ID: "l-1", UserID: "u", ProductID: "p-1", Qty: 5, RateMinor: 1000, AmountMinor: 5000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("expected no failed lines, got %+v", failed)
	}
}

func TestLedger_DecrementAndRestore(t *testing.T) {
	ledger, products := newLedgerFixture(t)
	seedProduct(t, products, "p-1", 5)

	if err := ledger.Decrement("p-1", 3); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if got, _ := ledger.Available("p-1"); got != 2 {
		t.Fatalf("expected 2 after decrement, got %d", got)
	}

	if err := ledger.Decrement("p-1", 3); !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if got, _ := ledger.Available("p-1"); got != 2 {
		t.Fatalf("failed decrement must not change stock, got %d", got)
	}

	if err := ledger.Restore("p-1", 3); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got, _ := ledger.Available("p-1"); got != 5 {
		t.Fatalf("expected 5 after restore, got %d", got)
	}

	if err := ledger.Restore("ghost", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
