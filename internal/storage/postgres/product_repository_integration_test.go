package postgres

import (
	"sync"
	"testing"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

func TestProductRepositoryIntegration_DecrementStock(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	if err := repo.Save(domain.Product{ID: "p1", Name: "Kettle", Quantity: 5, PriceMinor: 129900}); err != nil {
		t.Fatalf("save product: %v", err)
	}

	if err := repo.DecrementStock("p1", 3); err != nil {
		t.Fatalf("decrement stock: %v", err)
	}
	if err := repo.DecrementStock("p1", 3); err != domain.ErrOutOfStock {
		t.Fatalf("decrement over stock: got %v, want ErrOutOfStock", err)
	}
	if err := repo.DecrementStock("missing", 1); err != domain.ErrProductNotFound {
		t.Fatalf("decrement missing product: got %v, want ErrProductNotFound", err)
	}

	product, err := repo.Get("p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Quantity != 2 {
		t.Fatalf("quantity after failed decrement = %d, want 2", product.Quantity)
	}
}

func TestProductRepositoryIntegration_DecrementStockConcurrent(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	if err := repo.Save(domain.Product{ID: "p1", Quantity: 10}); err != nil {
		t.Fatalf("save product: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.DecrementStock("p1", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("succeeded decrements = %d, want 10", succeeded)
	}
	product, err := repo.Get("p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Quantity != 0 {
		t.Fatalf("final quantity = %d, want 0", product.Quantity)
	}
}
