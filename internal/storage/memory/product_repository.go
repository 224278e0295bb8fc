package memory

import (
	"sync"
	"time"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory каталог для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Get возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) Get(productID string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[productID]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// Save перезаписывает товар целиком.
func (r *productRepositoryInMemory) Save(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.UpdatedAt = time.Now().UTC()
	r.items[product.ID] = product
	return nil
}

// DecrementStock атомарно списывает qty под общим write-локом:
// проверка остатка и запись неразделимы, поэтому уйти в минус нельзя.
func (r *productRepositoryInMemory) DecrementStock(productID string, qty int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if product.Quantity < qty {
		return domain.ErrOutOfStock
	}
	product.Quantity -= qty
	product.UpdatedAt = time.Now().UTC()
	r.items[productID] = product
	return nil
}

// IncrementStock возвращает qty единиц на остаток.
func (r *productRepositoryInMemory) IncrementStock(productID string, qty int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.Quantity += qty
	product.UpdatedAt = time.Now().UTC()
	r.items[productID] = product
	return nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
