package memory

import (
	"sort"
	"sync"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет новую строку заказа, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrOrderVersionConflict
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[order.ID] = order
	return nil
}

// Get возвращает строку заказа или ErrOrderNotFound, если её нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListByUser возвращает строки заказов пользователя, свежие первыми.
func (r *orderRepositoryInMemory) ListByUser(userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.UserID != userID {
			continue
		}
		result = append(result, order)
	}
	sortOrders(result)
	return result, nil
}

// ListByUserAndBatch возвращает строки одного оформления пользователя.
func (r *orderRepositoryInMemory) ListByUserAndBatch(userID string, batchNo int64) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.UserID != userID || order.BatchNo != batchNo {
			continue
		}
		result = append(result, order)
	}
	sortOrders(result)
	return result, nil
}

// List возвращает страницу заказов всех пользователей, свежие первыми.
func (r *orderRepositoryInMemory) List(limit, offset int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		result = append(result, order)
	}
	sortOrders(result)

	if offset > 0 {
		if offset >= len(result) {
			return []domain.Order{}, nil
		}
		result = result[offset:]
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Save перезаписывает строку заказа, проверяя версию (optimistic locking).
func (r *orderRepositoryInMemory) Save(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}
	// Инкрементируем версию перед сохранением.
	order.Version++
	r.items[order.ID] = order
	return nil
}

// MaxBatchNo возвращает максимальный выданный номер счёта или 0.
func (r *orderRepositoryInMemory) MaxBatchNo() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var max int64
	for _, order := range r.items {
		if order.BatchNo > max {
			max = order.BatchNo
		}
	}
	return max, nil
}

func sortOrders(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].BatchNo != orders[j].BatchNo {
			return orders[i].BatchNo > orders[j].BatchNo
		}
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
