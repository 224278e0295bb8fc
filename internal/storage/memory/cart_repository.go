package memory

import (
	"sort"
	"sync"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// cartRepositoryInMemory — простая in-memory реализация CartRepository.
type cartRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.CartLine
}

// NewCartRepository возвращает in-memory хранилище корзин.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		items: make(map[string]domain.CartLine),
	}
}

// Upsert сохраняет строку корзины, перезаписывая существующую с тем же ID.
func (r *cartRepositoryInMemory) Upsert(line domain.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[line.ID] = line
	return nil
}

// Get возвращает строку корзины или ErrCartLineNotFound, если её нет.
func (r *cartRepositoryInMemory) Get(lineID string) (domain.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	line, ok := r.items[lineID]
	if !ok {
		return domain.CartLine{}, domain.ErrCartLineNotFound
	}
	return line, nil
}

// GetByUserAndProduct ищет строку по паре пользователь/товар.
func (r *cartRepositoryInMemory) GetByUserAndProduct(userID, productID string) (domain.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, line := range r.items {
		if line.UserID == userID && line.ProductID == productID {
			return line, nil
		}
	}
	return domain.CartLine{}, domain.ErrCartLineNotFound
}

// ListByUser возвращает строки корзины пользователя в порядке добавления.
func (r *cartRepositoryInMemory) ListByUser(userID string) ([]domain.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.CartLine, 0)
	for _, line := range r.items {
		if line.UserID != userID {
			continue
		}
		result = append(result, line)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// CountByUser возвращает количество строк в корзине пользователя.
func (r *cartRepositoryInMemory) CountByUser(userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, line := range r.items {
		if line.UserID == userID {
			count++
		}
	}
	return count, nil
}

// Delete удаляет строку корзины; отсутствие строки — ошибка.
func (r *cartRepositoryInMemory) Delete(lineID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[lineID]; !ok {
		return domain.ErrCartLineNotFound
	}
	delete(r.items, lineID)
	return nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
