package memory

import (
	"sync"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// billSequencerInMemory выдаёт номера счетов из атомарного счётчика.
// Выдача под мьютексом: два конкурентных оформления не получают один номер.
type billSequencerInMemory struct {
	mu   sync.Mutex
	last int64
}

// NewBillSequencer возвращает in-memory генератор номеров счетов,
// продолжающий нумерацию с last (0, если заказов ещё нет).
func NewBillSequencer(last int64) domain.BillSequencer {
	return &billSequencerInMemory{last: last}
}

// Next атомарно выдаёт следующий номер счёта.
func (s *billSequencerInMemory) Next() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last++
	return s.last, nil
}

var _ domain.BillSequencer = (*billSequencerInMemory)(nil)
