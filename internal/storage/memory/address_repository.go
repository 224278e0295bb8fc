package memory

import (
	"sync"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// addressRepositoryInMemory хранит слоты адресов пользователей.
type addressRepositoryInMemory struct {
	mu    sync.RWMutex
	slots map[string]map[string]domain.AddressSlot
}

// NewAddressRepository возвращает in-memory хранилище адресных слотов.
func NewAddressRepository() domain.AddressRepository {
	return &addressRepositoryInMemory{
		slots: make(map[string]map[string]domain.AddressSlot),
	}
}

// Slots возвращает все три слота пользователя в порядке "1","2","3".
// Отсутствующие в хранилище слоты возвращаются незанятыми.
func (r *addressRepositoryInMemory) Slots(userID string) ([]domain.AddressSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.slots[userID]
	result := make([]domain.AddressSlot, 0, len(domain.SlotIDs))
	for _, id := range domain.SlotIDs {
		slot, ok := stored[id]
		if !ok {
			slot = domain.AddressSlot{ID: id}
		}
		result = append(result, slot)
	}
	return result, nil
}

// SaveSlot перезаписывает слот; идентификатор обязан быть "1".."3".
func (r *addressRepositoryInMemory) SaveSlot(userID string, slot domain.AddressSlot) error {
	if !domain.ValidSlotID(slot.ID) {
		return domain.ErrSlotInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.slots[userID]
	if !ok {
		stored = make(map[string]domain.AddressSlot, len(domain.SlotIDs))
		r.slots[userID] = stored
	}
	stored[slot.ID] = slot
	return nil
}

var _ domain.AddressRepository = (*addressRepositoryInMemory)(nil)
