package addressbook

import (
	log "github.com/sirupsen/logrus"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// Service управляет тремя фиксированными слотами адресов пользователя.
// Инвариант: среди занятых слотов ровно один помечен как основной.
type Service struct {
	addresses domain.AddressRepository
	logger    *log.Entry
}

// NewService создаёт сервис адресной книги.
func NewService(addresses domain.AddressRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "addressbook")
	}
	return &Service{addresses: addresses, logger: logger}
}

// Slots возвращает все три слота пользователя.
func (s *Service) Slots(userID string) ([]domain.AddressSlot, error) {
	if userID == "" {
		return nil, domain.ErrUserRequired
	}
	return s.addresses.Slots(userID)
}

// Add помещает адрес в первый свободный слот. Первый адрес пользователя
// всегда становится основным; новый основной понижает остальные занятые
// слоты до дополнительных.
func (s *Service) Add(userID string, addr domain.Address) (domain.AddressSlot, error) {
	if userID == "" {
		return domain.AddressSlot{}, domain.ErrUserRequired
	}

	slots, err := s.addresses.Slots(userID)
	if err != nil {
		return domain.AddressSlot{}, err
	}

	free := ""
	occupiedCount := 0
	for _, slot := range slots {
		if slot.Occupied {
			occupiedCount++
			continue
		}
		if free == "" {
			free = slot.ID
		}
	}
	if free == "" {
		return domain.AddressSlot{}, domain.ErrSlotsFull
	}

	if occupiedCount == 0 {
		addr.AddrType = domain.AddrTypePrimary
	}
	if addr.AddrType != domain.AddrTypePrimary {
		addr.AddrType = domain.AddrTypeSecondary
	}
	addr.SlotID = free

	if addr.AddrType == domain.AddrTypePrimary {
		if err := s.demoteOthers(userID, slots, free); err != nil {
			return domain.AddressSlot{}, err
		}
	}

	slot := domain.AddressSlot{ID: free, Occupied: true, Address: addr}
	if err := s.addresses.SaveSlot(userID, slot); err != nil {
		return domain.AddressSlot{}, err
	}
	return slot, nil
}

// Update перезаписывает адрес в занятом слоте. Понижение остальных слотов
// применяется, если обновлённый адрес становится основным.
func (s *Service) Update(userID, slotID string, addr domain.Address) (domain.AddressSlot, error) {
	if !domain.ValidSlotID(slotID) {
		return domain.AddressSlot{}, domain.ErrSlotInvalid
	}

	slots, err := s.addresses.Slots(userID)
	if err != nil {
		return domain.AddressSlot{}, err
	}
	current, err := findSlot(slots, slotID)
	if err != nil {
		return domain.AddressSlot{}, err
	}
	if !current.Occupied {
		return domain.AddressSlot{}, domain.ErrSlotEmpty
	}

	// Единственный основной адрес нельзя понизить обновлением.
	if current.Address.AddrType == domain.AddrTypePrimary && addr.AddrType != domain.AddrTypePrimary {
		addr.AddrType = domain.AddrTypePrimary
	}
	addr.SlotID = slotID

	if addr.AddrType == domain.AddrTypePrimary && current.Address.AddrType != domain.AddrTypePrimary {
		if err := s.demoteOthers(userID, slots, slotID); err != nil {
			return domain.AddressSlot{}, err
		}
	}

	slot := domain.AddressSlot{ID: slotID, Occupied: true, Address: addr}
	if err := s.addresses.SaveSlot(userID, slot); err != nil {
		return domain.AddressSlot{}, err
	}
	return slot, nil
}

// Clear освобождает слот. Если очищен основной адрес, основным становится
// занятый слот с наименьшим идентификатором.
func (s *Service) Clear(userID, slotID string) error {
	if !domain.ValidSlotID(slotID) {
		return domain.ErrSlotInvalid
	}

	slots, err := s.addresses.Slots(userID)
	if err != nil {
		return err
	}
	current, err := findSlot(slots, slotID)
	if err != nil {
		return err
	}
	if !current.Occupied {
		return domain.ErrSlotEmpty
	}

	if err := s.addresses.SaveSlot(userID, domain.AddressSlot{ID: slotID}); err != nil {
		return err
	}

	if current.Address.AddrType != domain.AddrTypePrimary {
		return nil
	}
	for _, slot := range slots {
		if slot.ID == slotID || !slot.Occupied {
			continue
		}
		slot.Address.AddrType = domain.AddrTypePrimary
		return s.addresses.SaveSlot(userID, slot)
	}
	return nil
}

// SetPrimary делает занятый слот основным, понижая остальные.
func (s *Service) SetPrimary(userID, slotID string) error {
	if !domain.ValidSlotID(slotID) {
		return domain.ErrSlotInvalid
	}

	slots, err := s.addresses.Slots(userID)
	if err != nil {
		return err
	}
	current, err := findSlot(slots, slotID)
	if err != nil {
		return err
	}
	if !current.Occupied {
		return domain.ErrSlotEmpty
	}

	if err := s.demoteOthers(userID, slots, slotID); err != nil {
		return err
	}
	current.Address.AddrType = domain.AddrTypePrimary
	return s.addresses.SaveSlot(userID, current)
}

// GetPrimary возвращает основной адрес пользователя, если он задан.
func (s *Service) GetPrimary(userID string) (domain.Address, bool, error) {
	slots, err := s.addresses.Slots(userID)
	if err != nil {
		return domain.Address{}, false, err
	}
	for _, slot := range slots {
		if slot.Occupied && slot.Address.AddrType == domain.AddrTypePrimary {
			return slot.Address, true, nil
		}
	}
	return domain.Address{}, false, nil
}

func (s *Service) demoteOthers(userID string, slots []domain.AddressSlot, keepID string) error {
	for _, slot := range slots {
		if slot.ID == keepID || !slot.Occupied {
			continue
		}
		if slot.Address.AddrType != domain.AddrTypePrimary {
			continue
		}
		slot.Address.AddrType = domain.AddrTypeSecondary
		if err := s.addresses.SaveSlot(userID, slot); err != nil {
			return err
		}
	}
	return nil
}

func findSlot(slots []domain.AddressSlot, slotID string) (domain.AddressSlot, error) {
	for _, slot := range slots {
		if slot.ID == slotID {
			return slot, nil
		}
	}
	return domain.AddressSlot{}, domain.ErrSlotInvalid
}
