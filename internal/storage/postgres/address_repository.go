package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository создаёт PostgreSQL-реализацию AddressRepository.
func NewAddressRepository(store *Store) domain.AddressRepository {
	return &addressRepository{db: store.DB()}
}

// Slots возвращает все три слота пользователя; слоты без строки в базе
// считаются незанятыми.
func (r *addressRepository) Slots(userID string) ([]domain.AddressSlot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT slot_id, occupied, name, mobile, house_name, street, landmark,
		       city, state, pin_code, country, addr_type, country_code
		FROM address_slots
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list address slots: %w", err)
	}
	defer rows.Close()

	found := make(map[string]domain.AddressSlot, len(domain.SlotIDs))
	for rows.Next() {
		var (
			slot     domain.AddressSlot
			addrType string
		)
		if err := rows.Scan(
			&slot.ID, &slot.Occupied,
			&slot.Address.Name, &slot.Address.Mobile, &slot.Address.HouseName,
			&slot.Address.Street, &slot.Address.Landmark, &slot.Address.City,
			&slot.Address.State, &slot.Address.PinCode, &slot.Address.Country,
			&addrType, &slot.Address.CountryCode,
		); err != nil {
			return nil, fmt.Errorf("scan address slot: %w", err)
		}
		if slot.Occupied {
			slot.Address.SlotID = slot.ID
			slot.Address.AddrType = domain.AddrType(addrType)
		} else {
			slot.Address = domain.Address{}
		}
		found[slot.ID] = slot
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address slots: %w", err)
	}

	result := make([]domain.AddressSlot, 0, len(domain.SlotIDs))
	for _, id := range domain.SlotIDs {
		slot, ok := found[id]
		if !ok {
			slot = domain.AddressSlot{ID: id}
		}
		result = append(result, slot)
	}
	return result, nil
}

func (r *addressRepository) SaveSlot(userID string, slot domain.AddressSlot) error {
	if !domain.ValidSlotID(slot.ID) {
		return domain.ErrSlotInvalid
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO address_slots (
			user_id, slot_id, occupied, name, mobile, house_name, street, landmark,
			city, state, pin_code, country, addr_type, country_code, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,NOW())
		ON CONFLICT (user_id, slot_id) DO UPDATE
		SET occupied = EXCLUDED.occupied,
		    name = EXCLUDED.name,
		    mobile = EXCLUDED.mobile,
		    house_name = EXCLUDED.house_name,
		    street = EXCLUDED.street,
		    landmark = EXCLUDED.landmark,
		    city = EXCLUDED.city,
		    state = EXCLUDED.state,
		    pin_code = EXCLUDED.pin_code,
		    country = EXCLUDED.country,
		    addr_type = EXCLUDED.addr_type,
		    country_code = EXCLUDED.country_code,
		    updated_at = NOW()
	`,
		userID, slot.ID, slot.Occupied,
		slot.Address.Name, slot.Address.Mobile, slot.Address.HouseName,
		slot.Address.Street, slot.Address.Landmark, slot.Address.City,
		slot.Address.State, slot.Address.PinCode, slot.Address.Country,
		string(slot.Address.AddrType), slot.Address.CountryCode,
	)
	if err != nil {
		return fmt.Errorf("save address slot: %w", err)
	}
	return nil
}

var _ domain.AddressRepository = (*addressRepository)(nil)
