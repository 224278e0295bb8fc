package domain

import "strings"

// AddressDelimiter разделяет 12 позиционных полей в снапшоте адреса.
// Формат унаследован от исходной схемы хранения и обязан оставаться
// байт-в-байт стабильным: снапшот в заказе декодируется спустя месяцы.
const AddressDelimiter = "@"

// addressFieldCount — фиксированная арность записи адреса.
const addressFieldCount = 12

// AddrType помечает слот адреса как основной или дополнительный.
type AddrType string

const (
	// AddrTypePrimary — основной адрес доставки пользователя.
	AddrTypePrimary AddrType = "P"
	// AddrTypeSecondary — дополнительный адрес.
	AddrTypeSecondary AddrType = "S"
)

// SlotIDs перечисляет допустимые идентификаторы слотов адресов.
var SlotIDs = []string{"1", "2", "3"}

// Address — запись адреса фиксированной арности. Порядок полей задаёт
// порядок сериализации и менять его нельзя.
type Address struct {
	SlotID      string
	Name        string
	Mobile      string
	HouseName   string
	Street      string
	Landmark    string
	City        string
	State       string
	PinCode     string
	Country     string
	AddrType    AddrType
	CountryCode string
}

// Encode сериализует адрес в каноничную 12-польную строку с 11 разделителями.
func (a Address) Encode() string {
	fields := [addressFieldCount]string{
		a.SlotID,
		a.Name,
		a.Mobile,
		a.HouseName,
		a.Street,
		a.Landmark,
		a.City,
		a.State,
		a.PinCode,
		a.Country,
		string(a.AddrType),
		a.CountryCode,
	}
	return strings.Join(fields[:], AddressDelimiter)
}

// IsZero сообщает, что все поля адреса пустые.
func (a Address) IsZero() bool {
	return a == Address{}
}

// DecodeAddress разбирает снапшот адреса. Строка, не распадающаяся ровно
// на 12 полей, отклоняется с ErrMalformedAddress: слепое индексирование
// по результату split здесь запрещено.
func DecodeAddress(s string) (Address, error) {
	parts := strings.Split(s, AddressDelimiter)
	if len(parts) != addressFieldCount {
		return Address{}, ErrMalformedAddress
	}
	return Address{
		SlotID:      parts[0],
		Name:        parts[1],
		Mobile:      parts[2],
		HouseName:   parts[3],
		Street:      parts[4],
		Landmark:    parts[5],
		City:        parts[6],
		State:       parts[7],
		PinCode:     parts[8],
		Country:     parts[9],
		AddrType:    AddrType(parts[10]),
		CountryCode: parts[11],
	}, nil
}

// DecodeAddressLenient возвращает полностью пустой адрес вместо ошибки.
// Используется при отображении снапшотов из заказов: битый снапшот не
// должен ронять выдачу счетов.
func DecodeAddressLenient(s string) Address {
	addr, err := DecodeAddress(s)
	if err != nil {
		return Address{}
	}
	return addr
}

// ValidSlotID проверяет, что идентификатор слота входит в "1".."3".
func ValidSlotID(id string) bool {
	for _, known := range SlotIDs {
		if id == known {
			return true
		}
	}
	return false
}

// AddressSlot хранит адрес вместе с явным признаком занятости.
// Слот с Occupied=false не содержит адреса; идентификаторы слотов
// фиксированы и никогда не перенумеровываются.
type AddressSlot struct {
	ID       string
	Occupied bool
	Address  Address
}
