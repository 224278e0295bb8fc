package domain

import (
	"strings"
	"testing"
)

func TestAddressEncodeDecodeRoundTrip(t *testing.T) {
	addr := Address{
		SlotID:      "2",
		Name:        "Anita Kurian",
		Mobile:      "9846012345",
		HouseName:   "Kurian House",
		Street:      "MG Road",
		Landmark:    "Near Metro Pillar 214",
		City:        "Kochi",
		State:       "Kerala",
		PinCode:     "682016",
		Country:     "India",
		AddrType:    AddrTypePrimary,
		CountryCode: "+91",
	}

	encoded := addr.Encode()
	if got := strings.Count(encoded, AddressDelimiter); got != 11 {
		t.Fatalf("encoded address must contain 11 delimiters, got %d: %q", got, encoded)
	}

	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("DecodeAddress() error = %v", err)
	}
	if decoded != addr {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", decoded, addr)
	}
}

func TestAddressEncodeEmptyFields(t *testing.T) {
	// Пустые поля сохраняют арность: запись из 12 пустых полей валидна.
	encoded := Address{}.Encode()
	if got := strings.Count(encoded, AddressDelimiter); got != 11 {
		t.Fatalf("empty address must still contain 11 delimiters, got %d", got)
	}

	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("DecodeAddress() error = %v", err)
	}
	if !decoded.IsZero() {
		t.Errorf("decoded empty address is not zero: %+v", decoded)
	}
}

func TestDecodeAddressMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty string", input: ""},
		{name: "too few fields", input: "1@name@mobile"},
		{name: "too many fields", input: strings.Repeat("@", 12)},
		{name: "no delimiters", input: "just a plain string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeAddress(tt.input); err != ErrMalformedAddress {
				t.Errorf("DecodeAddress(%q) error = %v, want ErrMalformedAddress", tt.input, err)
			}
			if got := DecodeAddressLenient(tt.input); !got.IsZero() {
				t.Errorf("DecodeAddressLenient(%q) = %+v, want zero address", tt.input, got)
			}
		})
	}
}

func TestDecodeAddressFieldWithoutEscaping(t *testing.T) {
	// Разделитель внутри поля ломает арность записи; формат не поддерживает
	// экранирование, и такой снапшот обязан отклоняться целиком.
	addr := Address{SlotID: "1", Name: "x@y", AddrType: AddrTypeSecondary}
	if _, err := DecodeAddress(addr.Encode()); err != ErrMalformedAddress {
		t.Fatalf("address with delimiter inside a field must not decode, got err = %v", err)
	}
}

func TestValidSlotID(t *testing.T) {
	for _, id := range SlotIDs {
		if !ValidSlotID(id) {
			t.Errorf("ValidSlotID(%q) = false, want true", id)
		}
	}
	for _, id := range []string{"", "0", "4", "10", "one"} {
		if ValidSlotID(id) {
			t.Errorf("ValidSlotID(%q) = true, want false", id)
		}
	}
}
