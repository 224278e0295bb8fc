package addressbook

import (
	"errors"
	"testing"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/storage/memory"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewAddressRepository(), nil)
}

func sampleAddress(name string, addrType domain.AddrType) domain.Address {
	return domain.Address{
		Name:        name,
		Mobile:      "9876543210",
		HouseName:   "12B",
		Street:      "MG Road",
		City:        "Bengaluru",
		State:       "Karnataka",
		PinCode:     "560001",
		Country:     "India",
		AddrType:    addrType,
		CountryCode: "+91",
	}
}

func primaryCount(t *testing.T, svc *Service, userID string) int {
	t.Helper()
	slots, err := svc.Slots(userID)
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	count := 0
	for _, slot := range slots {
		if slot.Occupied && slot.Address.AddrType == domain.AddrTypePrimary {
			count++
		}
	}
	return count
}

func TestService_Add_FirstAddressBecomesPrimary(t *testing.T) {
	svc := newService(t)

	slot, err := svc.Add("user-1", sampleAddress("Ravi", domain.AddrTypeSecondary))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot.ID != "1" {
		t.Fatalf("expected first free slot 1, got %s", slot.ID)
	}
	if slot.Address.AddrType != domain.AddrTypePrimary {
		t.Fatalf("first address must be primary, got %s", slot.Address.AddrType)
	}
	if slot.Address.SlotID != "1" {
		t.Fatalf("expected slot id written into address, got %q", slot.Address.SlotID)
	}
}

func TestService_Add_FillsSlotsInOrder(t *testing.T) {
	svc := newService(t)

	for i, want := range []string{"1", "2", "3"} {
		slot, err := svc.Add("user-1", sampleAddress("Addr", domain.AddrTypeSecondary))
		if err != nil {
			t.Fatalf("add #%d: %v", i+1, err)
		}
		if slot.ID != want {
			t.Fatalf("expected slot %s, got %s", want, slot.ID)
		}
	}

	if _, err := svc.Add("user-1", sampleAddress("Extra", domain.AddrTypeSecondary)); !errors.Is(err, domain.ErrSlotsFull) {
		t.Fatalf("expected ErrSlotsFull when all slots are taken, got %v", err)
	}
	if got := primaryCount(t, svc, "user-1"); got != 1 {
		t.Fatalf("expected exactly one primary, got %d", got)
	}
}

func TestService_Add_NewPrimaryDemotesOthers(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Add("user-1", sampleAddress("Home", domain.AddrTypePrimary)); err != nil {
		t.Fatalf("add home: %v", err)
	}
	added, err := svc.Add("user-1", sampleAddress("Office", domain.AddrTypePrimary))
	if err != nil {
		t.Fatalf("add office: %v", err)
	}
	if added.Address.AddrType != domain.AddrTypePrimary {
		t.Fatalf("expected new address primary, got %s", added.Address.AddrType)
	}

	primary, ok, err := svc.GetPrimary("user-1")
	if err != nil || !ok {
		t.Fatalf("get primary: ok=%v err=%v", ok, err)
	}
	if primary.Name != "Office" {
		t.Fatalf("expected Office primary, got %s", primary.Name)
	}
	if got := primaryCount(t, svc, "user-1"); got != 1 {
		t.Fatalf("expected exactly one primary, got %d", got)
	}
}

func TestService_Update(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Add("user-1", sampleAddress("Home", domain.AddrTypePrimary)); err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := svc.Update("user-1", "1", sampleAddress("Home v2", domain.AddrTypePrimary))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Address.Name != "Home v2" {
		t.Fatalf("expected updated name, got %s", updated.Address.Name)
	}

	if _, err := svc.Update("user-1", "2", sampleAddress("Ghost", domain.AddrTypeSecondary)); !errors.Is(err, domain.ErrSlotEmpty) {
		t.Fatalf("expected ErrSlotEmpty for empty slot, got %v", err)
	}
	if _, err := svc.Update("user-1", "9", sampleAddress("Ghost", domain.AddrTypeSecondary)); !errors.Is(err, domain.ErrSlotInvalid) {
		t.Fatalf("expected ErrSlotInvalid, got %v", err)
	}
}

func TestService_Update_SolePrimaryCannotBeDemoted(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Add("user-1", sampleAddress("Home", domain.AddrTypePrimary)); err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := svc.Update("user-1", "1", sampleAddress("Home", domain.AddrTypeSecondary))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Address.AddrType != domain.AddrTypePrimary {
		t.Fatalf("sole primary must stay primary, got %s", updated.Address.AddrType)
	}
}

func TestService_Update_PromotionDemotesOldPrimary(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Add("user-1", sampleAddress("Home", domain.AddrTypePrimary)); err != nil {
		t.Fatalf("add home: %v", err)
	}
	if _, err := svc.Add("user-1", sampleAddress("Office", domain.AddrTypeSecondary)); err != nil {
		t.Fatalf("add office: %v", err)
	}

	if _, err := svc.Update("user-1", "2", sampleAddress("Office", domain.AddrTypePrimary)); err != nil {
		t.Fatalf("update: %v", err)
	}

	primary, ok, err := svc.GetPrimary("user-1")
	if err != nil || !ok {
		t.Fatalf("get primary: ok=%v err=%v", ok, err)
	}
	if primary.SlotID != "2" {
		t.Fatalf("expected slot 2 primary, got %s", primary.SlotID)
	}
	if got := primaryCount(t, svc, "user-1"); got != 1 {
		t.Fatalf("expected exactly one primary, got %d", got)
	}
}

func TestService_Clear(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Add("user-1", sampleAddress("Home", domain.AddrTypePrimary)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Clear("user-1", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slots, err := svc.Slots("user-1")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if slots[0].Occupied {
		t.Fatal("expected slot 1 freed")
	}

	if err := svc.Clear("user-1", "1"); !errors.Is(err, domain.ErrSlotEmpty) {
		t.Fatalf("expected ErrSlotEmpty, got %v", err)
	}
	if err := svc.Clear("user-1", "0"); !errors.Is(err, domain.ErrSlotInvalid) {
		t.Fatalf("expected ErrSlotInvalid, got %v", err)
	}
}

func TestService_Clear_PrimaryPromotesLowestSlot(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Add("user-1", sampleAddress("Home", domain.AddrTypePrimary)); err != nil {
		t.Fatalf("add home: %v", err)
	}
	if _, err := svc.Add("user-1", sampleAddress("Office", domain.AddrTypeSecondary)); err != nil {
		t.Fatalf("add office: %v", err)
	}
	if _, err := svc.Add("user-1", sampleAddress("Parents", domain.AddrTypeSecondary)); err != nil {
		t.Fatalf("add parents: %v", err)
	}

	if err := svc.Clear("user-1", "1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	primary, ok, err := svc.GetPrimary("user-1")
	if err != nil || !ok {
		t.Fatalf("get primary: ok=%v err=%v", ok, err)
	}
	if primary.SlotID != "2" {
		t.Fatalf("expected slot 2 promoted, got %s", primary.SlotID)
	}
	if got := primaryCount(t, svc, "user-1"); got != 1 {
		t.Fatalf("expected exactly one primary, got %d", got)
	}
}

func TestService_SetPrimary(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Add("user-1", sampleAddress("Home", domain.AddrTypePrimary)); err != nil {
		t.Fatalf("add home: %v", err)
	}
	if _, err := svc.Add("user-1", sampleAddress("Office", domain.AddrTypeSecondary)); err != nil {
		t.Fatalf("add office: %v", err)
	}

	if err := svc.SetPrimary("user-1", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	primary, ok, err := svc.GetPrimary("user-1")
	if err != nil || !ok {
		t.Fatalf("get primary: ok=%v err=%v", ok, err)
	}
	if primary.Name != "Office" {
		t.Fatalf("expected Office primary, got %s", primary.Name)
	}
	if got := primaryCount(t, svc, "user-1"); got != 1 {
		t.Fatalf("expected exactly one primary, got %d", got)
	}

	if err := svc.SetPrimary("user-1", "3"); !errors.Is(err, domain.ErrSlotEmpty) {
		t.Fatalf("expected ErrSlotEmpty, got %v", err)
	}
}

func TestService_GetPrimary_NoAddresses(t *testing.T) {
	svc := newService(t)

	_, ok, err := svc.GetPrimary("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no primary for empty book")
	}
}

func TestService_Slots_RequiresUser(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Slots(""); !errors.Is(err, domain.ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
	if _, err := svc.Add("", sampleAddress("Home", domain.AddrTypePrimary)); !errors.Is(err, domain.ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
}
