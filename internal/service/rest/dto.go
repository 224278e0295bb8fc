package rest

import (
	"time"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

type cartLineResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Qty         int32     `json:"qty"`
	RateMinor   int64     `json:"rate_minor"`
	AmountMinor int64     `json:"amount_minor"`
	TaxCode     string    `json:"tax_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCartLineResponse(line domain.CartLine) cartLineResponse {
	return cartLineResponse{
		ID:          line.ID,
		UserID:      line.UserID,
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Qty:         line.Qty,
		RateMinor:   line.RateMinor,
		AmountMinor: line.AmountMinor,
		TaxCode:     line.TaxCode,
		CreatedAt:   line.CreatedAt,
		UpdatedAt:   line.UpdatedAt,
	}
}

func toCartLineResponses(lines []domain.CartLine) []cartLineResponse {
	out := make([]cartLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, toCartLineResponse(line))
	}
	return out
}

type addressPayload struct {
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	HouseName   string `json:"house_name"`
	Street      string `json:"street"`
	Landmark    string `json:"landmark"`
	City        string `json:"city"`
	State       string `json:"state"`
	PinCode     string `json:"pin_code"`
	Country     string `json:"country"`
	AddrType    string `json:"addr_type"`
	CountryCode string `json:"country_code"`
}

func (p addressPayload) toDomain() domain.Address {
	return domain.Address{
		Name:        p.Name,
		Mobile:      p.Mobile,
		HouseName:   p.HouseName,
		Street:      p.Street,
		Landmark:    p.Landmark,
		City:        p.City,
		State:       p.State,
		PinCode:     p.PinCode,
		Country:     p.Country,
		AddrType:    domain.AddrType(p.AddrType),
		CountryCode: p.CountryCode,
	}
}

type addressResponse struct {
	SlotID      string `json:"slot_id"`
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	HouseName   string `json:"house_name"`
	Street      string `json:"street"`
	Landmark    string `json:"landmark"`
	City        string `json:"city"`
	State       string `json:"state"`
	PinCode     string `json:"pin_code"`
	Country     string `json:"country"`
	AddrType    string `json:"addr_type"`
	CountryCode string `json:"country_code"`
}

func toAddressResponse(addr domain.Address) addressResponse {
	return addressResponse{
		SlotID:      addr.SlotID,
		Name:        addr.Name,
		Mobile:      addr.Mobile,
		HouseName:   addr.HouseName,
		Street:      addr.Street,
		Landmark:    addr.Landmark,
		City:        addr.City,
		State:       addr.State,
		PinCode:     addr.PinCode,
		Country:     addr.Country,
		AddrType:    string(addr.AddrType),
		CountryCode: addr.CountryCode,
	}
}

type addressSlotResponse struct {
	ID       string           `json:"id"`
	Occupied bool             `json:"occupied"`
	Address  *addressResponse `json:"address,omitempty"`
}

func toAddressSlotResponse(slot domain.AddressSlot) addressSlotResponse {
	resp := addressSlotResponse{ID: slot.ID, Occupied: slot.Occupied}
	if slot.Occupied {
		addr := toAddressResponse(slot.Address)
		resp.Address = &addr
	}
	return resp
}

type orderResponse struct {
	ID               string          `json:"id"`
	BatchNo          int64           `json:"batch_no"`
	UserID           string          `json:"user_id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Qty              int32           `json:"qty"`
	RateMinor        int64           `json:"rate_minor"`
	AmountMinor      int64           `json:"amount_minor"`
	FinalAmountMinor int64           `json:"final_amount_minor"`
	TaxCode          string          `json:"tax_code,omitempty"`
	PaymentMethod    string          `json:"payment_method"`
	OrderStatus      string          `json:"order_status"`
	PaymentStatus    string          `json:"payment_status"`
	Address          addressResponse `json:"address"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	StatusUpdatedAt  time.Time       `json:"status_updated_at"`
}

func toOrderResponse(order domain.Order) orderResponse {
	return orderResponse{
		ID:               order.ID,
		BatchNo:          order.BatchNo,
		UserID:           order.UserID,
		ProductID:        order.ProductID,
		ProductName:      order.ProductName,
		Qty:              order.Qty,
		RateMinor:        order.RateMinor,
		AmountMinor:      order.AmountMinor,
		FinalAmountMinor: order.FinalAmountMinor,
		TaxCode:          order.TaxCode,
		PaymentMethod:    order.PaymentMethod,
		OrderStatus:      string(order.OrderStatus),
		PaymentStatus:    string(order.PaymentStatus),
		Address:          toAddressResponse(domain.DecodeAddressLenient(order.AddressSnapshot)),
		Version:          order.Version,
		CreatedAt:        order.CreatedAt,
		StatusUpdatedAt:  order.StatusUpdatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	return out
}

type failedLineResponse struct {
	LineID    string `json:"line_id"`
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason"`
}

func toFailedLineResponses(failed []domain.FailedLine) []failedLineResponse {
	out := make([]failedLineResponse, 0, len(failed))
	for _, fl := range failed {
		out = append(out, failedLineResponse{
			LineID:    fl.Line.ID,
			ProductID: fl.Line.ProductID,
			Qty:       fl.Line.Qty,
			Kind:      string(fl.Kind),
			Reason:    fl.Reason,
		})
	}
	return out
}

type billResponse struct {
	BatchNo          int64           `json:"batch_no"`
	TotalAmountMinor int64           `json:"total_amount_minor"`
	LineCount        int             `json:"line_count"`
	Address          addressResponse `json:"address"`
	Orders           []orderResponse `json:"orders"`
}

func toBillResponse(bill domain.Bill) billResponse {
	return billResponse{
		BatchNo:          bill.BatchNo,
		TotalAmountMinor: bill.TotalAmountMinor,
		LineCount:        bill.LineCount,
		Address:          toAddressResponse(bill.Address),
		Orders:           toOrderResponses(bill.Orders),
	}
}

func toBillResponses(bills []domain.Bill) []billResponse {
	out := make([]billResponse, 0, len(bills))
	for _, bill := range bills {
		out = append(out, toBillResponse(bill))
	}
	return out
}

type timelineEventResponse struct {
	OrderID  string    `json:"order_id"`
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func toTimelineResponses(events []domain.TimelineEvent) []timelineEventResponse {
	out := make([]timelineEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, timelineEventResponse{
			OrderID:  event.OrderID,
			Type:     event.Type,
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}
	return out
}

type productPayload struct {
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
	PriceMinor int64  `json:"price_minor"`
	TaxCode    string `json:"tax_code"`
}

type productResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
	PriceMinor int64  `json:"price_minor"`
	TaxCode    string `json:"tax_code,omitempty"`
}

func toProductResponse(product domain.Product) productResponse {
	return productResponse{
		ID:         product.ID,
		Name:       product.Name,
		Quantity:   product.Quantity,
		PriceMinor: product.PriceMinor,
		TaxCode:    product.TaxCode,
	}
}
