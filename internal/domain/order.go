package domain

import (
	"strings"
	"time"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusOrdered — строка заказа создана при оформлении корзины.
	OrderStatusOrdered OrderStatus = "ordered"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен (терминальный статус).
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCanceled — заказ отменён (терминальный статус).
	OrderStatusCanceled OrderStatus = "canceled"
)

// PaymentStatus описывает состояние оплаты строки заказа.
type PaymentStatus string

const (
	// PaymentStatusPending — оплата ожидается (наложенный платёж).
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusPaid — оплата подтверждена.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusFailed — оплата не прошла.
	PaymentStatusFailed PaymentStatus = "failed"
)

// PaymentMethodCOD — наложенный платёж; единственный метод, при котором
// строка создаётся со статусом оплаты pending.
const PaymentMethodCOD = "COD"

// Order — одна оформленная строка заказа. Строки одного оформления
// делят общий BatchNo и показываются вместе как один счёт.
type Order struct {
	// ID строки заказа; совпадает с ID строки корзины, из которой она создана.
	ID string
	// BatchNo группирует строки одного оформления.
	BatchNo     int64
	UserID      string
	ProductID   string
	ProductName string
	Qty         int32
	RateMinor   int64
	// AmountMinor всегда равен RateMinor*Qty.
	AmountMinor int64
	// FinalAmountMinor — итог всего оформления, продублированный в каждой строке.
	FinalAmountMinor int64
	TaxCode          string
	PaymentMethod    string
	OrderStatus      OrderStatus
	PaymentStatus    PaymentStatus
	// AddressSnapshot — закодированный 12-польный адрес на момент оформления.
	AddressSnapshot string
	Version         int64
	CreatedAt       time.Time
	StatusUpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты строки заказа.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if o.ProductID == "" {
		errs = append(errs, ErrProductRequired)
	}
	if o.Qty <= 0 {
		errs = append(errs, ErrQtyInvalid)
	}
	if o.RateMinor < 0 {
		errs = append(errs, ErrRateInvalid)
	}
	if o.AmountMinor != int64(o.Qty)*o.RateMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// IsTerminal сообщает, что из статуса нет разрешённых переходов.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// CanTransitionTo проверяет переход по машине состояний заказа:
// ordered → shipped → delivered, отмена допустима из любого нетерминального.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case OrderStatusShipped:
		return s == OrderStatusOrdered
	case OrderStatusDelivered:
		return s == OrderStatusShipped
	case OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// CanTransitionTo проверяет переход статуса оплаты: pending → paid|failed.
// Статус назначается один раз при создании и меняется только внешней операцией.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s != PaymentStatusPending {
		return false
	}
	return next == PaymentStatusPaid || next == PaymentStatusFailed
}

// ParseOrderStatus разбирает статус заказа из внешнего представления.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusOrdered, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return OrderStatus(s), true
	default:
		return "", false
	}
}

// ParsePaymentStatus разбирает статус оплаты из внешнего представления.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return PaymentStatus(s), true
	default:
		return "", false
	}
}

// InitialPaymentStatus выбирает статус оплаты по методу платежа:
// наложенный платёж стартует как pending, остальные методы считаются оплаченными.
func InitialPaymentStatus(paymentMethod string) PaymentStatus {
	if strings.EqualFold(paymentMethod, PaymentMethodCOD) {
		return PaymentStatusPending
	}
	return PaymentStatusPaid
}
