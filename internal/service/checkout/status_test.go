package checkout

import (
	"errors"
	"testing"
	"time"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

func seedOrder(t *testing.T, fx *finalizerFixture, id, userID string, batchNo int64, status domain.OrderStatus, payment domain.PaymentStatus) {
	t.Helper()
	now := time.Now().UTC()
	err := fx.orders.Create(domain.Order{
		ID:              id,
		BatchNo:         batchNo,
		UserID:          userID,
		ProductID:       "p-1",
		ProductName:     "product p-1",
		Qty:             1,
		RateMinor:       1000,
		AmountMinor:     1000,
		PaymentMethod:   "card",
		OrderStatus:     status,
		PaymentStatus:   payment,
		CreatedAt:       now,
		StatusUpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed order %s: %v", id, err)
	}
}

func TestFinalizer_UpdateOrderStatus(t *testing.T) {
	fx := newFinalizerFixture(t)
	seedOrder(t, fx, "order-1", "user-1", 1, domain.OrderStatusOrdered, domain.PaymentStatusPaid)

	saved, err := fx.finalizer.UpdateOrderStatus("order-1", domain.OrderStatusShipped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.OrderStatus != domain.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", saved.OrderStatus)
	}
	if saved.Version != 1 {
		t.Fatalf("expected version 1 after first save, got %d", saved.Version)
	}

	stored, err := fx.orders.Get("order-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if stored.OrderStatus != domain.OrderStatusShipped {
		t.Fatalf("persisted status = %s, expected shipped", stored.OrderStatus)
	}

	// Переход фиксируется в timeline и outbox.
	events, err := fx.timeline.List("order-1")
	if err != nil {
		t.Fatalf("list timeline: %v", err)
	}
	if len(events) != 1 || events[0].Type != "order.status_changed" {
		t.Fatalf("expected order.status_changed timeline event, got %+v", events)
	}
	pending, err := fx.outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "order.status_changed" {
		t.Fatalf("expected order.status_changed outbox event, got %+v", pending)
	}
}

func TestFinalizer_UpdateOrderStatus_RejectsInvalidTransition(t *testing.T) {
	fx := newFinalizerFixture(t)
	seedOrder(t, fx, "order-1", "user-1", 1, domain.OrderStatusOrdered, domain.PaymentStatusPaid)
	seedOrder(t, fx, "order-2", "user-1", 1, domain.OrderStatusDelivered, domain.PaymentStatusPaid)

	cases := []struct {
		name    string
		orderID string
		next    domain.OrderStatus
	}{
		{name: "ordered to delivered skips shipped", orderID: "order-1", next: domain.OrderStatusDelivered},
		{name: "delivered is terminal", orderID: "order-2", next: domain.OrderStatusCanceled},
		{name: "back to ordered", orderID: "order-1", next: domain.OrderStatusOrdered},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := fx.finalizer.UpdateOrderStatus(tc.orderID, tc.next); !errors.Is(err, domain.ErrInvalidStatusTransition) {
				t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
			}
		})
	}

	// Неудачный переход не оставляет следов.
	if events, _ := fx.timeline.List("order-1"); len(events) != 0 {
		t.Fatalf("expected no timeline events after rejected transitions, got %+v", events)
	}
}

func TestFinalizer_UpdateOrderStatus_NotFound(t *testing.T) {
	fx := newFinalizerFixture(t)

	if _, err := fx.finalizer.UpdateOrderStatus("ghost", domain.OrderStatusShipped); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestFinalizer_UpdateOrderStatus_RetriesOnVersionConflict(t *testing.T) {
	fx := newFinalizerFixture(t)
	seedOrder(t, fx, "order-1", "user-1", 1, domain.OrderStatusOrdered, domain.PaymentStatusPaid)

	conflicting := &conflictingOrderRepo{
		OrderRepository: fx.orders,
		conflicts:       2,
	}
	fx.finalizer.orders = conflicting

	saved, err := fx.finalizer.UpdateOrderStatus("order-1", domain.OrderStatusShipped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.OrderStatus != domain.OrderStatusShipped {
		t.Fatalf("expected shipped after retries, got %s", saved.OrderStatus)
	}
	if conflicting.saveCalls != 3 {
		t.Fatalf("expected 3 save attempts, got %d", conflicting.saveCalls)
	}
}

func TestFinalizer_UpdateOrderStatus_GivesUpAfterMaxRetries(t *testing.T) {
	fx := newFinalizerFixture(t)
	seedOrder(t, fx, "order-1", "user-1", 1, domain.OrderStatusOrdered, domain.PaymentStatusPaid)

	conflicting := &conflictingOrderRepo{
		OrderRepository: fx.orders,
		conflicts:       maxStatusRetries + 1,
	}
	fx.finalizer.orders = conflicting

	if _, err := fx.finalizer.UpdateOrderStatus("order-1", domain.OrderStatusShipped); !domain.IsVersionConflict(err) {
		t.Fatalf("expected version conflict error, got %v", err)
	}
}

func TestFinalizer_UpdatePaymentStatus(t *testing.T) {
	fx := newFinalizerFixture(t)
	seedOrder(t, fx, "order-1", "user-1", 1, domain.OrderStatusOrdered, domain.PaymentStatusPending)
	seedOrder(t, fx, "order-2", "user-1", 1, domain.OrderStatusOrdered, domain.PaymentStatusPending)
	seedOrder(t, fx, "order-3", "user-1", 1, domain.OrderStatusOrdered, domain.PaymentStatusPaid)

	saved, err := fx.finalizer.UpdatePaymentStatus("order-1", domain.PaymentStatusPaid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", saved.PaymentStatus)
	}

	saved, err = fx.finalizer.UpdatePaymentStatus("order-2", domain.PaymentStatusFailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.PaymentStatus != domain.PaymentStatusFailed {
		t.Fatalf("expected failed, got %s", saved.PaymentStatus)
	}

	// Из paid переходов нет.
	if _, err := fx.finalizer.UpdatePaymentStatus("order-3", domain.PaymentStatusFailed); !errors.Is(err, domain.ErrInvalidPaymentTransition) {
		t.Fatalf("expected ErrInvalidPaymentTransition, got %v", err)
	}
}

func TestFinalizer_UpdateBatchStatus(t *testing.T) {
	fx := newFinalizerFixture(t)
	seedOrder(t, fx, "order-1", "user-1", 7, domain.OrderStatusOrdered, domain.PaymentStatusPaid)
	seedOrder(t, fx, "order-2", "user-1", 7, domain.OrderStatusOrdered, domain.PaymentStatusPaid)
	// Строка уже уехала вперёд по жизненному циклу — пропускается молча.
	seedOrder(t, fx, "order-3", "user-1", 7, domain.OrderStatusDelivered, domain.PaymentStatusPaid)
	seedOrder(t, fx, "order-4", "user-1", 8, domain.OrderStatusOrdered, domain.PaymentStatusPaid)

	updated, err := fx.finalizer.UpdateBatchStatus("user-1", 7, domain.OrderStatusShipped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("expected 2 updated orders, got %d", len(updated))
	}

	// Чужая партия не затронута.
	other, err := fx.orders.Get("order-4")
	if err != nil {
		t.Fatalf("get order-4: %v", err)
	}
	if other.OrderStatus != domain.OrderStatusOrdered {
		t.Fatalf("expected order-4 untouched, got %s", other.OrderStatus)
	}
}

func TestFinalizer_UpdateBatchStatus_EmptyBatch(t *testing.T) {
	fx := newFinalizerFixture(t)

	if _, err := fx.finalizer.UpdateBatchStatus("user-1", 42, domain.OrderStatusShipped); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestFinalizer_Timeline(t *testing.T) {
	fx := newFinalizerFixture(t)
	seedOrder(t, fx, "order-1", "user-1", 1, domain.OrderStatusOrdered, domain.PaymentStatusPaid)

	if _, err := fx.finalizer.UpdateOrderStatus("order-1", domain.OrderStatusShipped); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if _, err := fx.finalizer.UpdateOrderStatus("order-1", domain.OrderStatusDelivered); err != nil {
		t.Fatalf("update status: %v", err)
	}

	events, err := fx.finalizer.Timeline("order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 timeline events, got %d", len(events))
	}
	if events[0].Reason != "ordered -> shipped" || events[1].Reason != "shipped -> delivered" {
		t.Fatalf("unexpected reasons: %+v", events)
	}

	if _, err := fx.finalizer.Timeline("ghost"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for unknown order, got %v", err)
	}
}

// conflictingOrderRepo отдаёт конфликт версий первые conflicts сохранений.
type conflictingOrderRepo struct {
	domain.OrderRepository
	conflicts int
	saveCalls int
}

func (r *conflictingOrderRepo) Save(order domain.Order) error {
	r.saveCalls++
	if r.saveCalls <= r.conflicts {
		return domain.ErrOrderVersionConflict
	}
	return r.OrderRepository.Save(order)
}
