package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// События оформления корзины
	EventTypeCheckoutCompleted  EventType = "checkout.completed"
	EventTypeCheckoutLineFailed EventType = "checkout.line_failed"

	// События заказа
	EventTypeOrderStatusChanged   EventType = "order.status_changed"
	EventTypePaymentStatusChanged EventType = "order.payment_status_changed"
)

// Topics для Kafka
const (
	TopicCheckoutEvents  = "wep.checkout.events"
	TopicOrderEvents     = "wep.order.events"
	TopicDeadLetterQueue = "wep.dlq"
)

// CheckoutEvent представляет событие оформления корзины.
type CheckoutEvent struct {
	EventType EventType              `json:"event_type"`
	UserID    string                 `json:"user_id"`
	BatchNo   int64                  `json:"batch_no,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// OrderEvent представляет событие строки заказа.
type OrderEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   string                 `json:"order_id"`
	UserID    string                 `json:"user_id"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewCheckoutEvent создает новое событие оформления.
func NewCheckoutEvent(eventType EventType, userID string, batchNo int64, metadata map[string]interface{}) *CheckoutEvent {
	return &CheckoutEvent{
		EventType: eventType,
		UserID:    userID,
		BatchNo:   batchNo,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, userID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType: eventType,
		OrderID:   orderID,
		UserID:    userID,
		Status:    status,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}
