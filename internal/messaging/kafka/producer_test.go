package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishCheckoutEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndSucceed()

	event := NewCheckoutEvent(
		EventTypeCheckoutCompleted,
		"user-1",
		42,
		map[string]interface{}{
			"ordered_lines": 3,
		},
	)

	if err := producer.PublishCheckoutEvent(event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishOrderEvent_BrokerError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderEvent(EventTypeOrderStatusChanged, "order-1", "user-1", "shipped", nil)

	if err := producer.PublishOrderEvent(event); err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducerConfig_BrokerList(t *testing.T) {
	tests := []struct {
		brokers string
		want    int
	}{
		{"localhost:9092", 1},
		{"localhost:9092, localhost:9093", 2},
		{" localhost:9092 ,, ", 1},
		{"", 0},
	}

	for _, tt := range tests {
		cfg := ProducerConfig{Brokers: tt.brokers}
		if got := len(cfg.brokerList()); got != tt.want {
			t.Errorf("brokerList(%q) returned %d entries, want %d", tt.brokers, got, tt.want)
		}
	}
}

func TestNewProducer_NoBrokers(t *testing.T) {
	if _, err := NewProducer(ProducerConfig{Brokers: "  "}, nil); err == nil {
		t.Fatal("expected error for empty broker list")
	}
}

func TestNewCheckoutEvent(t *testing.T) {
	metadata := map[string]interface{}{
		"ordered_lines": 2,
		"final_amount":  259800,
	}

	event := NewCheckoutEvent(EventTypeCheckoutCompleted, "user-1", 7, metadata)

	if event.EventType != EventTypeCheckoutCompleted {
		t.Errorf("expected event type %s, got %s", EventTypeCheckoutCompleted, event.EventType)
	}
	if event.UserID != "user-1" {
		t.Errorf("expected user id user-1, got %s", event.UserID)
	}
	if event.BatchNo != 7 {
		t.Errorf("expected batch no 7, got %d", event.BatchNo)
	}
	if event.Metadata["ordered_lines"] != 2 {
		t.Error("metadata not set correctly")
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}

func TestNewOrderEvent(t *testing.T) {
	event := NewOrderEvent(EventTypeOrderStatusChanged, "order-1", "user-1", "shipped", map[string]interface{}{
		"previous": "ordered",
	})

	if event.EventType != EventTypeOrderStatusChanged {
		t.Errorf("expected event type %s, got %s", EventTypeOrderStatusChanged, event.EventType)
	}
	if event.OrderID != "order-1" {
		t.Errorf("expected order id order-1, got %s", event.OrderID)
	}
	if event.UserID != "user-1" {
		t.Errorf("expected user id user-1, got %s", event.UserID)
	}
	if event.Status != "shipped" {
		t.Errorf("expected status shipped, got %s", event.Status)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
}
