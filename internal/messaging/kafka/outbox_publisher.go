package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// eventEnvelope — форма outbox-сообщения на проводе. Консьюмеры
// маршрутизируют по event_type, не разбирая payload.
type eventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// OutboxTopicPublisher доставляет сообщения transactional outbox в один
// topic Kafka. Для основного потока и DLQ создаются отдельные экземпляры
// поверх общего producer.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт паблишер outbox-сообщений в topic.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{producer: producer, topic: topic}
}

func (p *OutboxTopicPublisher) Publish(msg domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	data, err := json.Marshal(eventEnvelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       json.RawMessage(msg.Payload),
		PublishedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal outbox envelope %s: %w", msg.ID, err)
	}

	return p.producer.send(p.topic, partitionKey(msg), data)
}

// partitionKey группирует события одного агрегата в одну партицию.
func partitionKey(msg domain.OutboxMessage) string {
	if msg.AggregateID != "" {
		return msg.AggregateID
	}
	return msg.ID
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
