package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/messaging/kafka"
)

// messagingStack собирает Kafka producer и паблишеры для outbox-воркера:
// основной topic и DLQ делят одно подключение.
type messagingStack struct {
	producer  *kafka.Producer
	publisher domain.OutboxPublisher
	dlq       domain.OutboxPublisher
}

// setupMessaging подключает Kafka по конфигурации. Пустой список брокеров
// (или недоступный брокер) отключает публикацию: события копятся в outbox
// и уйдут после рестарта с рабочим брокером.
func setupMessaging(cfg Config, logger *log.Entry) *messagingStack {
	if strings.TrimSpace(cfg.KafkaBrokers) == "" {
		logger.Info("kafka brokers are not configured, outbox publishing is disabled")
		return nil
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:  cfg.KafkaBrokers,
		ClientID: cfg.KafkaClientID,
	}, logger.WithField("component", "kafka-producer"))
	if err != nil {
		logger.WithError(err).Warn("kafka is unreachable, events will accumulate in outbox")
		return nil
	}

	logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer connected")
	return &messagingStack{
		producer:  producer,
		publisher: kafka.NewOutboxPublisher(producer, cfg.OutboxTopic),
		dlq:       kafka.NewOutboxPublisher(producer, cfg.DLQTopic),
	}
}

// Close закрывает подключение к брокерам.
func (m *messagingStack) Close(logger *log.Entry) {
	if m == nil {
		return
	}
	if err := m.producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	}
}
