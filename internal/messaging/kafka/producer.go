package kafka

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// ProducerConfig — настройки подключения к брокерам Kafka.
// Значения берутся из конфигурации приложения.
type ProducerConfig struct {
	// Brokers — адреса брокеров через запятую, как в переменной окружения.
	Brokers string
	// ClientID идентифицирует сервис в логах и квотах брокера.
	ClientID string
	// MaxRetries — число повторов отправки на стороне sarama; 0 оставляет
	// умолчание библиотеки.
	MaxRetries int
	// SendTimeout ограничивает ожидание подтверждения от брокера.
	SendTimeout time.Duration
}

func (c ProducerConfig) brokerList() []string {
	parts := strings.Split(c.Brokers, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if addr := strings.TrimSpace(part); addr != "" {
			list = append(list, addr)
		}
	}
	return list
}

// Producer публикует события оформления в Kafka синхронно: вызов
// возвращается после подтверждения всеми in-sync репликами. Producer
// идемпотентный, поэтому повтор после сетевой ошибки не дублирует
// сообщение в топике.
type Producer struct {
	producer sarama.SyncProducer
	logger   *log.Entry
}

// NewProducer подключается к брокерам из cfg.
func NewProducer(cfg ProducerConfig, logger *log.Entry) (*Producer, error) {
	brokers := cfg.brokerList()
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are not configured")
	}
	if logger == nil {
		logger = log.WithField("component", "kafka-producer")
	}

	sc := sarama.NewConfig()
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Idempotent = true
	// Идемпотентность требует не более одного запроса в полёте.
	sc.Net.MaxOpenRequests = 1
	if cfg.MaxRetries > 0 {
		sc.Producer.Retry.Max = cfg.MaxRetries
	}
	if cfg.SendTimeout > 0 {
		sc.Producer.Timeout = cfg.SendTimeout
	}

	producer, err := sarama.NewSyncProducer(brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("connect kafka brokers %v: %w", brokers, err)
	}

	return &Producer{producer: producer, logger: logger}, nil
}

// PublishCheckoutEvent публикует событие оформления. Ключ — user_id,
// чтобы события одного пользователя читались из одной партиции по порядку.
func (p *Producer) PublishCheckoutEvent(event *CheckoutEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal checkout event: %w", err)
	}
	return p.send(TopicCheckoutEvents, event.UserID, data)
}

// PublishOrderEvent публикует событие строки заказа с ключом по order_id.
func (p *Producer) PublishOrderEvent(event *OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	return p.send(TopicOrderEvents, event.OrderID, data)
}

// send отправляет готовый JSON в topic; ключ определяет партицию.
func (p *Producer) send(topic, key string, value []byte) error {
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(value),
		Timestamp: time.Now(),
	})
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic": topic,
			"key":   key,
		}).Error("kafka send failed")
		return fmt.Errorf("send to %s: %w", topic, err)
	}

	p.logger.WithFields(log.Fields{
		"topic":     topic,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	}).Debug("kafka message sent")

	return nil
}

// Close закрывает подключение к брокерам.
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
