package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100
	defaultMaxAttempts  = 3
)

var (
	outboxPublishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wep_outbox_publish_attempts_total",
		Help: "Total number of outbox publish attempts grouped by result.",
	}, []string{"result"})
	outboxPendingRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wep_outbox_pending_records",
		Help: "Current number of pending records in transactional outbox.",
	})
	outboxOldestPendingAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wep_outbox_oldest_pending_age_seconds",
		Help: "Age in seconds of the oldest pending outbox record.",
	})
)

// Settings — параметры воркера; ровно те ручки, что выставляются через
// конфигурацию приложения. Нулевые PollInterval, BatchSize и MaxAttempts
// заменяются умолчаниями; нулевой RetryBaseDelay означает повтор без паузы.
type Settings struct {
	Logger         *log.Entry
	DLQ            domain.OutboxPublisher
	PollInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.Logger == nil {
		s.Logger = log.WithField("component", "outbox-worker")
	}
	if s.PollInterval <= 0 {
		s.PollInterval = defaultPollInterval
	}
	if s.BatchSize <= 0 {
		s.BatchSize = defaultBatchSize
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = defaultMaxAttempts
	}
	if s.RetryBaseDelay < 0 {
		s.RetryBaseDelay = 0
	}
	return s
}

// Worker перекладывает pending-сообщения из transactional outbox в брокер.
// Сообщение, не ушедшее за MaxAttempts попыток, отправляется в DLQ (если
// настроен) и помечается failed, чтобы не блокировать остальную очередь.
type Worker struct {
	repo      domain.OutboxRepository
	publisher domain.OutboxPublisher
	settings  Settings
	logger    *log.Entry
}

// NewWorker создаёт воркер публикации outbox.
func NewWorker(repo domain.OutboxRepository, publisher domain.OutboxPublisher, settings Settings) *Worker {
	settings = settings.withDefaults()
	return &Worker{
		repo:      repo,
		publisher: publisher,
		settings:  settings,
		logger:    settings.Logger,
	}
}

// Run опрашивает outbox с периодом PollInterval до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	if w.repo == nil || w.publisher == nil {
		w.logger.Warn("outbox worker is disabled: repo or publisher is nil")
		return
	}

	ticker := time.NewTicker(w.settings.PollInterval)
	defer ticker.Stop()

	w.ProcessOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce выполняет один цикл: снимает backlog-метрики, вычитывает
// батч pending-сообщений и доставляет их по одному.
func (w *Worker) ProcessOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	w.observeBacklog()

	batch, err := w.repo.PullPending(w.settings.BatchSize)
	if err != nil {
		w.logger.WithError(err).Warn("failed to pull pending outbox messages")
		return
	}
	if len(batch) == 0 {
		return
	}

	for _, msg := range batch {
		if ctx.Err() != nil {
			return
		}

		if err := w.deliver(ctx, msg); err != nil {
			w.quarantine(msg, err)
			continue
		}

		if err := w.repo.MarkSent(msg.ID); err != nil {
			w.logger.WithError(err).WithField("outbox_id", msg.ID).Warn("failed to mark outbox as sent")
		}
	}

	w.observeBacklog()
}

// deliver пытается опубликовать сообщение, выдерживая экспоненциальную
// паузу между попытками.
func (w *Worker) deliver(ctx context.Context, msg domain.OutboxMessage) error {
	var lastErr error

	for attempt := 1; attempt <= w.settings.MaxAttempts; attempt++ {
		err := w.publisher.Publish(msg)
		if err == nil {
			outboxPublishAttempts.WithLabelValues("sent").Inc()
			return nil
		}
		lastErr = err
		outboxPublishAttempts.WithLabelValues("retry_error").Inc()

		if attempt == w.settings.MaxAttempts {
			break
		}
		if delay := w.backoff(attempt); delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", w.settings.MaxAttempts, lastErr)
}

// quarantine отправляет безнадёжное сообщение в DLQ и помечает его failed.
func (w *Worker) quarantine(msg domain.OutboxMessage, publishErr error) {
	w.logger.WithError(publishErr).WithFields(log.Fields{
		"outbox_id":  msg.ID,
		"event_type": msg.EventType,
	}).Error("outbox publish failed after retries")
	outboxPublishAttempts.WithLabelValues("failed").Inc()

	if w.settings.DLQ != nil {
		if err := w.settings.DLQ.Publish(deadLetterOf(msg, publishErr)); err != nil {
			w.logger.WithError(err).WithField("outbox_id", msg.ID).Warn("failed to publish to DLQ")
			outboxPublishAttempts.WithLabelValues("dlq_failed").Inc()
		}
	}

	if err := w.repo.MarkFailed(msg.ID); err != nil {
		w.logger.WithError(err).WithField("outbox_id", msg.ID).Warn("failed to mark outbox as failed")
	}
}

// deadLetter — payload сообщения в DLQ: исходное событие плюс причина.
type deadLetter struct {
	OutboxID      string          `json:"outbox_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	Error         string          `json:"error"`
	FailedAt      time.Time       `json:"failed_at"`
}

func deadLetterOf(msg domain.OutboxMessage, publishErr error) domain.OutboxMessage {
	payload, err := json.Marshal(deadLetter{
		OutboxID:      msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       json.RawMessage(msg.Payload),
		Error:         publishErr.Error(),
		FailedAt:      time.Now().UTC(),
	})
	if err != nil {
		// Payload исходного события мог быть невалидным JSON; DLQ-запись
		// всё равно должна уйти, пусть и без него.
		payload = []byte(fmt.Sprintf(`{"outbox_id":%q,"error":%q}`, msg.ID, publishErr.Error()))
	}

	return domain.OutboxMessage{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       payload,
	}
}

func (w *Worker) backoff(attempt int) time.Duration {
	base := w.settings.RetryBaseDelay
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > time.Hour {
			return time.Hour
		}
		delay *= 2
	}
	return delay
}

func (w *Worker) observeBacklog() {
	stats, err := w.repo.Stats()
	if err != nil {
		w.logger.WithError(err).Warn("failed to collect outbox backlog stats")
		return
	}

	outboxPendingRecords.Set(float64(stats.PendingCount))
	if stats.PendingCount == 0 || stats.OldestPendingAt.IsZero() {
		outboxOldestPendingAge.Set(0)
		return
	}
	if age := time.Since(stats.OldestPendingAt).Seconds(); age > 0 {
		outboxOldestPendingAge.Set(age)
	} else {
		outboxOldestPendingAge.Set(0)
	}
}
