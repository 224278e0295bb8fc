package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/messaging/kafka"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	// StorageDriverMemory — in-memory хранилище для разработки и тестов.
	StorageDriverMemory StorageDriver = "memory"
	// StorageDriverPostgres — PostgreSQL.
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers  string
	KafkaClientID string
	OutboxTopic   string
	DLQTopic      string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
}

// DefaultConfig возвращает базовые настройки сервиса.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		KafkaClientID:       "wep-checkout",
		OutboxTopic:         kafka.TopicOrderEvents,
		DLQTopic:            kafka.TopicDeadLetterQueue,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
	}
}

// LoadConfig собирает конфигурацию из переменных окружения поверх дефолтов.
func LoadConfig() Config {
	cfg := DefaultConfig()

	cfg.HTTPAddr = getEnv("WEP_HTTP_ADDR", cfg.HTTPAddr)
	cfg.MetricsAddr = getEnv("WEP_METRICS_ADDR", cfg.MetricsAddr)

	if v := strings.ToLower(getEnv("WEP_STORAGE_DRIVER", string(cfg.StorageDriver))); v == string(StorageDriverPostgres) {
		cfg.StorageDriver = StorageDriverPostgres
	}
	cfg.PostgresDSN = getEnv("WEP_POSTGRES_DSN", cfg.PostgresDSN)
	cfg.PostgresAutoMigrate = getEnvBool("WEP_POSTGRES_AUTO_MIGRATE", cfg.PostgresAutoMigrate)

	cfg.KafkaBrokers = getEnv("WEP_KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaClientID = getEnv("WEP_KAFKA_CLIENT_ID", cfg.KafkaClientID)
	cfg.OutboxTopic = getEnv("WEP_OUTBOX_TOPIC", cfg.OutboxTopic)
	cfg.DLQTopic = getEnv("WEP_DLQ_TOPIC", cfg.DLQTopic)

	cfg.OutboxPollInterval = getEnvDuration("WEP_OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = getEnvInt("WEP_OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxAttempts = getEnvInt("WEP_OUTBOX_MAX_ATTEMPTS", cfg.OutboxMaxAttempts)
	cfg.OutboxRetryDelay = getEnvDuration("WEP_OUTBOX_RETRY_DELAY", cfg.OutboxRetryDelay)

	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
