package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/storage/memory"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/storage/postgres"
)

// Dependencies содержит репозитории приложения поверх выбранного хранилища.
type Dependencies struct {
	Products  domain.ProductRepository
	Cart      domain.CartRepository
	Orders    domain.OrderRepository
	Addresses domain.AddressRepository
	Sequencer domain.BillSequencer
	Outbox    domain.OutboxRepository
	Timeline  domain.TimelineRepository

	// Store заполнен только для postgres-драйвера.
	Store  *postgres.Store
	Logger *log.Entry
}

// NewDependencies собирает репозитории по конфигурации хранилища.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		return newPostgresDependencies(ctx, cfg, logger)
	case StorageDriverMemory, "":
		return newMemoryDependencies(logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

func newMemoryDependencies(logger *log.Entry) (*Dependencies, error) {
	orders := memory.NewOrderRepository()
	last, err := orders.MaxBatchNo()
	if err != nil {
		return nil, err
	}

	logger.Info("using in-memory storage")
	return &Dependencies{
		Products:  memory.NewProductRepository(),
		Cart:      memory.NewCartRepository(),
		Orders:    orders,
		Addresses: memory.NewAddressRepository(),
		// Счётчик счетов продолжается с максимального выданного номера.
		Sequencer: memory.NewBillSequencer(last),
		Outbox:    memory.NewOutboxRepository(),
		Timeline:  memory.NewTimelineRepository(),
		Logger:    logger,
	}, nil
}

func newPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres driver requires WEP_POSTGRES_DSN")
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("postgres schema is up to date")
	}

	logger.Info("using postgres storage")
	return &Dependencies{
		Products:  postgres.NewProductRepository(store),
		Cart:      postgres.NewCartRepository(store),
		Orders:    postgres.NewOrderRepository(store),
		Addresses: postgres.NewAddressRepository(store),
		Sequencer: postgres.NewBillSequencer(store),
		Outbox:    postgres.NewOutboxRepository(store),
		Timeline:  postgres.NewTimelineRepository(store),
		Store:     store,
		Logger:    logger,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d == nil || d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
