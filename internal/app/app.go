package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/chandrasekhar-cherukuru/wep-checkout/internal/health"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/addressbook"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/billing"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/checkout"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/inventory"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/outbox"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/rest"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run собирает сервис оформления и блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := deps.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close storage")
		}
	}()

	ledger := inventory.NewLedger(deps.Products, logger.WithField("component", "inventory"))
	finalizer := checkout.NewFinalizer(
		deps.Cart,
		deps.Orders,
		deps.Addresses,
		ledger,
		deps.Sequencer,
		deps.Outbox,
		deps.Timeline,
		logger.WithField("component", "checkout"),
	)
	cartSvc := checkout.NewCart(deps.Cart, deps.Products, logger.WithField("component", "cart"))
	billingSvc := billing.NewService(deps.Orders, logger.WithField("component", "billing"))
	addressSvc := addressbook.NewService(deps.Addresses, logger.WithField("component", "addressbook"))

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.Store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewStorageChecker("postgres", deps.Store, 2*time.Second))
	}
	healthHandler.RegisterChecker("outbox", healthcheck.NewOutboxChecker("outbox", deps.Outbox, time.Minute))

	messaging := setupMessaging(cfg, logger)
	defer messaging.Close(logger)

	var workerWG sync.WaitGroup
	if messaging != nil {
		worker := outbox.NewWorker(deps.Outbox, messaging.publisher, outbox.Settings{
			Logger:         logger.WithField("component", "outbox-worker"),
			DLQ:            messaging.dlq,
			PollInterval:   cfg.OutboxPollInterval,
			BatchSize:      cfg.OutboxBatchSize,
			MaxAttempts:    cfg.OutboxMaxAttempts,
			RetryBaseDelay: cfg.OutboxRetryDelay,
		})
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			worker.Run(ctx)
		}()
	}

	server := rest.NewServer(
		cartSvc,
		finalizer,
		billingSvc,
		addressSvc,
		deps.Products,
		healthHandler,
		logger.WithField("component", "rest"),
	)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: server.Router()}
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		workerWG.Wait()
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		workerWG.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
