package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics содержит метрики оформления корзины.
type CheckoutMetrics struct {
	// Счётчики операций
	checkoutStarted   prometheus.Counter
	checkoutCompleted prometheus.Counter
	checkoutEmptyCart prometheus.Counter
	linesOrdered      prometheus.Counter
	linesFailed       *prometheus.CounterVec
	billsIssued       prometheus.Counter
	restoresFailed    prometheus.Counter

	// Гистограмма времени оформления
	checkoutDuration prometheus.Histogram

	// Счётчики переходов статусов
	statusTransitions *prometheus.CounterVec

	// Счётчики событий
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter
}

// NewCheckoutMetrics создаёт новый экземпляр метрик оформления.
func NewCheckoutMetrics() *CheckoutMetrics {
	return newCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		checkoutStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "wep_checkout_started_total",
			Help: "Total number of checkout operations started",
		}),
		checkoutCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "wep_checkout_completed_total",
			Help: "Total number of checkout operations completed with at least one ordered line",
		}),
		checkoutEmptyCart: registerCounter(registerer, prometheus.CounterOpts{
			Name: "wep_checkout_empty_cart_total",
			Help: "Total number of checkout attempts rejected due to empty cart",
		}),
		linesOrdered: registerCounter(registerer, prometheus.CounterOpts{
			Name: "wep_checkout_lines_ordered_total",
			Help: "Total number of cart lines converted into orders",
		}),
		linesFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "wep_checkout_lines_failed_total",
			Help: "Total number of cart lines that failed to finalize",
		}, []string{"kind"}),
		billsIssued: registerCounter(registerer, prometheus.CounterOpts{
			Name: "wep_bills_issued_total",
			Help: "Total number of bill numbers issued",
		}),
		restoresFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "wep_checkout_stock_restore_failures_total",
			Help: "Total number of failed compensating stock restores (leaked stock)",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "wep_checkout_duration_seconds",
			Help:    "Duration of checkout operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		statusTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "wep_order_status_transitions_total",
			Help: "Total number of order status transitions",
		}, []string{"from", "to"}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "wep_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "wep_outbox_events_total",
			Help: "Total number of outbox events enqueued",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCheckoutStarted увеличивает счётчик запущенных оформлений.
func (m *CheckoutMetrics) RecordCheckoutStarted() {
	m.checkoutStarted.Inc()
}

// RecordCheckoutCompleted увеличивает счётчик завершённых оформлений.
func (m *CheckoutMetrics) RecordCheckoutCompleted() {
	m.checkoutCompleted.Inc()
}

// RecordCheckoutEmptyCart увеличивает счётчик отклонённых пустых корзин.
func (m *CheckoutMetrics) RecordCheckoutEmptyCart() {
	m.checkoutEmptyCart.Inc()
}

// RecordLineOrdered увеличивает счётчик оформленных строк.
func (m *CheckoutMetrics) RecordLineOrdered() {
	m.linesOrdered.Inc()
}

// RecordLineFailed увеличивает счётчик непрошедших строк по виду отказа.
func (m *CheckoutMetrics) RecordLineFailed(kind string) {
	m.linesFailed.WithLabelValues(kind).Inc()
}

// RecordRestoreFailed увеличивает счётчик неудавшихся компенсирующих возвратов.
func (m *CheckoutMetrics) RecordRestoreFailed() {
	m.restoresFailed.Inc()
}

// RecordBillIssued увеличивает счётчик выданных номеров счетов.
func (m *CheckoutMetrics) RecordBillIssued() {
	m.billsIssued.Inc()
}

// RecordCheckoutDuration записывает время оформления.
func (m *CheckoutMetrics) RecordCheckoutDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordStatusTransition увеличивает счётчик переходов статусов.
func (m *CheckoutMetrics) RecordStatusTransition(from, to string) {
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *CheckoutMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *CheckoutMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
