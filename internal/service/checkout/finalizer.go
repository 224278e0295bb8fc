package checkout

import (
	"encoding/json"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/messaging/kafka"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/metrics"
)

// Result — исход одного оформления корзины.
type Result struct {
	// BatchNo — общий номер счёта оформления; 0, если партия не стартовала.
	BatchNo int64
	// Ordered — успешно оформленные строки.
	Ordered []domain.Order
	// Failed — строки, не прошедшие оформление, с причиной.
	Failed []domain.FailedLine
}

// Finalizer превращает корзину пользователя в строки заказов.
type Finalizer struct {
	cart      domain.CartRepository
	orders    domain.OrderRepository
	addresses domain.AddressRepository
	ledger    domain.InventoryLedger
	sequencer domain.BillSequencer
	outbox    domain.OutboxRepository
	timeline  domain.TimelineRepository
	logger    *log.Entry
	metrics   *metrics.CheckoutMetrics
}

// NewFinalizer создаёт рабочий экземпляр финализатора.
func NewFinalizer(
	cart domain.CartRepository,
	orders domain.OrderRepository,
	addresses domain.AddressRepository,
	ledger domain.InventoryLedger,
	sequencer domain.BillSequencer,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Finalizer {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Finalizer{
		cart:      cart,
		orders:    orders,
		addresses: addresses,
		ledger:    ledger,
		sequencer: sequencer,
		outbox:    outbox,
		timeline:  timeline,
		logger:    logger,
		metrics:   metrics.NewCheckoutMetrics(),
	}
}

// NewFinalizerWithoutMetrics создаёт финализатор без метрик (для тестов).
func NewFinalizerWithoutMetrics(
	cart domain.CartRepository,
	orders domain.OrderRepository,
	addresses domain.AddressRepository,
	ledger domain.InventoryLedger,
	sequencer domain.BillSequencer,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Finalizer {
	f := NewFinalizer(cart, orders, addresses, ledger, sequencer, outbox, timeline, logger)
	f.metrics = nil
	return f
}

// Finalize оформляет корзину пользователя.
//
// Предварительная проверка остатков отклоняет партию целиком без побочных
// эффектов. После выдачи номера счёта строки коммитятся по одной; уже
// закоммиченные строки не откатываются при отказе последующих.
func (f *Finalizer) Finalize(userID string, finalAmountMinor int64, addressSlot, paymentMethod string) (Result, error) {
	start := time.Now()
	if f.metrics != nil {
		f.metrics.RecordCheckoutStarted()
		defer func() {
			f.metrics.RecordCheckoutDuration(time.Since(start))
		}()
	}

	if userID == "" {
		return Result{}, domain.ErrUserRequired
	}

	lines, err := f.cart.ListByUser(userID)
	if err != nil {
		return Result{}, err
	}
	if len(lines) == 0 {
		if f.metrics != nil {
			f.metrics.RecordCheckoutEmptyCart()
		}
		return Result{}, domain.ErrCartEmpty
	}

	// Ранняя проверка остатков: любая строка сверх остатка отклоняет
	// партию целиком, номер счёта не выдаётся, списаний нет.
	overLines, err := f.ledger.ValidateBatch(lines)
	if err != nil {
		return Result{}, err
	}
	if len(overLines) > 0 {
		f.reportFailedLines(userID, 0, overLines)
		return Result{Failed: overLines}, nil
	}

	batchNo, err := f.sequencer.Next()
	if err != nil {
		return Result{}, err
	}
	if f.metrics != nil {
		f.metrics.RecordBillIssued()
	}

	snapshot := f.resolveAddressSnapshot(userID, addressSlot)

	// Повторная выборка терпима к конкурентным правкам корзины:
	// оформляется то, что лежит в корзине на момент коммита.
	lines, err = f.cart.ListByUser(userID)
	if err != nil {
		return Result{BatchNo: batchNo}, err
	}

	result := Result{BatchNo: batchNo}
	now := time.Now().UTC()
	for i, line := range lines {
		order, failed := f.commitLine(line, batchNo, finalAmountMinor, paymentMethod, snapshot, now)
		if failed != nil {
			result.Failed = append(result.Failed, *failed)
			if f.metrics != nil {
				f.metrics.RecordLineFailed(string(failed.Kind))
			}
			// Ошибка хранилища прерывает партию: оставшиеся строки не
			// обрабатываются и помечаются неуспешными с общей причиной.
			// Уже закоммиченные строки остаются как есть.
			if failed.Kind == domain.FailureStorage {
				result.Failed = append(result.Failed, f.abortRemaining(lines[i+1:])...)
				break
			}
			continue
		}
		result.Ordered = append(result.Ordered, order)
		if f.metrics != nil {
			f.metrics.RecordLineOrdered()
		}
	}

	if len(result.Ordered) > 0 {
		if f.metrics != nil {
			f.metrics.RecordCheckoutCompleted()
		}
		f.emitCheckoutCompleted(userID, batchNo, &result)
	}
	if len(result.Failed) > 0 {
		f.reportFailedLines(userID, batchNo, result.Failed)
	}

	f.logger.WithFields(log.Fields{
		"user_id":  userID,
		"batch_no": batchNo,
		"ordered":  len(result.Ordered),
		"failed":   len(result.Failed),
	}).Info("checkout finalized")

	return result, nil
}

// commitLine оформляет одну строку корзины. Списание остатка выполняется
// ДО вставки строки заказа; неудавшаяся вставка компенсируется возвратом
// остатка, так что строка заказа без взятого остатка невозможна.
func (f *Finalizer) commitLine(
	line domain.CartLine,
	batchNo, finalAmountMinor int64,
	paymentMethod, snapshot string,
	now time.Time,
) (domain.Order, *domain.FailedLine) {
	if err := f.ledger.Decrement(line.ProductID, line.Qty); err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			return domain.Order{}, &domain.FailedLine{Line: line, Kind: domain.FailureProductMissing, Reason: err.Error()}
		case errors.Is(err, domain.ErrOutOfStock):
			// Остаток успел уменьшиться между проверкой и коммитом.
			return domain.Order{}, &domain.FailedLine{Line: line, Kind: domain.FailureOutOfStockAtCommit, Reason: err.Error()}
		default:
			return domain.Order{}, &domain.FailedLine{Line: line, Kind: domain.FailureStorage, Reason: err.Error()}
		}
	}

	order := domain.Order{
		ID:               line.ID,
		BatchNo:          batchNo,
		UserID:           line.UserID,
		ProductID:        line.ProductID,
		ProductName:      line.ProductName,
		Qty:              line.Qty,
		RateMinor:        line.RateMinor,
		AmountMinor:      int64(line.Qty) * line.RateMinor,
		FinalAmountMinor: finalAmountMinor,
		TaxCode:          line.TaxCode,
		PaymentMethod:    paymentMethod,
		OrderStatus:      domain.OrderStatusOrdered,
		PaymentStatus:    domain.InitialPaymentStatus(paymentMethod),
		AddressSnapshot:  snapshot,
		CreatedAt:        now,
		StatusUpdatedAt:  now,
	}

	if err := f.orders.Create(order); err != nil {
		f.logger.WithError(err).WithField("line_id", line.ID).Error("persist order failed")
		// Компенсация: возвращаем взятый остаток. При двойном отказе
		// остаток остаётся списанным без строки заказа; такие случаи
		// считаются метрикой и разбираются руками.
		if restoreErr := f.ledger.Restore(line.ProductID, line.Qty); restoreErr != nil {
			f.logger.WithError(restoreErr).WithFields(log.Fields{
				"line_id":    line.ID,
				"product_id": line.ProductID,
				"qty":        line.Qty,
			}).Error("compensating stock restore failed")
			if f.metrics != nil {
				f.metrics.RecordRestoreFailed()
			}
		}
		return domain.Order{}, &domain.FailedLine{Line: line, Kind: domain.FailureStorage, Reason: err.Error()}
	}

	if err := f.cart.Delete(line.ID); err != nil {
		// Строка заказа уже есть; повисшую строку корзины только логируем.
		f.logger.WithError(err).WithField("line_id", line.ID).Warn("delete cart line failed")
	}

	f.appendTimeline(domain.TimelineEvent{
		OrderID:  order.ID,
		Type:     "OrderCreated",
		Occurred: now,
	})

	return order, nil
}

// abortedLineReason — общая причина для строк, не обработанных из-за
// ошибки хранилища на предыдущей строке.
const abortedLineReason = "batch aborted by storage failure"

// abortRemaining помечает необработанные строки неуспешными.
func (f *Finalizer) abortRemaining(lines []domain.CartLine) []domain.FailedLine {
	if len(lines) == 0 {
		return nil
	}
	failed := make([]domain.FailedLine, 0, len(lines))
	for _, line := range lines {
		failed = append(failed, domain.FailedLine{
			Line:   line,
			Kind:   domain.FailureStorage,
			Reason: abortedLineReason,
		})
		if f.metrics != nil {
			f.metrics.RecordLineFailed(string(domain.FailureStorage))
		}
	}
	return failed
}

func (f *Finalizer) resolveAddressSnapshot(userID, slotID string) string {
	// Пустой или незанятый слот даёт полностью пустой 12-польный снапшот.
	empty := domain.Address{}.Encode()
	if !domain.ValidSlotID(slotID) {
		return empty
	}
	slots, err := f.addresses.Slots(userID)
	if err != nil {
		f.logger.WithError(err).WithField("user_id", userID).Warn("resolve address slot failed")
		return empty
	}
	for _, slot := range slots {
		if slot.ID == slotID && slot.Occupied {
			return slot.Address.Encode()
		}
	}
	return empty
}

func (f *Finalizer) emitCheckoutCompleted(userID string, batchNo int64, result *Result) {
	var total int64
	for _, order := range result.Ordered {
		total += order.AmountMinor
	}
	f.enqueueEvent(string(kafka.EventTypeCheckoutCompleted), "checkout", userID, map[string]interface{}{
		"user_id":            userID,
		"batch_no":           batchNo,
		"ordered_lines":      len(result.Ordered),
		"failed_lines":       len(result.Failed),
		"total_amount_minor": total,
	})
}

func (f *Finalizer) reportFailedLines(userID string, batchNo int64, failed []domain.FailedLine) {
	for _, fl := range failed {
		f.logger.WithFields(log.Fields{
			"user_id":    userID,
			"batch_no":   batchNo,
			"line_id":    fl.Line.ID,
			"product_id": fl.Line.ProductID,
			"kind":       fl.Kind,
		}).Warn("cart line failed to finalize")
		f.enqueueEvent(string(kafka.EventTypeCheckoutLineFailed), "cart_line", fl.Line.ID, map[string]interface{}{
			"user_id":    userID,
			"batch_no":   batchNo,
			"product_id": fl.Line.ProductID,
			"qty":        fl.Line.Qty,
			"kind":       string(fl.Kind),
			"reason":     fl.Reason,
		})
	}
}

func (f *Finalizer) enqueueEvent(eventType, aggregateType, aggregateID string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		f.logger.WithError(err).WithField("event", eventType).Error("marshal event failed")
		return
	}
	msg := domain.OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       data,
	}
	if _, err := f.outbox.Enqueue(msg); err != nil {
		f.logger.WithError(err).WithField("event", eventType).Error("enqueue event failed")
	} else if f.metrics != nil {
		f.metrics.RecordOutboxEvent()
	}
}

func (f *Finalizer) appendTimeline(event domain.TimelineEvent) {
	if f.timeline == nil {
		return
	}
	if err := f.timeline.Append(event); err != nil {
		f.logger.WithError(err).WithFields(log.Fields{
			"order_id": event.OrderID,
			"event":    event.Type,
		}).Warn("append timeline event failed")
	} else if f.metrics != nil {
		f.metrics.RecordTimelineEvent()
	}
}
