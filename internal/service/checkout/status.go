package checkout

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/messaging/kafka"
)

const (
	maxStatusRetries = 3
	statusRetryBase  = 10 * time.Millisecond
)

// UpdateOrderStatus переводит строку заказа в новый статус с проверкой
// машины состояний. Конфликты версий ретраятся с exponential backoff.
func (f *Finalizer) UpdateOrderStatus(orderID string, next domain.OrderStatus) (domain.Order, error) {
	var from domain.OrderStatus
	saved, err := f.updateWithRetry(orderID, func(order *domain.Order) error {
		if !order.OrderStatus.CanTransitionTo(next) {
			return domain.ErrInvalidStatusTransition
		}
		from = order.OrderStatus
		order.OrderStatus = next
		order.StatusUpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	f.afterStatusSave(&saved, string(from), string(next), string(kafka.EventTypeOrderStatusChanged))
	return saved, nil
}

// UpdatePaymentStatus переводит статус оплаты: разрешён только
// pending → paid|failed.
func (f *Finalizer) UpdatePaymentStatus(orderID string, next domain.PaymentStatus) (domain.Order, error) {
	var from domain.PaymentStatus
	saved, err := f.updateWithRetry(orderID, func(order *domain.Order) error {
		if !order.PaymentStatus.CanTransitionTo(next) {
			return domain.ErrInvalidPaymentTransition
		}
		from = order.PaymentStatus
		order.PaymentStatus = next
		order.StatusUpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	f.afterStatusSave(&saved, string(from), string(next), string(kafka.EventTypePaymentStatusChanged))
	return saved, nil
}

// UpdateBatchStatus меняет статус всех строк одного оформления пользователя.
// Строки, для которых переход запрещён, пропускаются без ошибки: партия
// могла частично уехать вперёд по жизненному циклу.
func (f *Finalizer) UpdateBatchStatus(userID string, batchNo int64, next domain.OrderStatus) ([]domain.Order, error) {
	orders, err := f.orders.ListByUserAndBatch(userID, batchNo)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrOrderNotFound
	}

	updated := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if !order.OrderStatus.CanTransitionTo(next) {
			f.logger.WithFields(log.Fields{
				"order_id": order.ID,
				"from":     order.OrderStatus,
				"to":       next,
			}).Debug("batch status transition skipped")
			continue
		}
		saved, err := f.UpdateOrderStatus(order.ID, next)
		if err != nil {
			return updated, err
		}
		updated = append(updated, saved)
	}
	return updated, nil
}

// updateWithRetry применяет mutate к свежей версии заказа и сохраняет её,
// перечитывая заказ при конфликте версий.
func (f *Finalizer) updateWithRetry(orderID string, mutate func(*domain.Order) error) (domain.Order, error) {
	order, err := f.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	for attempt := 0; attempt < maxStatusRetries; attempt++ {
		if err := mutate(&order); err != nil {
			return domain.Order{}, err
		}
		prevVersion := order.Version

		if err := f.orders.Save(order); err != nil {
			if domain.IsVersionConflict(err) && attempt < maxStatusRetries-1 {
				f.logger.WithFields(log.Fields{
					"order_id": order.ID,
					"attempt":  attempt + 1,
					"version":  order.Version,
				}).Warn("version conflict detected, retrying")

				fresh, loadErr := f.orders.Get(order.ID)
				if loadErr != nil {
					return domain.Order{}, loadErr
				}
				order = fresh

				time.Sleep(statusRetryBase * time.Duration(1<<uint(attempt)))
				continue
			}
			return domain.Order{}, err
		}

		order.Version = prevVersion + 1
		return order, nil
	}

	return domain.Order{}, domain.ErrOrderVersionConflict
}

func (f *Finalizer) afterStatusSave(order *domain.Order, from, to, eventType string) {
	if f.metrics != nil {
		f.metrics.RecordStatusTransition(from, to)
	}
	f.enqueueEvent(eventType, "order", order.ID, map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"from":     from,
		"to":       to,
		"ts":       order.StatusUpdatedAt.Format(time.RFC3339Nano),
	})
	f.appendTimeline(domain.TimelineEvent{
		OrderID:  order.ID,
		Type:     eventType,
		Reason:   from + " -> " + to,
		Occurred: order.StatusUpdatedAt,
	})
}

// Timeline возвращает события жизненного цикла строки заказа.
func (f *Finalizer) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	if _, err := f.orders.Get(orderID); err != nil {
		return nil, err
	}
	if f.timeline == nil {
		return []domain.TimelineEvent{}, nil
	}
	return f.timeline.List(orderID)
}

// Order возвращает строку заказа по идентификатору.
func (f *Finalizer) Order(orderID string) (domain.Order, error) {
	return f.orders.Get(orderID)
}
