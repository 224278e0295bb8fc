package inventory

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// ledger реализует InventoryLedger поверх каталога товаров.
// Авторитетное списание делает репозиторий (условный декремент);
// ValidateBatch — это более раннее чтение и заменой ему не является.
type ledger struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewLedger создаёт рабочий экземпляр леджера остатков.
func NewLedger(products domain.ProductRepository, logger *log.Entry) domain.InventoryLedger {
	if logger == nil {
		logger = log.New().WithField("component", "inventory")
	}
	return &ledger{products: products, logger: logger}
}

// Available возвращает текущий доступный остаток товара.
func (l *ledger) Available(productID string) (int32, error) {
	product, err := l.products.Get(productID)
	if err != nil {
		return 0, err
	}
	return product.Quantity, nil
}

// ValidateBatch возвращает строки, чьё количество превышает текущий остаток.
// Отсутствующий товар также отклоняет строку.
func (l *ledger) ValidateBatch(lines []domain.CartLine) ([]domain.FailedLine, error) {
	failed := make([]domain.FailedLine, 0)
	for _, line := range lines {
		available, err := l.Available(line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				failed = append(failed, domain.FailedLine{
					Line:   line,
					Kind:   domain.FailureProductMissing,
					Reason: err.Error(),
				})
				continue
			}
			return nil, err
		}
		if line.Qty > available {
			failed = append(failed, domain.FailedLine{
				Line:   line,
				Kind:   domain.FailureOutOfStock,
				Reason: domain.ErrOutOfStock.Error(),
			})
		}
	}
	return failed, nil
}

// Decrement атомарно списывает qty единиц товара.
func (l *ledger) Decrement(productID string, qty int32) error {
	return l.products.DecrementStock(productID, qty)
}

// Restore возвращает qty единиц на остаток.
func (l *ledger) Restore(productID string, qty int32) error {
	if err := l.products.IncrementStock(productID, qty); err != nil {
		l.logger.WithError(err).WithFields(log.Fields{
			"product_id": productID,
			"qty":        qty,
		}).Error("restore stock failed")
		return err
	}
	return nil
}

var _ domain.InventoryLedger = (*ledger)(nil)
