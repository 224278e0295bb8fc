package checkout

import (
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// Cart управляет строками корзины до оформления. Имя, ставка и налоговый
// код товара снимаются в строку в момент добавления.
type Cart struct {
	cart     domain.CartRepository
	products domain.ProductRepository
	logger   *log.Entry
}

// NewCart создаёт сервис корзины.
func NewCart(cart domain.CartRepository, products domain.ProductRepository, logger *log.Entry) *Cart {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &Cart{cart: cart, products: products, logger: logger}
}

// AddLine добавляет товар в корзину. Повторное добавление того же товара
// увеличивает количество существующей строки.
func (c *Cart) AddLine(userID, productID string, qty int32) (domain.CartLine, error) {
	if userID == "" {
		return domain.CartLine{}, domain.ErrUserRequired
	}
	if productID == "" {
		return domain.CartLine{}, domain.ErrProductRequired
	}
	if qty <= 0 {
		return domain.CartLine{}, domain.ErrQtyInvalid
	}

	product, err := c.products.Get(productID)
	if err != nil {
		return domain.CartLine{}, err
	}

	now := time.Now().UTC()

	existing, err := c.cart.GetByUserAndProduct(userID, productID)
	if err == nil {
		existing.Qty += qty
		existing.AmountMinor = int64(existing.Qty) * existing.RateMinor
		existing.UpdatedAt = now
		if err := c.cart.Upsert(existing); err != nil {
			return domain.CartLine{}, err
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrCartLineNotFound) {
		return domain.CartLine{}, err
	}

	line := domain.CartLine{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Qty:         qty,
		RateMinor:   product.PriceMinor,
		AmountMinor: int64(qty) * product.PriceMinor,
		TaxCode:     product.TaxCode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.cart.Upsert(line); err != nil {
		return domain.CartLine{}, err
	}
	return line, nil
}

// UpdateQty меняет количество в строке корзины, пересчитывая сумму.
func (c *Cart) UpdateQty(lineID string, qty int32) (domain.CartLine, error) {
	if qty <= 0 {
		return domain.CartLine{}, domain.ErrQtyInvalid
	}
	line, err := c.cart.Get(lineID)
	if err != nil {
		return domain.CartLine{}, err
	}
	line.Qty = qty
	line.AmountMinor = int64(qty) * line.RateMinor
	line.UpdatedAt = time.Now().UTC()
	if err := c.cart.Upsert(line); err != nil {
		return domain.CartLine{}, err
	}
	return line, nil
}

// Remove удаляет строку из корзины.
func (c *Cart) Remove(lineID string) error {
	return c.cart.Delete(lineID)
}

// List возвращает строки корзины пользователя.
func (c *Cart) List(userID string) ([]domain.CartLine, error) {
	return c.cart.ListByUser(userID)
}

// Count возвращает количество строк в корзине пользователя.
func (c *Cart) Count(userID string) (int, error) {
	return c.cart.CountByUser(userID)
}
