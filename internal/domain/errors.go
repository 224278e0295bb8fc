package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора пользователя.
	ErrUserRequired = errors.New("user_id is required")
	// Ошибка отсутствующего идентификатора товара.
	ErrProductRequired = errors.New("product_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrQtyInvalid = errors.New("qty must be greater than zero")
	// Ошибка отрицательной цены за единицу.
	ErrRateInvalid = errors.New("rate must be non-negative")
	// Ошибка несоответствия суммы строки и rate*qty.
	ErrAmountMismatch = errors.New("line amount does not match rate*qty")
	// ErrProductNotFound возвращается, если товара нет в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrOutOfStock — запрошенное количество превышает доступный остаток.
	ErrOutOfStock = errors.New("requested qty exceeds available stock")
	// ErrCartLineNotFound возвращается, если строки корзины нет в хранилище.
	ErrCartLineNotFound = errors.New("cart line not found")
	// ErrCartEmpty — в корзине пользователя нет ни одной строки.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrMalformedAddress — снапшот адреса не разбивается ровно на 12 полей.
	ErrMalformedAddress = errors.New("address snapshot is malformed")
	// ErrSlotEmpty — запрошенный слот адреса не занят.
	ErrSlotEmpty = errors.New("address slot is empty")
	// ErrSlotInvalid — идентификатор слота вне диапазона "1".."3".
	ErrSlotInvalid = errors.New("address slot id must be 1, 2 or 3")
	// ErrSlotsFull — все три слота заняты, свободного места для адреса нет.
	ErrSlotsFull = errors.New("all address slots are occupied")
	// ErrUserNotFound возвращается, если профиль пользователя не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidStatusTransition — переход статуса заказа запрещён машиной состояний.
	ErrInvalidStatusTransition = errors.New("order status transition is not allowed")
	// ErrInvalidPaymentTransition — переход статуса оплаты запрещён.
	ErrInvalidPaymentTransition = errors.New("payment status transition is not allowed")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}
