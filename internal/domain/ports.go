package domain

// InventoryLedger — авторитетный счётчик доступных остатков.
type InventoryLedger interface {
	// Available возвращает текущий доступный остаток товара.
	Available(productID string) (int32, error)
	// ValidateBatch возвращает строки, чьё количество превышает текущий
	// остаток. Пустой результат означает, что партия может оформляться.
	ValidateBatch(lines []CartLine) ([]FailedLine, error)
	// Decrement атомарно списывает qty; повторная проверка в момент
	// коммита обязательна, так как ValidateBatch — более раннее чтение.
	Decrement(productID string, qty int32) error
	// Restore возвращает qty на остаток (компенсация несостоявшегося коммита).
	Restore(productID string, qty int32) error
}

// BillSequencer выдаёт новый монотонно растущий номер счёта.
// Два конкурентных оформления никогда не получают одно значение.
type BillSequencer interface {
	Next() (int64, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}
