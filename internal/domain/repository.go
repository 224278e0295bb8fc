package domain

// ProductRepository — доступ к каталогу в объёме оформления заказа.
type ProductRepository interface {
	Get(productID string) (Product, error)
	Save(product Product) error
	// DecrementStock атомарно уменьшает остаток на qty и возвращает
	// ErrOutOfStock, если доступного остатка недостаточно в момент вызова.
	// При ошибке остаток не меняется.
	DecrementStock(productID string, qty int32) error
	// IncrementStock возвращает qty единиц на остаток (компенсация).
	IncrementStock(productID string, qty int32) error
}

// CartRepository хранит строки корзин пользователей.
type CartRepository interface {
	Upsert(line CartLine) error
	Get(lineID string) (CartLine, error)
	GetByUserAndProduct(userID, productID string) (CartLine, error)
	ListByUser(userID string) ([]CartLine, error)
	CountByUser(userID string) (int, error)
	Delete(lineID string) error
}

// OrderRepository хранит строки заказов.
type OrderRepository interface {
	Create(order Order) error
	Get(id string) (Order, error)
	ListByUser(userID string) ([]Order, error)
	ListByUserAndBatch(userID string, batchNo int64) ([]Order, error)
	List(limit, offset int) ([]Order, error)
	// Save обновляет строку с оптимистической блокировкой по Version.
	Save(order Order) error
	// MaxBatchNo возвращает максимальный выданный номер счёта (0, если заказов нет).
	MaxBatchNo() (int64, error)
}

// AddressRepository хранит три фиксированных слота адресов пользователя.
type AddressRepository interface {
	// Slots возвращает все три слота в порядке идентификаторов "1","2","3",
	// включая незанятые.
	Slots(userID string) ([]AddressSlot, error)
	SaveSlot(userID string, slot AddressSlot) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineRepository хранит события жизненного цикла строки заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}
