package domain

import "time"

// Product — карточка товара в объёме, нужном оформлению заказа.
// Полный каталог (описания, фото, категории) живёт в отдельном сервисе.
type Product struct {
	ID   string
	Name string
	// Quantity — авторитетный доступный остаток.
	Quantity int32
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// TaxCode — налоговый код (HSN).
	TaxCode   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
