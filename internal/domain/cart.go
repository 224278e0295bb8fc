package domain

import "time"

// CartLine представляет одну позицию в корзине пользователя до оформления.
// Имя товара, ставка и налоговый код — снапшот на момент добавления.
type CartLine struct {
	// ID строки нужен для однозначной идентификации и аудита.
	ID          string
	UserID      string
	ProductID   string
	ProductName string
	// Qty — количество единиц товара.
	Qty int32
	// RateMinor — цена за единицу в минимальных денежных единицах.
	RateMinor int64
	// AmountMinor — сумма строки, всегда равна RateMinor*Qty.
	AmountMinor int64
	// TaxCode — налоговый код товара (HSN) на момент добавления.
	TaxCode   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты строки корзины.
func (c *CartLine) ValidateInvariants() []error {
	var errs []error

	if c.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if c.ProductID == "" {
		errs = append(errs, ErrProductRequired)
	}
	if c.Qty <= 0 {
		errs = append(errs, ErrQtyInvalid)
	}
	if c.RateMinor < 0 {
		errs = append(errs, ErrRateInvalid)
	}
	if c.AmountMinor != int64(c.Qty)*c.RateMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// FailureKind классифицирует причину, по которой строка не была оформлена.
type FailureKind string

const (
	// FailureOutOfStock — строка отклонена на предварительной проверке остатков.
	FailureOutOfStock FailureKind = "out_of_stock"
	// FailureOutOfStockAtCommit — остаток успел уменьшиться между проверкой и коммитом.
	FailureOutOfStockAtCommit FailureKind = "out_of_stock_at_commit"
	// FailureProductMissing — товар исчез из каталога между проверкой и коммитом.
	FailureProductMissing FailureKind = "product_missing"
	// FailureStorage — ошибка хранилища; строка не обработана.
	FailureStorage FailureKind = "storage_error"
)

// FailedLine описывает строку корзины, не прошедшую оформление.
type FailedLine struct {
	Line CartLine
	Kind FailureKind
	// Reason — человекочитаемая причина (текст исходной ошибки).
	Reason string
}
