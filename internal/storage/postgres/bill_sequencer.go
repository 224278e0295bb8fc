package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

type billSequencer struct {
	db *sql.DB
}

// NewBillSequencer создаёт PostgreSQL-реализацию BillSequencer.
// Номера выдаются одним UPDATE ... RETURNING по единственной строке
// bill_sequence: база сериализует конкурентные инкременты, поэтому
// чтение MAX(batch_no)+1 здесь не используется.
func NewBillSequencer(store *Store) domain.BillSequencer {
	return &billSequencer{db: store.DB()}
}

func (s *billSequencer) Next() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var next int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE bill_sequence
		SET last_no = last_no + 1
		WHERE id = 1
		RETURNING last_no
	`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next bill number: %w", err)
	}
	return next, nil
}

var _ domain.BillSequencer = (*billSequencer)(nil)
