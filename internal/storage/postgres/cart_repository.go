package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) Upsert(line domain.CartLine) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_lines (
			id, user_id, product_id, product_name, qty, rate_minor, amount_minor,
			tax_code, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE
		SET qty = EXCLUDED.qty,
		    rate_minor = EXCLUDED.rate_minor,
		    amount_minor = EXCLUDED.amount_minor,
		    updated_at = EXCLUDED.updated_at
	`,
		line.ID, line.UserID, line.ProductID, line.ProductName, line.Qty,
		line.RateMinor, line.AmountMinor, line.TaxCode, line.CreatedAt, line.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

func (r *cartRepository) Get(lineID string) (domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.scanOne(r.db.QueryRowContext(ctx, selectCartLine+` WHERE id = $1`, lineID))
}

func (r *cartRepository) GetByUserAndProduct(userID, productID string) (domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.scanOne(r.db.QueryRowContext(ctx,
		selectCartLine+` WHERE user_id = $1 AND product_id = $2`, userID, productID))
}

func (r *cartRepository) ListByUser(userID string) ([]domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		selectCartLine+` WHERE user_id = $1 ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID, &line.UserID, &line.ProductID, &line.ProductName, &line.Qty,
			&line.RateMinor, &line.AmountMinor, &line.TaxCode, &line.CreatedAt, &line.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return lines, nil
}

func (r *cartRepository) CountByUser(userID string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cart_lines WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cart lines: %w", err)
	}
	return count, nil
}

func (r *cartRepository) Delete(lineID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCartLineNotFound
	}
	return nil
}

const selectCartLine = `
	SELECT id, user_id, product_id, product_name, qty, rate_minor, amount_minor,
	       tax_code, created_at, updated_at
	FROM cart_lines`

func (r *cartRepository) scanOne(row *sql.Row) (domain.CartLine, error) {
	var line domain.CartLine
	err := row.Scan(
		&line.ID, &line.UserID, &line.ProductID, &line.ProductName, &line.Qty,
		&line.RateMinor, &line.AmountMinor, &line.TaxCode, &line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CartLine{}, domain.ErrCartLineNotFound
		}
		return domain.CartLine{}, fmt.Errorf("select cart line: %w", err)
	}
	return line, nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
