package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) Get(productID string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, quantity, price_minor, tax_code, created_at, updated_at
		FROM products
		WHERE id = $1
	`, productID).Scan(
		&product.ID, &product.Name, &product.Quantity, &product.PriceMinor,
		&product.TaxCode, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (r *productRepository) Save(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, quantity, price_minor, tax_code, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    quantity = EXCLUDED.quantity,
		    price_minor = EXCLUDED.price_minor,
		    tax_code = EXCLUDED.tax_code,
		    updated_at = NOW()
	`, product.ID, product.Name, product.Quantity, product.PriceMinor, product.TaxCode)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// DecrementStock списывает остаток одним условным UPDATE: проверка и
// запись атомарны на стороне базы, два конкурентных оформления не могут
// увести остаток в минус.
func (r *productRepository) DecrementStock(productID string, qty int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity - $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND quantity >= $2
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.productExists(ctx, productID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrProductNotFound
		}
		return domain.ErrOutOfStock
	}
	return nil
}

func (r *productRepository) IncrementStock(productID string, qty int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity + $2,
		    updated_at = NOW()
		WHERE id = $1
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) productExists(ctx context.Context, productID string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1`, productID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check product exists: %w", err)
}

var _ domain.ProductRepository = (*productRepository)(nil)
