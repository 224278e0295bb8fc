package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, batch_no, user_id, product_id, product_name, qty,
			rate_minor, amount_minor, final_amount_minor, tax_code,
			payment_method, order_status, payment_status, address_snapshot,
			version, created_at, status_updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		order.ID, order.BatchNo, order.UserID, order.ProductID, order.ProductName, order.Qty,
		order.RateMinor, order.AmountMinor, order.FinalAmountMinor, order.TaxCode,
		order.PaymentMethod, string(order.OrderStatus), string(order.PaymentStatus), order.AddressSnapshot,
		order.Version, order.CreatedAt, order.StatusUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderVersionConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	order, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder+` WHERE id = $1`, id))
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(userID string) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.queryOrders(ctx,
		selectOrder+` WHERE user_id = $1 ORDER BY batch_no DESC, created_at DESC, id ASC`, userID)
}

func (r *orderRepository) ListByUserAndBatch(userID string, batchNo int64) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.queryOrders(ctx,
		selectOrder+` WHERE user_id = $1 AND batch_no = $2 ORDER BY created_at DESC, id ASC`,
		userID, batchNo)
}

func (r *orderRepository) List(limit, offset int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return r.queryOrders(ctx,
		selectOrder+` ORDER BY batch_no DESC, created_at DESC, id ASC LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *orderRepository) Save(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET order_status = $1,
		    payment_status = $2,
		    version = version + 1,
		    status_updated_at = $3
		WHERE id = $4
		  AND version = $5
	`,
		string(order.OrderStatus),
		string(order.PaymentStatus),
		order.StatusUpdatedAt,
		order.ID,
		order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.orderExists(ctx, order.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
		return domain.ErrOrderVersionConflict
	}
	return nil
}

func (r *orderRepository) MaxBatchNo() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var max int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(batch_no), 0) FROM orders`).Scan(&max); err != nil {
		return 0, fmt.Errorf("query max batch no: %w", err)
	}
	return max, nil
}

const selectOrder = `
	SELECT id, batch_no, user_id, product_id, product_name, qty,
	       rate_minor, amount_minor, final_amount_minor, tax_code,
	       payment_method, order_status, payment_status, address_snapshot,
	       version, created_at, status_updated_at
	FROM orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order         domain.Order
		orderStatus   string
		paymentStatus string
	)
	err := row.Scan(
		&order.ID, &order.BatchNo, &order.UserID, &order.ProductID, &order.ProductName, &order.Qty,
		&order.RateMinor, &order.AmountMinor, &order.FinalAmountMinor, &order.TaxCode,
		&order.PaymentMethod, &orderStatus, &paymentStatus, &order.AddressSnapshot,
		&order.Version, &order.CreatedAt, &order.StatusUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}
	order.OrderStatus = domain.OrderStatus(orderStatus)
	order.PaymentStatus = domain.PaymentStatus(paymentStatus)
	return order, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) orderExists(ctx context.Context, orderID string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1`, orderID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check order exists: %w", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
