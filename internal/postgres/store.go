// Package postgres implements repository.Store on PostgreSQL via pgx.
// Stock decrements and status transitions are conditional writes, so the
// database is the arbiter of every race the engine cares about.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// Store implements repository.Store backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

// NewPool creates a pgxpool.Pool with shopspring/decimal support registered
// for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// NewStore creates a PostgreSQL-backed Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// =============================================================================
// Catalog
// =============================================================================

// GetVariant reads the current price and stock for a (product, size) pair.
func (s *Store) GetVariant(ctx context.Context, productID uuid.UUID, size string) (domain.ProductVariant, error) {
	const q = `
		SELECT v.product_id, p.name, v.size, v.unit_price, v.stock
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.product_id = $1 AND v.size = $2`

	var v domain.ProductVariant
	err := s.pool.QueryRow(ctx, q, productID, size).
		Scan(&v.ProductID, &v.ProductName, &v.Size, &v.UnitPrice, &v.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProductVariant{}, repository.ErrNotFound
		}
		return domain.ProductVariant{}, fmt.Errorf("get variant: %w", err)
	}

	return v, nil
}

// =============================================================================
// Carts
// =============================================================================

// CreateCart inserts an empty cart.
func (s *Store) CreateCart(ctx context.Context) (domain.Cart, error) {
	const q = `
		INSERT INTO carts (id) VALUES ($1)
		RETURNING id, coupon_code, created_at, updated_at`

	var c domain.Cart
	err := s.pool.QueryRow(ctx, q, uuid.New()).
		Scan(&c.ID, &c.CouponCode, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("create cart: %w", err)
	}

	return c, nil
}

// GetCart retrieves a cart by ID.
func (s *Store) GetCart(ctx context.Context, id uuid.UUID) (domain.Cart, error) {
	const q = `SELECT id, coupon_code, created_at, updated_at FROM carts WHERE id = $1`

	var c domain.Cart
	err := s.pool.QueryRow(ctx, q, id).
		Scan(&c.ID, &c.CouponCode, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Cart{}, repository.ErrNotFound
		}
		return domain.Cart{}, fmt.Errorf("get cart: %w", err)
	}

	return c, nil
}

// GetCartItems lists a cart's lines in insertion order.
func (s *Store) GetCartItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	const q = `
		SELECT id, product_id, product_name, size, unit_price, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Size, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		items = append(items, item)
	}

	return items, rows.Err()
}

// UpsertCartItem adds a line or increments the existing (product, size) line.
func (s *Store) UpsertCartItem(ctx context.Context, params repository.UpsertCartItemParams) (domain.CartItem, error) {
	const q = `
		INSERT INTO cart_items (id, cart_id, product_id, product_name, size, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (cart_id, product_id, size)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, product_id, product_name, size, unit_price, quantity`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var item domain.CartItem
	err = tx.QueryRow(ctx, q,
		uuid.New(), params.CartID, params.ProductID, params.ProductName,
		params.Size, params.UnitPrice, params.Quantity).
		Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Size, &item.UnitPrice, &item.Quantity)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("upsert cart item: %w", err)
	}
	item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity))

	if err := touchCart(ctx, tx, params.CartID); err != nil {
		return domain.CartItem{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.CartItem{}, fmt.Errorf("commit: %w", err)
	}

	return item, nil
}

// UpdateCartItemQuantity replaces the quantity of one cart line.
func (s *Store) UpdateCartItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int32) error {
	const q = `UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND id = $2`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, q, cartID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// RemoveCartItem deletes one cart line.
func (s *Store) RemoveCartItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	const q = `DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, q, cartID, itemID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SetCartCoupon attaches or detaches (code == nil) a coupon code.
func (s *Store) SetCartCoupon(ctx context.Context, cartID uuid.UUID, code *string) error {
	const q = `UPDATE carts SET coupon_code = $2, updated_at = now() WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, cartID, code)
	if err != nil {
		return fmt.Errorf("set cart coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}

// =============================================================================
// Coupons
// =============================================================================

// GetCoupon retrieves a coupon by its normalized code.
func (s *Store) GetCoupon(ctx context.Context, code string) (domain.Coupon, error) {
	const q = `
		SELECT code, discount_type, discount_value, min_order_value, description, starts_at, expires_at, active
		FROM coupons
		WHERE code = $1`

	var (
		c                   domain.Coupon
		discountType        string
		startsAt, expiresAt *time.Time
	)
	err := s.pool.QueryRow(ctx, q, code).
		Scan(&c.Code, &discountType, &c.Value, &c.MinOrderValue, &c.Description, &startsAt, &expiresAt, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Coupon{}, repository.ErrNotFound
		}
		return domain.Coupon{}, fmt.Errorf("get coupon: %w", err)
	}

	// NULL bounds mean the coupon is unbounded on that side.
	if startsAt != nil {
		c.StartsAt = *startsAt
	}
	if expiresAt != nil {
		c.ExpiresAt = *expiresAt
	}

	if c.Type, err = domain.ParseDiscountType(discountType); err != nil {
		return domain.Coupon{}, fmt.Errorf("coupon %s: %w", code, err)
	}

	return c, nil
}

// =============================================================================
// Orders
// =============================================================================

// CreateOrder commits a checkout as one transaction: decrement stock for
// every line, insert the order and its frozen items, and destroy the cart.
// Either a fully priced, fully stocked order is committed, or nothing is.
func (s *Store) CreateOrder(ctx context.Context, params repository.CreateOrderParams) (domain.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// The conditional decrement is the stock arbiter: concurrent checkouts
	// racing for the last unit see exactly one matched row between them.
	const decrement = `
		UPDATE product_variants SET stock = stock - $3
		WHERE product_id = $1 AND size = $2 AND stock >= $3`

	order := params.Order
	for _, item := range order.Items {
		tag, err := tx.Exec(ctx, decrement, item.ProductID, item.Size, item.Quantity)
		if err != nil {
			return domain.Order{}, fmt.Errorf("decrement stock: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.Order{}, repository.ErrInsufficientStock
		}
	}

	shippingAddr, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal shipping address: %w", err)
	}
	billingAddr, err := json.Marshal(order.BillingAddress)
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal billing address: %w", err)
	}

	const insertOrder = `
		INSERT INTO orders (
			id, order_number, shipping_address, billing_address,
			subtotal, shipping_cost, discount, total,
			coupon_code, payment_method,
			order_status, payment_status, fulfillment_status,
			shipping_method, tracking_number, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at`

	err = tx.QueryRow(ctx, insertOrder,
		order.ID, order.OrderNumber, shippingAddr, billingAddr,
		order.Subtotal, order.Shipping, order.Discount, order.Total,
		order.CouponCode, string(order.PaymentMethod),
		string(order.OrderStatus), string(order.PaymentStatus), string(order.FulfillmentStatus),
		order.ShippingMethod, order.TrackingNumber, order.Notes).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Order{}, repository.ErrDuplicateOrderNumber
		}
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	const insertItem = `
		INSERT INTO order_items (id, order_id, product_id, product_name, size, unit_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, insertItem,
			item.ID, order.ID, item.ProductID, item.ProductName,
			item.Size, item.UnitPrice, item.Quantity, item.LineTotal); err != nil {
			return domain.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, params.DeleteCart); err != nil {
		return domain.Order{}, fmt.Errorf("delete cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("commit: %w", err)
	}

	return order, nil
}

const orderColumns = `
	id, order_number, shipping_address, billing_address,
	subtotal, shipping_cost, discount, total,
	coupon_code, payment_method,
	order_status, payment_status, fulfillment_status,
	shipping_method, tracking_number, notes,
	created_at, updated_at`

// GetOrder retrieves an order with its items by ID.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return s.scanOrderWithItems(ctx, row)
}

// GetOrderByNumber retrieves an order with its items by order number.
func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
	return s.scanOrderWithItems(ctx, row)
}

// ListOrders pages through orders, newest first, without items.
func (s *Store) ListOrders(ctx context.Context, params repository.ListOrdersParams) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// UpdateOrder applies a status/tracking patch only while the persisted
// status triple still equals the expected values. Zero rows matched on an
// existing order means another writer got there first.
func (s *Store) UpdateOrder(ctx context.Context, params repository.UpdateOrderParams) (domain.Order, error) {
	const q = `
		UPDATE orders SET
			order_status = $2,
			payment_status = $3,
			fulfillment_status = $4,
			shipping_method = COALESCE($5, shipping_method),
			tracking_number = COALESCE($6, tracking_number),
			notes = COALESCE($7, notes),
			updated_at = now()
		WHERE id = $1
			AND order_status = $8
			AND payment_status = $9
			AND fulfillment_status = $10
		RETURNING ` + orderColumns

	row := s.pool.QueryRow(ctx, q,
		params.ID,
		string(params.OrderStatus), string(params.PaymentStatus), string(params.FulfillmentStatus),
		params.ShippingMethod, params.TrackingNumber, params.Notes,
		string(params.ExpectedOrderStatus), string(params.ExpectedPaymentStatus), string(params.ExpectedFulfillmentStatus))

	order, err := s.scanOrderWithItems(ctx, row)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Distinguish a vanished order from a lost race.
			if _, getErr := s.GetOrder(ctx, params.ID); getErr == nil {
				return domain.Order{}, repository.ErrConflict
			}
			return domain.Order{}, repository.ErrNotFound
		}
		return domain.Order{}, err
	}

	return order, nil
}

// DeleteOrder hard-deletes an order only while its status permits it.
func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM orders WHERE id = $1 AND order_status IN ('pending', 'cancelled')`

	tag, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := s.GetOrder(ctx, id); err != nil {
		return repository.ErrNotFound
	}

	return repository.ErrNotDeletable
}

// OrderStats aggregates revenue-eligible orders with createdAt in [start, end).
func (s *Store) OrderStats(ctx context.Context, start, end time.Time) (repository.OrderStats, error) {
	const q = `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE order_status IN ('confirmed', 'processing', 'shipped', 'delivered')
			AND created_at >= $1 AND created_at < $2`

	var stats repository.OrderStats
	if err := s.pool.QueryRow(ctx, q, start, end).Scan(&stats.TotalRevenue, &stats.OrderCount); err != nil {
		return repository.OrderStats{}, fmt.Errorf("order stats: %w", err)
	}

	return stats, nil
}

// =============================================================================
// Scanning helpers
// =============================================================================

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		order                                         domain.Order
		shippingAddr, billingAddr                     []byte
		paymentMethod                                 string
		orderStatus, paymentStatus, fulfillmentStatus string
	)

	err := row.Scan(
		&order.ID, &order.OrderNumber, &shippingAddr, &billingAddr,
		&order.Subtotal, &order.Shipping, &order.Discount, &order.Total,
		&order.CouponCode, &paymentMethod,
		&orderStatus, &paymentStatus, &fulfillmentStatus,
		&order.ShippingMethod, &order.TrackingNumber, &order.Notes,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, repository.ErrNotFound
		}
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(shippingAddr, &order.ShippingAddress); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	if err := json.Unmarshal(billingAddr, &order.BillingAddress); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal billing address: %w", err)
	}

	// Stored enums are re-parsed so an out-of-enum value is rejected at the
	// boundary instead of leaking into the state machine.
	if order.PaymentMethod, err = domain.ParsePaymentMethod(paymentMethod); err != nil {
		return domain.Order{}, err
	}
	if order.OrderStatus, err = domain.ParseOrderStatus(orderStatus); err != nil {
		return domain.Order{}, err
	}
	if order.PaymentStatus, err = domain.ParsePaymentStatus(paymentStatus); err != nil {
		return domain.Order{}, err
	}
	if order.FulfillmentStatus, err = domain.ParseFulfillmentStatus(fulfillmentStatus); err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

func (s *Store) scanOrderWithItems(ctx context.Context, row pgx.Row) (domain.Order, error) {
	order, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, err
	}

	const q = `
		SELECT id, product_id, product_name, size, unit_price, quantity, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, q, order.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Size, &item.UnitPrice, &item.Quantity, &item.LineTotal); err != nil {
			return domain.Order{}, fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	return order, rows.Err()
}
