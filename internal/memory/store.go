// Package memory implements repository.Store with in-process maps. It backs
// the service tests and the demo mode, and preserves the same conditional
// write semantics as the postgres implementation: one mutex-guarded critical
// section plays the role of one transaction.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/repository"
)

type variantKey struct {
	productID uuid.UUID
	size      string
}

// Store is an in-memory repository.Store.
type Store struct {
	mu       sync.Mutex
	variants map[variantKey]*domain.ProductVariant
	carts    map[uuid.UUID]*domain.Cart
	items    map[uuid.UUID][]domain.CartItem
	coupons  map[string]domain.Coupon
	orders   map[uuid.UUID]*domain.Order
	numbers  map[string]uuid.UUID
}

var _ repository.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		variants: make(map[variantKey]*domain.ProductVariant),
		carts:    make(map[uuid.UUID]*domain.Cart),
		items:    make(map[uuid.UUID][]domain.CartItem),
		coupons:  make(map[string]domain.Coupon),
		orders:   make(map[uuid.UUID]*domain.Order),
		numbers:  make(map[string]uuid.UUID),
	}
}

// SeedVariant registers a catalog variant with the given stock.
func (s *Store) SeedVariant(v domain.ProductVariant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := v
	s.variants[variantKey{v.ProductID, v.Size}] = &copied
}

// SeedCoupon registers a coupon under its normalized code.
func (s *Store) SeedCoupon(c domain.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Code = domain.NormalizeCouponCode(c.Code)
	s.coupons[c.Code] = c
}

// Stock reports the remaining stock for a variant, for test assertions.
func (s *Store) Stock(productID uuid.UUID, size string) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.variants[variantKey{productID, size}]; ok {
		return v.Stock
	}
	return 0
}

// GetVariant reads the current price and stock for a (product, size) pair.
func (s *Store) GetVariant(ctx context.Context, productID uuid.UUID, size string) (domain.ProductVariant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[variantKey{productID, size}]
	if !ok {
		return domain.ProductVariant{}, repository.ErrNotFound
	}
	return *v, nil
}

// CreateCart inserts an empty cart.
func (s *Store) CreateCart(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cart := domain.Cart{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	s.carts[cart.ID] = &cart
	return cart, nil
}

// GetCart retrieves a cart by ID.
func (s *Store) GetCart(ctx context.Context, id uuid.UUID) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[id]
	if !ok {
		return domain.Cart{}, repository.ErrNotFound
	}
	return *cart, nil
}

// GetCartItems lists a cart's lines in insertion order.
func (s *Store) GetCartItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.CartItem, len(s.items[cartID]))
	copy(items, s.items[cartID])
	return items, nil
}

// UpsertCartItem adds a line or increments the existing (product, size) line.
func (s *Store) UpsertCartItem(ctx context.Context, params repository.UpsertCartItemParams) (domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[params.CartID]
	if !ok {
		return domain.CartItem{}, repository.ErrNotFound
	}

	items := s.items[params.CartID]
	for i := range items {
		if items[i].ProductID == params.ProductID && items[i].Size == params.Size {
			items[i].Quantity += params.Quantity
			items[i].LineTotal = items[i].UnitPrice.Mul(decimal.NewFromInt32(items[i].Quantity))
			cart.UpdatedAt = time.Now()
			return items[i], nil
		}
	}

	item := domain.CartItem{
		ID:          uuid.New(),
		ProductID:   params.ProductID,
		ProductName: params.ProductName,
		Size:        params.Size,
		UnitPrice:   params.UnitPrice,
		Quantity:    params.Quantity,
		LineTotal:   params.UnitPrice.Mul(decimal.NewFromInt32(params.Quantity)),
	}
	s.items[params.CartID] = append(items, item)
	cart.UpdatedAt = time.Now()
	return item, nil
}

// UpdateCartItemQuantity replaces the quantity of one cart line.
func (s *Store) UpdateCartItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[cartID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
			items[i].LineTotal = items[i].UnitPrice.Mul(decimal.NewFromInt32(quantity))
			if cart, ok := s.carts[cartID]; ok {
				cart.UpdatedAt = time.Now()
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

// RemoveCartItem deletes one cart line.
func (s *Store) RemoveCartItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[cartID]
	for i := range items {
		if items[i].ID == itemID {
			s.items[cartID] = append(items[:i], items[i+1:]...)
			if cart, ok := s.carts[cartID]; ok {
				cart.UpdatedAt = time.Now()
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

// SetCartCoupon attaches or detaches (code == nil) a coupon code.
func (s *Store) SetCartCoupon(ctx context.Context, cartID uuid.UUID, code *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[cartID]
	if !ok {
		return repository.ErrNotFound
	}
	cart.CouponCode = code
	cart.UpdatedAt = time.Now()
	return nil
}

// GetCoupon retrieves a coupon by its normalized code.
func (s *Store) GetCoupon(ctx context.Context, code string) (domain.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coupon, ok := s.coupons[code]
	if !ok {
		return domain.Coupon{}, repository.ErrNotFound
	}
	return coupon, nil
}

// CreateOrder commits a checkout atomically under the store mutex: decrement
// stock for every line, record the order, destroy the cart. A line without
// stock rolls the already-applied decrements back.
func (s *Store) CreateOrder(ctx context.Context, params repository.CreateOrderParams) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := params.Order

	if _, taken := s.numbers[order.OrderNumber]; taken {
		return domain.Order{}, repository.ErrDuplicateOrderNumber
	}

	decremented := make([]*domain.ProductVariant, 0, len(order.Items))
	for _, item := range order.Items {
		v, ok := s.variants[variantKey{item.ProductID, item.Size}]
		if !ok || v.Stock < item.Quantity {
			for _, prev := range decremented {
				prev.Stock += orderQuantity(order.Items, prev)
			}
			return domain.Order{}, repository.ErrInsufficientStock
		}
		v.Stock -= item.Quantity
		decremented = append(decremented, v)
	}

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	stored := cloneOrder(order)
	s.orders[order.ID] = &stored
	s.numbers[order.OrderNumber] = order.ID

	delete(s.carts, params.DeleteCart)
	delete(s.items, params.DeleteCart)

	return order, nil
}

// GetOrder retrieves an order by ID.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.Order{}, repository.ErrNotFound
	}
	return cloneOrder(*order), nil
}

// GetOrderByNumber retrieves an order by order number.
func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.numbers[orderNumber]
	if !ok {
		return domain.Order{}, repository.ErrNotFound
	}
	return cloneOrder(*s.orders[id]), nil
}

// ListOrders pages through orders, newest first.
func (s *Store) ListOrders(ctx context.Context, params repository.ListOrdersParams) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		all = append(all, cloneOrder(*order))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := int(params.Offset)
	if start >= len(all) {
		return nil, nil
	}
	end := start + int(params.Limit)
	if params.Limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// UpdateOrder applies a patch only while the stored status triple still
// equals the expected values.
func (s *Store) UpdateOrder(ctx context.Context, params repository.UpdateOrderParams) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[params.ID]
	if !ok {
		return domain.Order{}, repository.ErrNotFound
	}

	if order.OrderStatus != params.ExpectedOrderStatus ||
		order.PaymentStatus != params.ExpectedPaymentStatus ||
		order.FulfillmentStatus != params.ExpectedFulfillmentStatus {
		return domain.Order{}, repository.ErrConflict
	}

	order.OrderStatus = params.OrderStatus
	order.PaymentStatus = params.PaymentStatus
	order.FulfillmentStatus = params.FulfillmentStatus
	if params.ShippingMethod != nil {
		order.ShippingMethod = *params.ShippingMethod
	}
	if params.TrackingNumber != nil {
		order.TrackingNumber = *params.TrackingNumber
	}
	if params.Notes != nil {
		order.Notes = *params.Notes
	}
	order.UpdatedAt = time.Now()

	return cloneOrder(*order), nil
}

// DeleteOrder hard-deletes an order only while its status permits it.
func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !order.OrderStatus.Deletable() {
		return repository.ErrNotDeletable
	}

	delete(s.numbers, order.OrderNumber)
	delete(s.orders, id)
	return nil
}

// OrderStats aggregates revenue-eligible orders with createdAt in [start, end).
func (s *Store) OrderStats(ctx context.Context, start, end time.Time) (repository.OrderStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := repository.OrderStats{TotalRevenue: decimal.Zero}
	for _, order := range s.orders {
		if !order.OrderStatus.RevenueEligible() {
			continue
		}
		if order.CreatedAt.Before(start) || !order.CreatedAt.Before(end) {
			continue
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(order.Total)
		stats.OrderCount++
	}
	return stats, nil
}

func cloneOrder(order domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	if order.CouponCode != nil {
		code := *order.CouponCode
		order.CouponCode = &code
	}
	return order
}

func orderQuantity(items []domain.OrderItem, v *domain.ProductVariant) int32 {
	for _, item := range items {
		if item.ProductID == v.ProductID && item.Size == v.Size {
			return item.Quantity
		}
	}
	return 0
}
