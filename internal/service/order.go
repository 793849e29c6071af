package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/events"
	"github.com/rowanholt/vesta/internal/repository"
)

// OrderService governs the post-creation lifecycle of orders: the three
// independent status axes, tracking/notes updates, and deletion eligibility.
// Monetary fields, items, and addresses are frozen at creation and never
// touched here.
type OrderService struct {
	store  repository.Store
	events events.Publisher
	logger zerolog.Logger
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(store repository.Store, publisher events.Publisher, logger zerolog.Logger) *OrderService {
	return &OrderService{store: store, events: publisher, logger: logger}
}

// GetOrder retrieves a single order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to load order")
	}
	return &order, nil
}

// GetOrderByNumber retrieves a single order by its order number.
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := s.store.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get_by_number", "failed to load order")
	}
	return &order, nil
}

// ListOrders pages through orders, newest first. The limit is clamped to
// [1,100]; an absent or non-positive limit falls back to 50.
func (s *OrderService) ListOrders(ctx context.Context, limit, offset int32) ([]domain.Order, error) {
	if limit < 1 {
		limit = 50
	} else if limit > 100 {
		limit = 100
	}

	orders, err := s.store.ListOrders(ctx, repository.ListOrdersParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	return orders, nil
}

// UpdateOrder applies an admin patch to an order. Every status field present
// in the patch is validated against its own transition table against the
// current persisted value before any field commits; an invalid transition on
// any one field rejects the whole patch. A same-value status is an accepted
// no-op. The write is conditional on the status triple read here; losing
// that race surfaces as a conflict for the caller to re-fetch and retry,
// never a silent merge.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, patch domain.OrderPatch) (*domain.Order, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}

	current, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	next := repository.UpdateOrderParams{
		ID:                        id,
		ExpectedOrderStatus:       current.OrderStatus,
		ExpectedPaymentStatus:     current.PaymentStatus,
		ExpectedFulfillmentStatus: current.FulfillmentStatus,
		OrderStatus:               current.OrderStatus,
		PaymentStatus:             current.PaymentStatus,
		FulfillmentStatus:         current.FulfillmentStatus,
		ShippingMethod:            patch.ShippingMethod,
		TrackingNumber:            patch.TrackingNumber,
		Notes:                     patch.Notes,
	}

	statusChanged := false

	if patch.OrderStatus != nil && *patch.OrderStatus != current.OrderStatus {
		if !current.OrderStatus.CanTransitionTo(*patch.OrderStatus) {
			return nil, domain.InvalidTransition("order.update", "order status", current.OrderStatus, *patch.OrderStatus)
		}
		next.OrderStatus = *patch.OrderStatus
		statusChanged = true
	}

	if patch.PaymentStatus != nil && *patch.PaymentStatus != current.PaymentStatus {
		if !current.PaymentStatus.CanTransitionTo(*patch.PaymentStatus) {
			return nil, domain.InvalidTransition("order.update", "payment status", current.PaymentStatus, *patch.PaymentStatus)
		}
		next.PaymentStatus = *patch.PaymentStatus
		statusChanged = true
	}

	if patch.FulfillmentStatus != nil && *patch.FulfillmentStatus != current.FulfillmentStatus {
		if !current.FulfillmentStatus.CanTransitionTo(*patch.FulfillmentStatus) {
			return nil, domain.InvalidTransition("order.update", "fulfillment status", current.FulfillmentStatus, *patch.FulfillmentStatus)
		}
		next.FulfillmentStatus = *patch.FulfillmentStatus
		statusChanged = true
	}

	updated, err := s.store.UpdateOrder(ctx, next)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrOrderConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.update", "failed to update order")
	}

	if statusChanged {
		s.logger.Info().
			Str("order_number", updated.OrderNumber).
			Str("order_status", updated.OrderStatus.String()).
			Str("payment_status", updated.PaymentStatus.String()).
			Str("fulfillment_status", updated.FulfillmentStatus.String()).
			Msg("order status changed")

		s.events.PublishOrderStatusChanged(ctx, &updated)
	}

	return &updated, nil
}

// DeleteOrder hard-deletes an order. Only pending and cancelled orders are
// eligible; everything else is a historical record.
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	err := s.store.DeleteOrder(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrOrderNotFound
	case errors.Is(err, repository.ErrNotDeletable):
		return ErrOrderNotDeletable
	}
	return domain.Internal(err, "order.delete", "failed to delete order")
}
