package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/rowanholt/vesta/internal/domain"
)

// NATSPublisher publishes order events to a NATS server.
type NATSPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to the given NATS URL.
func NewNATSPublisher(url string, logger zerolog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("vesta"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &NATSPublisher{conn: conn, logger: logger}, nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("draining nats connection")
	}
}

// PublishOrderCreated emits an orders.created event.
func (p *NATSPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) {
	p.publish(SubjectOrderCreated, OrderCreated{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Total:       order.Total.StringFixed(2),
		ItemCount:   len(order.Items),
		CreatedAt:   order.CreatedAt,
	})
}

// PublishOrderStatusChanged emits an orders.status_changed event.
func (p *NATSPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order) {
	p.publish(SubjectOrderStatusChanged, OrderStatusChanged{
		OrderID:           order.ID.String(),
		OrderNumber:       order.OrderNumber,
		OrderStatus:       order.OrderStatus.String(),
		PaymentStatus:     order.PaymentStatus.String(),
		FulfillmentStatus: order.FulfillmentStatus.String(),
		ChangedAt:         order.UpdatedAt,
	})
}

func (p *NATSPublisher) publish(subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("marshaling event payload")
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("publishing event")
	}
}
