package application

import (
	"context"
	"log"
	"time"

	"github.com/orderlab/order-system/order-service/domain"
	"github.com/orderlab/order-system/shared/events"
	"github.com/orderlab/order-system/shared/models"
	"github.com/orderlab/order-system/shared/saga"
	"github.com/pkg/errors"
)

// Communication patterns the order flow can run in.
const (
	PatternHybrid = "hybrid_async_notification"
	PatternAsync  = "async_event_driven"
	PatternSync   = "sync_request_response"
)

// PaymentCaller is the synchronous payment collaborator used only in
// the sync pattern. It always yields an outcome: transport failures
// surface as OutcomeTimedOut or OutcomeTransportError, never as a
// failure of order creation.
type PaymentCaller interface {
	Process(ctx context.Context, orderID int64, codigo string, valor models.Money) (saga.Outcome, error)
}

// CreateOrderConfig carries the wiring the use case needs to describe
// itself on the wire.
type CreateOrderConfig struct {
	Exchange       string
	ServiceName    string
	ServiceVersion string
	Pattern        string
}

// CreateOrder persists a new order and then notifies the other
// services. Persistence always happens first: broker trouble is never
// allowed to fail the request that created the order.
type CreateOrder struct {
	orders    domain.OrderRepository
	publisher events.Publisher
	payments  PaymentCaller
	cfg       CreateOrderConfig
}

// NewCreateOrder creates the use case. payments may be nil unless the
// sync pattern is configured.
func NewCreateOrder(orders domain.OrderRepository, publisher events.Publisher, payments PaymentCaller, cfg CreateOrderConfig) *CreateOrder {
	return &CreateOrder{
		orders:    orders,
		publisher: publisher,
		payments:  payments,
		cfg:       cfg,
	}
}

// CreateOrderCommand is the inbound request payload.
type CreateOrderCommand struct {
	Codigo string     `json:"codigo"`
	Valor  string     `json:"valor"`
	Data   *time.Time `json:"data,omitempty"`
}

// CreateOrderResponse mirrors the created order.
type CreateOrderResponse struct {
	ID     int64  `json:"id"`
	Codigo string `json:"codigo"`
	Valor  string `json:"valor"`
	Data   string `json:"data"`
	Status string `json:"status"`
}

// Execute runs the create-order flow for the configured pattern.
func (uc *CreateOrder) Execute(ctx context.Context, cmd *CreateOrderCommand) (*CreateOrderResponse, error) {
	valor, err := models.ParseMoney(cmd.Valor)
	if err != nil {
		return nil, errors.Wrap(err, "invalid valor")
	}

	var data time.Time
	if cmd.Data != nil {
		data = *cmd.Data
	}

	order, err := domain.NewOrder(cmd.Codigo, valor, data)
	if err != nil {
		return nil, err
	}

	// Critical phase: the order must be durable before any
	// communication with other services is attempted.
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, errors.Wrap(err, "persisting order")
	}

	if uc.cfg.Pattern == PatternSync && uc.payments != nil {
		uc.processSynchronously(ctx, order)
	} else {
		uc.notifyAsync(ctx, order)
	}

	return &CreateOrderResponse{
		ID:     order.ID,
		Codigo: order.Codigo,
		Valor:  order.Valor.String(),
		Data:   order.Data.Format(time.RFC3339),
		Status: string(order.Status),
	}, nil
}

// notifyAsync publishes the order_realized event best-effort. A failed
// publish is logged and swallowed: the order already exists and its
// status stays observable through the status endpoint. This selective
// decoupling is what distinguishes the hybrid pattern.
func (uc *CreateOrder) notifyAsync(ctx context.Context, order *domain.Order) {
	env := events.NewOrderCreated(
		order.ID, order.Codigo, order.Valor, order.Data, string(order.Status),
		uc.cfg.ServiceName, uc.cfg.ServiceVersion, uc.cfg.Pattern,
	)

	if err := uc.publisher.Publish(ctx, uc.cfg.Exchange, "", env); err != nil {
		log.Printf("[order-service] async notification for order %s failed: %v", order.Codigo, err)
	}
}

// processSynchronously performs the blocking payment call and applies
// its outcome immediately. Timeouts and transport errors degrade the
// order status instead of failing the request.
func (uc *CreateOrder) processSynchronously(ctx context.Context, order *domain.Order) {
	outcome, err := uc.payments.Process(ctx, order.ID, order.Codigo, order.Valor)
	if err != nil {
		log.Printf("[order-service] sync payment call for order %s: %v", order.Codigo, err)
	}

	updated, err := uc.orders.UpdateStatus(ctx, order.ID, func(cur saga.Status) saga.Status {
		return saga.Next(cur, outcome)
	})
	if err != nil {
		log.Printf("[order-service] status update for order %s failed: %v", order.Codigo, err)
		return
	}
	order.Status = updated.Status
}
