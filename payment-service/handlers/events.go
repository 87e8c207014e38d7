package handlers

import (
	"context"

	"github.com/orderlab/order-system/payment-service/application"
	"github.com/orderlab/order-system/shared/events"
	"github.com/pkg/errors"
)

// PaymentEventHandlers consumes the order stream and processes each
// order into a payment outcome.
type PaymentEventHandlers struct {
	processOrder *application.ProcessOrderCreated
}

// NewPaymentEventHandlers creates new payment event handlers
func NewPaymentEventHandlers(processOrder *application.ProcessOrderCreated) *PaymentEventHandlers {
	return &PaymentEventHandlers{processOrder: processOrder}
}

// HandlerID returns the unique identifier for this event handler
func (h *PaymentEventHandlers) HandlerID() string {
	return "payment-service-event-handler"
}

// Handle implements the events.Handler interface
func (h *PaymentEventHandlers) Handle(ctx context.Context, env events.Envelope) error {
	switch e := env.(type) {
	case *events.OrderCreated:
		return h.HandleOrderCreated(ctx, e)
	default:
		// Unknown event type, ignore
		return nil
	}
}

// HandleOrderCreated processes one incoming order. Errors propagate so
// the delivery is rejected: the payment outcome is the saga's critical
// path and must not be silently lost.
func (h *PaymentEventHandlers) HandleOrderCreated(ctx context.Context, event *events.OrderCreated) error {
	cmd := &application.ProcessOrderCommand{
		OrderID: event.Order.ID,
		Codigo:  event.Order.Codigo,
		Valor:   event.Order.Valor,
	}

	if _, err := h.processOrder.Execute(ctx, cmd); err != nil {
		return errors.Wrapf(err, "failed to process order %q", event.Order.Codigo)
	}
	return nil
}
