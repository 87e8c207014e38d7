package handlers

import (
	"context"
	"log"

	"github.com/orderlab/order-system/order-service/application"
	"github.com/orderlab/order-system/shared/events"
	"github.com/pkg/errors"
)

// OrderEventHandlers consumes the payment event stream and feeds the
// order saga.
type OrderEventHandlers struct {
	applyOutcome *application.ApplyPaymentOutcome
}

// NewOrderEventHandlers creates new order event handlers
func NewOrderEventHandlers(applyOutcome *application.ApplyPaymentOutcome) *OrderEventHandlers {
	return &OrderEventHandlers{applyOutcome: applyOutcome}
}

// HandlerID returns the unique identifier for this event handler
func (h *OrderEventHandlers) HandlerID() string {
	return "order-service-event-handler"
}

// Handle implements the events.Handler interface
func (h *OrderEventHandlers) Handle(ctx context.Context, env events.Envelope) error {
	switch e := env.(type) {
	case *events.PaymentProcessed:
		return h.HandlePaymentProcessed(ctx, e)
	default:
		// Unknown event type, ignore
		return nil
	}
}

// HandlePaymentProcessed applies a payment outcome to its order. Events
// referencing orders this service has never seen are logged and
// acknowledged: redelivery cannot make the order appear.
func (h *OrderEventHandlers) HandlePaymentProcessed(ctx context.Context, event *events.PaymentProcessed) error {
	cmd := &application.PaymentOutcomeCommand{
		OrderID: event.ID,
		Codigo:  event.Codigo,
		Status:  event.Status,
	}

	result, err := h.applyOutcome.Execute(ctx, cmd)
	if err != nil {
		if errors.Is(err, application.ErrUnknownOrderReference) {
			log.Printf("[order-service] dropping payment event for unknown order (id=%d codigo=%q)", event.ID, event.Codigo)
			return nil
		}
		return errors.Wrap(err, "failed to apply payment outcome")
	}

	if result.Changed {
		log.Printf("[order-service] order %d moved to %s", result.OrderID, result.Status)
	}
	return nil
}
