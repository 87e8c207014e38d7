package handlers

import (
	"context"

	"github.com/orderlab/order-system/notification-service/application"
	"github.com/orderlab/order-system/shared/events"
	"github.com/pkg/errors"
)

// NotificationEventHandlers consumes both streams of the saga and
// records a notification for each event.
type NotificationEventHandlers struct {
	recordOrder   *application.RecordOrderNotification
	recordPayment *application.RecordPaymentNotification
}

// NewNotificationEventHandlers creates new notification event handlers
func NewNotificationEventHandlers(
	recordOrder *application.RecordOrderNotification,
	recordPayment *application.RecordPaymentNotification,
) *NotificationEventHandlers {
	return &NotificationEventHandlers{
		recordOrder:   recordOrder,
		recordPayment: recordPayment,
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *NotificationEventHandlers) HandlerID() string {
	return "notification-service-event-handler"
}

// Handle implements the events.Handler interface
func (h *NotificationEventHandlers) Handle(ctx context.Context, env events.Envelope) error {
	switch e := env.(type) {
	case *events.OrderCreated:
		if _, err := h.recordOrder.Execute(ctx, e); err != nil {
			return errors.Wrap(err, "failed to record order notification")
		}
		return nil
	case *events.PaymentProcessed:
		if _, err := h.recordPayment.Execute(ctx, e); err != nil {
			return errors.Wrap(err, "failed to record payment notification")
		}
		return nil
	default:
		// Unknown event type, ignore
		return nil
	}
}
