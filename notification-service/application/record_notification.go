package application

import (
	"context"
	"fmt"
	"log"

	"github.com/orderlab/order-system/notification-service/domain"
	"github.com/orderlab/order-system/shared/events"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "notification_service_notifications_sent_total",
	Help: "Notifications recorded, by kind",
}, []string{"kind"})

// RecordOrderNotification records the confirmation message for a newly
// created order. The service never feeds back into the saga; failures
// here affect nothing upstream.
type RecordOrderNotification struct {
	notifications domain.NotificationRepository
}

func NewRecordOrderNotification(notifications domain.NotificationRepository) *RecordOrderNotification {
	return &RecordOrderNotification{notifications: notifications}
}

func (uc *RecordOrderNotification) Execute(ctx context.Context, event *events.OrderCreated) (*domain.NotificationRecord, error) {
	message := event.Message
	if message == "" {
		message = fmt.Sprintf("Pedido %s foi realizado com sucesso", event.Order.Codigo)
	}

	record, err := domain.NewNotificationRecord(event.Order.ID, event.Order.Codigo, domain.KindOrderConfirmation, message)
	if err != nil {
		return nil, err
	}

	if err := uc.notifications.Save(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to save order notification")
	}

	notificationsSent.WithLabelValues(domain.KindOrderConfirmation).Inc()
	log.Printf("[notification-service] order confirmation sent for %q", record.Codigo)
	return record, nil
}

// RecordPaymentNotification records the payment result message.
type RecordPaymentNotification struct {
	notifications domain.NotificationRepository
}

func NewRecordPaymentNotification(notifications domain.NotificationRepository) *RecordPaymentNotification {
	return &RecordPaymentNotification{notifications: notifications}
}

func (uc *RecordPaymentNotification) Execute(ctx context.Context, event *events.PaymentProcessed) (*domain.NotificationRecord, error) {
	message := fmt.Sprintf("Pagamento do pedido %s: %s", event.Codigo, event.Status)

	record, err := domain.NewNotificationRecord(event.ID, event.Codigo, domain.KindPaymentResult, message)
	if err != nil {
		return nil, err
	}

	if err := uc.notifications.Save(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to save payment notification")
	}

	notificationsSent.WithLabelValues(domain.KindPaymentResult).Inc()
	log.Printf("[notification-service] payment result sent for %q", record.Codigo)
	return record, nil
}
