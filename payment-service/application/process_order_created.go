package application

import (
	"context"
	"log"

	"github.com/orderlab/order-system/payment-service/domain"
	"github.com/orderlab/order-system/shared/events"
	"github.com/orderlab/order-system/shared/models"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var paymentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "payment_service_payments_processed_total",
	Help: "Payments processed, by resulting status",
}, []string{"status"})

// ProcessOrderCreatedConfig carries the wiring for the outcome publish.
type ProcessOrderCreatedConfig struct {
	Exchange    string
	ServiceName string
}

// ProcessOrderCreated handles one incoming order: it decides the
// payment, persists the immutable record, and publishes the outcome.
// The publish is the critical path of the saga, so unlike the order
// service's notification it is never best-effort: a publish failure
// propagates and the delivery is retried or dropped by the consumer
// policy, not silently swallowed.
type ProcessOrderCreated struct {
	payments  domain.PaymentRepository
	processor domain.Processor
	publisher events.Publisher
	cfg       ProcessOrderCreatedConfig
}

// NewProcessOrderCreated creates the use case.
func NewProcessOrderCreated(payments domain.PaymentRepository, processor domain.Processor, publisher events.Publisher, cfg ProcessOrderCreatedConfig) *ProcessOrderCreated {
	return &ProcessOrderCreated{
		payments:  payments,
		processor: processor,
		publisher: publisher,
		cfg:       cfg,
	}
}

// ProcessOrderCommand is the decoded order payload.
type ProcessOrderCommand struct {
	OrderID int64
	Codigo  string
	Valor   string
}

// Execute processes the order and emits the PaymentProcessed event.
func (uc *ProcessOrderCreated) Execute(ctx context.Context, cmd *ProcessOrderCommand) (*domain.PaymentRecord, error) {
	valor, err := models.ParseMoney(cmd.Valor)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid valor for order %q", cmd.Codigo)
	}

	status, err := uc.processor.Process(ctx, cmd.OrderID, cmd.Codigo, valor)
	if err != nil {
		return nil, errors.Wrap(err, "payment processing failed")
	}

	record, err := domain.NewPaymentRecord(cmd.OrderID, cmd.Codigo, valor, status)
	if err != nil {
		return nil, err
	}

	if err := uc.payments.Save(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to save payment record")
	}

	env := events.NewPaymentProcessed(record.OrderID, record.Codigo, record.Valor, record.Status, uc.cfg.ServiceName)
	if err := uc.publisher.Publish(ctx, uc.cfg.Exchange, "", env); err != nil {
		return nil, errors.Wrapf(err, "failed to publish payment outcome for order %q", record.Codigo)
	}

	paymentsProcessed.WithLabelValues(record.Status).Inc()
	log.Printf("[payment-service] order %q processed: %s", record.Codigo, record.Status)
	return record, nil
}
