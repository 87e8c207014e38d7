package application

import (
	"context"

	"github.com/orderlab/order-system/payment-service/domain"
	"github.com/orderlab/order-system/shared/models"
	"github.com/pkg/errors"
)

// ProcessPaymentRequest serves the synchronous pattern: the caller
// blocks on the HTTP request and reads the outcome from the response,
// so no event is published.
type ProcessPaymentRequest struct {
	payments  domain.PaymentRepository
	processor domain.Processor
}

func NewProcessPaymentRequest(payments domain.PaymentRepository, processor domain.Processor) *ProcessPaymentRequest {
	return &ProcessPaymentRequest{payments: payments, processor: processor}
}

// ProcessPaymentCommand is the inbound synchronous request payload.
type ProcessPaymentCommand struct {
	OrderID int64  `json:"order_id"`
	Codigo  string `json:"codigo"`
	Valor   string `json:"valor"`
}

// Execute processes the payment and persists the record.
func (uc *ProcessPaymentRequest) Execute(ctx context.Context, cmd *ProcessPaymentCommand) (*PaymentView, error) {
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

	paymentsProcessed.WithLabelValues(record.Status).Inc()
	return toView(record), nil
}
