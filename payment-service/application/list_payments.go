package application

import (
	"context"
	"time"

	"github.com/orderlab/order-system/payment-service/domain"
)

// PaymentView is the outbound representation of a payment record.
type PaymentView struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"order_id"`
	Codigo    string `json:"codigo"`
	Valor     string `json:"valor"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toView(record *domain.PaymentRecord) *PaymentView {
	return &PaymentView{
		ID:        record.ID,
		OrderID:   record.OrderID,
		Codigo:    record.Codigo,
		Valor:     record.Valor.String(),
		Status:    record.Status,
		CreatedAt: record.CreatedAt.Format(time.RFC3339),
	}
}

// ListPayments returns every processed payment.
type ListPayments struct {
	payments domain.PaymentRepository
}

func NewListPayments(payments domain.PaymentRepository) *ListPayments {
	return &ListPayments{payments: payments}
}

func (uc *ListPayments) Execute(ctx context.Context) ([]*PaymentView, error) {
	records, err := uc.payments.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*PaymentView, len(records))
	for i, record := range records {
		views[i] = toView(record)
	}
	return views, nil
}

// GetPayment returns one payment record by ID.
type GetPayment struct {
	payments domain.PaymentRepository
}

func NewGetPayment(payments domain.PaymentRepository) *GetPayment {
	return &GetPayment{payments: payments}
}

func (uc *GetPayment) Execute(ctx context.Context, id int64) (*PaymentView, error) {
	record, err := uc.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(record), nil
}
