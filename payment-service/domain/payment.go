package domain

import (
	"context"
	"time"

	"github.com/orderlab/order-system/shared/models"
	"github.com/pkg/errors"
)

// ErrPaymentNotFound is returned when no record matches the lookup.
var ErrPaymentNotFound = errors.New("payment not found")

// Payment wire statuses. Consumers map these onto their own saga
// outcomes; anything else they treat as unknown.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// PaymentRecord is the immutable result of processing one order. A
// record is written once and never updated; reprocessing an order
// produces a new record.
type PaymentRecord struct {
	ID        int64
	OrderID   int64
	Codigo    string
	Valor     models.Money
	Status    string
	CreatedAt time.Time
}

// NewPaymentRecord creates a record for a processed order.
func NewPaymentRecord(orderID int64, codigo string, valor models.Money, status string) (*PaymentRecord, error) {
	if codigo == "" && orderID <= 0 {
		return nil, errors.New("payment record needs an order reference")
	}
	if status != StatusSuccess && status != StatusFailed {
		return nil, errors.Errorf("unsupported payment status %q", status)
	}

	return &PaymentRecord{
		OrderID:   orderID,
		Codigo:    codigo,
		Valor:     valor,
		Status:    status,
		CreatedAt: time.Now(),
	}, nil
}

// Approved reports whether the payment went through.
func (p *PaymentRecord) Approved() bool {
	return p.Status == StatusSuccess
}

// PaymentRepository persists payment records. Records are append-only.
type PaymentRepository interface {
	Save(ctx context.Context, record *PaymentRecord) error
	FindByID(ctx context.Context, id int64) (*PaymentRecord, error)
	List(ctx context.Context) ([]*PaymentRecord, error)
}

// Processor decides the fate of one payment. Implementations range from
// an always-approve stub to a rate-based simulator.
type Processor interface {
	Process(ctx context.Context, orderID int64, codigo string, valor models.Money) (string, error)
}
