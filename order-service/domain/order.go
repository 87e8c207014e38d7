package domain

import (
	"context"
	"time"

	"github.com/orderlab/order-system/shared/models"
	"github.com/orderlab/order-system/shared/saga"
	"github.com/pkg/errors"
)

// ErrOrderNotFound is returned when neither lookup key matches an order.
var ErrOrderNotFound = errors.New("order not found")

// Order aggregate root. The status is assigned at creation and mutated
// only through Apply; orders are never deleted.
type Order struct {
	ID         int64
	Codigo     string
	Valor      models.Money
	Data       time.Time
	Status     saga.Status
	Timestamps models.Timestamps
}

// NewOrder creates a pending order. The creation date defaults to now
// when the client omits it.
func NewOrder(codigo string, valor models.Money, data time.Time) (*Order, error) {
	if codigo == "" {
		return nil, errors.New("codigo is required")
	}
	if valor.IsNegative() {
		return nil, errors.New("valor must not be negative")
	}
	if data.IsZero() {
		data = time.Now()
	}

	return &Order{
		Codigo:     codigo,
		Valor:      valor,
		Data:       data,
		Status:     saga.StatusPending,
		Timestamps: models.NewTimestamps(),
	}, nil
}

// Apply advances the order status for a payment outcome. It reports
// whether the status actually changed; replayed events against a
// terminal status report false.
func (o *Order) Apply(outcome saga.Outcome) bool {
	next := saga.Next(o.Status, outcome)
	if next == o.Status {
		return false
	}
	o.Status = next
	o.Timestamps = o.Timestamps.Update()
	return true
}

// OrderRepository persists orders. UpdateStatus runs the read-modify-
// write as one transactional unit so concurrent consumers cannot lose
// updates.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindByCodigo(ctx context.Context, codigo string) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	UpdateStatus(ctx context.Context, id int64, next func(saga.Status) saga.Status) (*Order, error)
	CountByStatus(ctx context.Context) (map[saga.Status]int64, error)
}
