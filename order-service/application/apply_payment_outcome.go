package application

import (
	"context"
	"log"

	"github.com/orderlab/order-system/order-service/domain"
	"github.com/orderlab/order-system/shared/saga"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrUnknownOrderReference means a payment event arrived for an order
// that neither lookup key resolves. Retrying cannot manufacture the
// missing entity, so callers log and drop.
var ErrUnknownOrderReference = errors.New("unknown order reference")

var ordersProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "order_service_orders_processed_total",
	Help: "Payment outcomes applied to orders, by resulting status",
}, []string{"status"})

// ApplyPaymentOutcome drives the order saga: it correlates an incoming
// payment event with an order and advances the order's status through
// the state machine inside one transactional read-modify-write.
type ApplyPaymentOutcome struct {
	orders domain.OrderRepository
}

func NewApplyPaymentOutcome(orders domain.OrderRepository) *ApplyPaymentOutcome {
	return &ApplyPaymentOutcome{orders: orders}
}

// PaymentOutcomeCommand carries the correlation keys and wire status of
// a payment event.
type PaymentOutcomeCommand struct {
	OrderID int64
	Codigo  string
	Status  string
}

// PaymentOutcomeResult reports the status the order ended up in.
type PaymentOutcomeResult struct {
	OrderID int64
	Status  saga.Status
	Changed bool
}

// Execute resolves the order and applies the outcome. Producers
// disagree on the correlation key: identity lookup runs first, then the
// business code. The fallback is logged because it signals a schema
// mismatch between producer and consumer versions.
func (uc *ApplyPaymentOutcome) Execute(ctx context.Context, cmd *PaymentOutcomeCommand) (*PaymentOutcomeResult, error) {
	order, err := uc.resolve(ctx, cmd)
	if err != nil {
		return nil, err
	}

	outcome := saga.OutcomeFromPaymentStatus(cmd.Status)
	if outcome == saga.OutcomeUnknown {
		log.Printf("[order-service] unknown payment status %q for order %d", cmd.Status, order.ID)
	}

	previous := order.Status
	updated, err := uc.orders.UpdateStatus(ctx, order.ID, func(cur saga.Status) saga.Status {
		return saga.Next(cur, outcome)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "updating order %d", order.ID)
	}

	changed := updated.Status != previous
	if changed {
		log.Printf("[order-service] order %d: %s -> %s", order.ID, previous, updated.Status)
	}
	ordersProcessed.WithLabelValues(string(updated.Status)).Inc()

	return &PaymentOutcomeResult{
		OrderID: updated.ID,
		Status:  updated.Status,
		Changed: changed,
	}, nil
}

func (uc *ApplyPaymentOutcome) resolve(ctx context.Context, cmd *PaymentOutcomeCommand) (*domain.Order, error) {
	if cmd.OrderID > 0 {
		order, err := uc.orders.FindByID(ctx, cmd.OrderID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
	}

	if cmd.Codigo != "" {
		order, err := uc.orders.FindByCodigo(ctx, cmd.Codigo)
		if err == nil {
			log.Printf("[order-service] order resolved by codigo %q after id %d missed; producer/consumer schema mismatch", cmd.Codigo, cmd.OrderID)
			return order, nil
		}
		if !errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
	}

	return nil, errors.Wrapf(ErrUnknownOrderReference, "id %d, codigo %q", cmd.OrderID, cmd.Codigo)
}
