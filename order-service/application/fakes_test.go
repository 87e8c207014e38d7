package application

import (
	"context"
	"sync"

	"github.com/orderlab/order-system/order-service/domain"
	"github.com/orderlab/order-system/shared/events"
	"github.com/orderlab/order-system/shared/models"
	"github.com/orderlab/order-system/shared/saga"
)

// memoryOrders is an in-memory domain.OrderRepository for tests.
type memoryOrders struct {
	mux    sync.Mutex
	nextID int64
	orders map[int64]*domain.Order
}

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{orders: make(map[int64]*domain.Order)}
}

func (m *memoryOrders) Create(ctx context.Context, order *domain.Order) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.nextID++
	order.ID = m.nextID
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

func (m *memoryOrders) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *order
	return &clone, nil
}

func (m *memoryOrders) FindByCodigo(ctx context.Context, codigo string) (*domain.Order, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	for _, order := range m.orders {
		if order.Codigo == codigo {
			clone := *order
			return &clone, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *memoryOrders) List(ctx context.Context) ([]*domain.Order, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	out := make([]*domain.Order, 0, len(m.orders))
	for _, order := range m.orders {
		clone := *order
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memoryOrders) UpdateStatus(ctx context.Context, id int64, next func(saga.Status) saga.Status) (*domain.Order, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	order.Status = next(order.Status)
	clone := *order
	return &clone, nil
}

func (m *memoryOrders) CountByStatus(ctx context.Context) (map[saga.Status]int64, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	counts := make(map[saga.Status]int64)
	for _, order := range m.orders {
		counts[order.Status]++
	}
	return counts, nil
}

// fakePublisher records envelopes or fails on demand.
type fakePublisher struct {
	mux       sync.Mutex
	err       error
	published []events.Envelope
	exchanges []string
}

func (f *fakePublisher) Publish(ctx context.Context, exchange, routingKey string, env events.Envelope) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, env)
	f.exchanges = append(f.exchanges, exchange)
	return nil
}

// fakePayments scripts the synchronous payment collaborator.
type fakePayments struct {
	outcome saga.Outcome
	err     error
	calls   int
}

func (f *fakePayments) Process(ctx context.Context, orderID int64, codigo string, valor models.Money) (saga.Outcome, error) {
	f.calls++
	return f.outcome, f.err
}
