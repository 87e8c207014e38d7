package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/orderlab/order-system/order-service/domain"
	"github.com/orderlab/order-system/shared/saga"
)

// MemoryOrderRepository is the in-memory store used when no database is
// configured. The mutex makes UpdateStatus a single transactional
// read-modify-write, matching the Postgres implementation's semantics.
type MemoryOrderRepository struct {
	mux    sync.Mutex
	nextID int64
	orders map[int64]*domain.Order
}

// NewMemoryOrderRepository creates an empty in-memory store.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[int64]*domain.Order)}
}

func (r *MemoryOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mux.Lock()
	defer r.mux.Unlock()

	r.nextID++
	order.ID = r.nextID
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *MemoryOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *MemoryOrderRepository) FindByCodigo(ctx context.Context, codigo string) (*domain.Order, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	for _, order := range r.orders {
		if order.Codigo == codigo {
			clone := *order
			return &clone, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *MemoryOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	out := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		clone := *order
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryOrderRepository) UpdateStatus(ctx context.Context, id int64, next func(saga.Status) saga.Status) (*domain.Order, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	order.Status = next(order.Status)
	order.Timestamps = order.Timestamps.Update()
	clone := *order
	return &clone, nil
}

func (r *MemoryOrderRepository) CountByStatus(ctx context.Context) (map[saga.Status]int64, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	counts := make(map[saga.Status]int64)
	for _, order := range r.orders {
		counts[order.Status]++
	}
	return counts, nil
}
