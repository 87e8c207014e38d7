package infrastructure

import (
	"context"
	"sync"

	"github.com/orderlab/order-system/payment-service/domain"
)

// MemoryPaymentRepository is the in-memory append-only record store.
type MemoryPaymentRepository struct {
	mux     sync.Mutex
	nextID  int64
	records []*domain.PaymentRecord
}

// NewMemoryPaymentRepository creates an empty in-memory store.
func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{}
}

func (r *MemoryPaymentRepository) Save(ctx context.Context, record *domain.PaymentRecord) error {
	r.mux.Lock()
	defer r.mux.Unlock()

	r.nextID++
	record.ID = r.nextID
	clone := *record
	r.records = append(r.records, &clone)
	return nil
}

func (r *MemoryPaymentRepository) FindByID(ctx context.Context, id int64) (*domain.PaymentRecord, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	for _, record := range r.records {
		if record.ID == id {
			clone := *record
			return &clone, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (r *MemoryPaymentRepository) List(ctx context.Context) ([]*domain.PaymentRecord, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	out := make([]*domain.PaymentRecord, len(r.records))
	for i, record := range r.records {
		clone := *record
		out[i] = &clone
	}
	return out, nil
}
