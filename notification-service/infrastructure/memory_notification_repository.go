package infrastructure

import (
	"context"
	"sync"

	"github.com/orderlab/order-system/notification-service/domain"
)

// MemoryNotificationRepository is the in-memory append-only store.
type MemoryNotificationRepository struct {
	mux     sync.Mutex
	nextID  int64
	records []*domain.NotificationRecord
}

// NewMemoryNotificationRepository creates an empty in-memory store.
func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{}
}

func (r *MemoryNotificationRepository) Save(ctx context.Context, record *domain.NotificationRecord) error {
	r.mux.Lock()
	defer r.mux.Unlock()

	r.nextID++
	record.ID = r.nextID
	clone := *record
	r.records = append(r.records, &clone)
	return nil
}

func (r *MemoryNotificationRepository) List(ctx context.Context) ([]*domain.NotificationRecord, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	out := make([]*domain.NotificationRecord, len(r.records))
	for i, record := range r.records {
		clone := *record
		out[i] = &clone
	}
	return out, nil
}
