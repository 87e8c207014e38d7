package application

import (
	"context"
	"sync"

	"github.com/orderlab/order-system/payment-service/domain"
	"github.com/orderlab/order-system/shared/events"
	"github.com/orderlab/order-system/shared/models"
)

type memoryPayments struct {
	mux     sync.Mutex
	saveErr error
	nextID  int64
	records []*domain.PaymentRecord
}

func (m *memoryPayments) Save(ctx context.Context, record *domain.PaymentRecord) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.nextID++
	record.ID = m.nextID
	clone := *record
	m.records = append(m.records, &clone)
	return nil
}

func (m *memoryPayments) FindByID(ctx context.Context, id int64) (*domain.PaymentRecord, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	for _, record := range m.records {
		if record.ID == id {
			clone := *record
			return &clone, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *memoryPayments) List(ctx context.Context) ([]*domain.PaymentRecord, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	out := make([]*domain.PaymentRecord, len(m.records))
	for i, record := range m.records {
		clone := *record
		out[i] = &clone
	}
	return out, nil
}

type fakePublisher struct {
	err       error
	exchanges []string
	published []events.Envelope
}

func (f *fakePublisher) Publish(ctx context.Context, exchange, routingKey string, env events.Envelope) error {
	if f.err != nil {
		return f.err
	}
	f.exchanges = append(f.exchanges, exchange)
	f.published = append(f.published, env)
	return nil
}

// fixedProcessor always returns the same status.
type fixedProcessor struct {
	status string
	err    error
}

func (p *fixedProcessor) Process(ctx context.Context, orderID int64, codigo string, valor models.Money) (string, error) {
	return p.status, p.err
}
