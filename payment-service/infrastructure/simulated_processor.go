package infrastructure

import (
	"context"
	"math/rand"
	"sync"

	"github.com/orderlab/order-system/payment-service/domain"
	"github.com/orderlab/order-system/shared/models"
)

// SimulatedProcessor approves or rejects payments by a configured
// failure rate. The default rate of zero approves everything, which is
// the behavior the other services are demonstrated against.
type SimulatedProcessor struct {
	mux         sync.Mutex
	failureRate float64
	rng         *rand.Rand
}

// NewSimulatedProcessor creates a processor that fails the given
// fraction of payments. Rates outside [0, 1] are clamped.
func NewSimulatedProcessor(failureRate float64, seed int64) *SimulatedProcessor {
	if failureRate < 0 {
		failureRate = 0
	}
	if failureRate > 1 {
		failureRate = 1
	}
	return &SimulatedProcessor{
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (p *SimulatedProcessor) Process(ctx context.Context, orderID int64, codigo string, valor models.Money) (string, error) {
	p.mux.Lock()
	roll := p.rng.Float64()
	p.mux.Unlock()

	if roll < p.failureRate {
		return domain.StatusFailed, nil
	}
	return domain.StatusSuccess, nil
}
