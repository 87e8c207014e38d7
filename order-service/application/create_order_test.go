package application

import (
	"context"
	"testing"

	"github.com/orderlab/order-system/shared/events"
	"github.com/orderlab/order-system/shared/saga"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hybridConfig() CreateOrderConfig {
	return CreateOrderConfig{
		Exchange:       "order.created",
		ServiceName:    "order-service",
		ServiceVersion: "1.0.0",
		Pattern:        PatternHybrid,
	}
}

func TestCreateOrderPersistsAndPublishes(t *testing.T) {
	orders := newMemoryOrders()
	publisher := &fakePublisher{}
	uc := NewCreateOrder(orders, publisher, nil, hybridConfig())

	resp, err := uc.Execute(context.Background(), &CreateOrderCommand{Codigo: "ORD-1", Valor: "99.90"})
	require.NoError(t, err)

	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "99.90", resp.Valor)
	assert.NotZero(t, resp.ID)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "order.created", publisher.exchanges[0])

	oc := publisher.published[0].(*events.OrderCreated)
	assert.Equal(t, "ORD-1", oc.Order.Codigo)
	assert.Equal(t, "99.90", oc.Order.Valor)
	assert.Equal(t, "PENDING", oc.Order.Status)
	assert.Equal(t, PatternHybrid, oc.Metadata.CommunicationPattern)
}

// The defining property of the hybrid pattern: a broken broker never
// fails order creation.
func TestCreateOrderSurvivesPublishFailure(t *testing.T) {
	orders := newMemoryOrders()
	publisher := &fakePublisher{err: errors.New("broker unreachable")}
	uc := NewCreateOrder(orders, publisher, nil, hybridConfig())

	resp, err := uc.Execute(context.Background(), &CreateOrderCommand{Codigo: "ORD-1", Valor: "99.90"})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)

	stored, err := orders.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, saga.StatusPending, stored.Status)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	uc := NewCreateOrder(newMemoryOrders(), &fakePublisher{}, nil, hybridConfig())

	_, err := uc.Execute(context.Background(), &CreateOrderCommand{Codigo: "ORD-1", Valor: "not-money"})
	assert.Error(t, err)

	_, err = uc.Execute(context.Background(), &CreateOrderCommand{Codigo: "", Valor: "10.00"})
	assert.Error(t, err)

	_, err = uc.Execute(context.Background(), &CreateOrderCommand{Codigo: "ORD-1", Valor: "-5.00"})
	assert.Error(t, err)
}

func TestCreateOrderSyncPattern(t *testing.T) {
	tests := []struct {
		name     string
		outcome  saga.Outcome
		expected string
	}{
		{name: "approved", outcome: saga.OutcomeApproved, expected: "SUCCESS"},
		{name: "rejected", outcome: saga.OutcomeRejected, expected: "PAYMENT_FAILED"},
		{name: "timed out", outcome: saga.OutcomeTimedOut, expected: "PAYMENT_TIMEOUT"},
		{name: "transport error", outcome: saga.OutcomeTransportError, expected: "PAYMENT_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := newMemoryOrders()
			payments := &fakePayments{outcome: tt.outcome}
			cfg := hybridConfig()
			cfg.Pattern = PatternSync
			uc := NewCreateOrder(orders, &fakePublisher{}, payments, cfg)

			resp, err := uc.Execute(context.Background(), &CreateOrderCommand{Codigo: "ORD-1", Valor: "99.90"})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.Status)
			assert.Equal(t, 1, payments.calls)

			stored, err := orders.FindByID(context.Background(), resp.ID)
			require.NoError(t, err)
			assert.Equal(t, saga.Status(tt.expected), stored.Status)
		})
	}
}

// A transport-degraded sync call still returns the created order.
func TestCreateOrderSyncFailureDoesNotFailCreation(t *testing.T) {
	orders := newMemoryOrders()
	payments := &fakePayments{outcome: saga.OutcomeTimedOut, err: errors.New("deadline exceeded")}
	cfg := hybridConfig()
	cfg.Pattern = PatternSync
	uc := NewCreateOrder(orders, &fakePublisher{}, payments, cfg)

	resp, err := uc.Execute(context.Background(), &CreateOrderCommand{Codigo: "ORD-1", Valor: "99.90"})
	require.NoError(t, err)
	assert.Equal(t, "PAYMENT_TIMEOUT", resp.Status)
}
