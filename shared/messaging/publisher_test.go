package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/orderlab/order-system/shared/events"
	"github.com/orderlab/order-system/shared/models"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnvelope() events.Envelope {
	return events.NewPaymentProcessed(1, "ORD-1", models.MustParseMoney("10.00"), "SUCCESS", "payment-service")
}

func TestPublishFirstAttemptSucceeds(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher("amqp://test",
		WithPublisherDialer(singleConnDialer(ch).dial),
		WithPublishDelay(time.Millisecond),
	)

	err := p.Publish(context.Background(), "payment.events", "", testEnvelope())
	require.NoError(t, err)
	require.Equal(t, 1, ch.publishedCount())

	msg := ch.published[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.NotEmpty(t, msg.MessageId)
}

func TestPublishRetriesThenSucceeds(t *testing.T) {
	transient := errors.New("connection reset")
	ch := &fakeChannel{publishErrs: []error{transient, transient}}
	p := NewPublisher("amqp://test",
		WithPublisherDialer(singleConnDialer(ch).dial),
		WithPublishAttempts(3),
		WithPublishDelay(time.Millisecond),
	)

	err := p.Publish(context.Background(), "order.created", "", testEnvelope())
	require.NoError(t, err)
	assert.Equal(t, 1, ch.publishedCount())
}

func TestPublishExhaustedAfterBound(t *testing.T) {
	transient := errors.New("connection reset")
	ch := &fakeChannel{publishErrs: []error{transient, transient, transient, transient}}
	dialer := singleConnDialer(ch)
	p := NewPublisher("amqp://test",
		WithPublisherDialer(dialer.dial),
		WithPublishAttempts(3),
		WithPublishDelay(time.Millisecond),
	)

	err := p.Publish(context.Background(), "order.created", "", testEnvelope())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPublishExhausted))
	// Exactly the configured bound of attempts, no more.
	assert.Equal(t, 0, ch.publishedCount())
	assert.Equal(t, 3, dialer.dialCount())
}

func TestPublishEncodingFailureFailsFast(t *testing.T) {
	dialer := singleConnDialer(&fakeChannel{})
	p := NewPublisher("amqp://test", WithPublisherDialer(dialer.dial))

	err := p.Publish(context.Background(), "order.created", "", &events.PaymentProcessed{})
	require.Error(t, err)
	assert.True(t, events.IsSchemaViolation(err))
	// No broker round-trip for an unencodable envelope.
	assert.Equal(t, 0, dialer.dialCount())
}

func TestPublishTopologyConflictNotRetried(t *testing.T) {
	ch := &fakeChannel{exchangeErr: &amqp.Error{Code: amqp.PreconditionFailed, Reason: "durable mismatch"}}
	dialer := singleConnDialer(ch)
	p := NewPublisher("amqp://test",
		WithPublisherDialer(dialer.dial),
		WithPublisherTopology(Topology{
			Exchanges: []ExchangeSpec{{Name: "order.created", Kind: "fanout", Durable: true}},
		}),
		WithPublishAttempts(3),
		WithPublishDelay(time.Millisecond),
	)

	err := p.Publish(context.Background(), "order.created", "", testEnvelope())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTopologyConflict))
	assert.Equal(t, 1, dialer.dialCount())
}

func TestPublishDeclaresTopologyOnFreshChannel(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher("amqp://test",
		WithPublisherDialer(singleConnDialer(ch).dial),
		WithPublisherTopology(Topology{
			Exchanges: []ExchangeSpec{{Name: "order.created", Kind: "fanout", Durable: true}},
			Queues:    []QueueSpec{{Name: "order_payment", Durable: true}},
			Bindings:  []BindingSpec{{Exchange: "order.created", Queue: "order_payment"}},
		}),
	)

	require.NoError(t, p.Publish(context.Background(), "order.created", "", testEnvelope()))
	assert.Equal(t, []string{"order.created/fanout"}, ch.declaredExchanges)
	assert.Equal(t, []string{"order_payment"}, ch.declaredQueues)
	assert.Equal(t, []string{"order.created->order_payment"}, ch.bindings)

	// A second publish reuses the channel without re-declaring.
	require.NoError(t, p.Publish(context.Background(), "order.created", "", testEnvelope()))
	assert.Len(t, ch.declaredExchanges, 1)
}
