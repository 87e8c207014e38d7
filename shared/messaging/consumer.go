package messaging

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/orderlab/order-system/shared/events"
	"github.com/pkg/errors"
)

// ErrConsumerStartup means the bootstrap connect cycle exhausted its
// retry bound. The owning service keeps serving requests; a missing
// consumer is a degraded mode, not a fatal condition.
var ErrConsumerStartup = errors.New("consumer bootstrap failed")

const (
	defaultBootstrapAttempts = 5
	defaultBootstrapDelay    = 5 * time.Second
)

// ConsumerState describes where a consumer is in its lifecycle.
type ConsumerState string

const (
	StateIdle         ConsumerState = "idle"
	StateConnecting   ConsumerState = "connecting"
	StateConsuming    ConsumerState = "consuming"
	StateReconnecting ConsumerState = "reconnecting"
	StateDegraded     ConsumerState = "degraded"
	StateStopped      ConsumerState = "stopped"
)

// DeliveryHandler processes one raw message body. A nil return
// acknowledges the delivery; an error triggers a negative
// acknowledgment without requeue — each message gets exactly one
// processing attempt (poison messages are dropped, not retried, trading
// durability for liveness).
type DeliveryHandler func(ctx context.Context, body []byte) error

// EnvelopeHandler adapts an events.Handler to a DeliveryHandler by
// decoding at the boundary. Undecodable messages are logged and dropped
// through the nack path.
func EnvelopeHandler(h events.Handler) DeliveryHandler {
	return func(ctx context.Context, body []byte) error {
		env, err := events.Decode(body)
		if err != nil {
			log.Printf("[messaging] %s: dropping undecodable message: %v", h.HandlerID(), err)
			return err
		}
		return h.Handle(ctx, env)
	}
}

// Consumer binds one queue and delivers its messages to a handler on a
// dedicated goroutine. The broker connection is owned by the consumer;
// a mid-stream connection loss re-enters the bootstrap cycle.
type Consumer struct {
	url      string
	queue    string
	dial     Dialer
	topology Topology
	handler  DeliveryHandler
	attempts int
	delay    time.Duration

	state atomic.Value // ConsumerState
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithBootstrapAttempts bounds the connect retry count (default 5).
func WithBootstrapAttempts(n int) ConsumerOption {
	return func(c *Consumer) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithBootstrapDelay sets the fixed inter-attempt delay (default 5s).
func WithBootstrapDelay(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.delay = d
	}
}

// WithConsumerTopology declares the exchanges/queues/bindings the
// consumer depends on before it starts consuming.
func WithConsumerTopology(t Topology) ConsumerOption {
	return func(c *Consumer) {
		c.topology = t
	}
}

// WithConsumerDialer overrides the broker dialer. Used by tests.
func WithConsumerDialer(d Dialer) ConsumerOption {
	return func(c *Consumer) {
		c.dial = d
	}
}

// NewConsumer creates a consumer for queue on the broker at url.
func NewConsumer(url, queue string, handler DeliveryHandler, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		url:      url,
		queue:    queue,
		dial:     AMQPDial,
		handler:  handler,
		attempts: defaultBootstrapAttempts,
		delay:    defaultBootstrapDelay,
	}
	c.state.Store(StateIdle)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Queue returns the queue this consumer binds.
func (c *Consumer) Queue() string { return c.queue }

// State returns the current lifecycle state.
func (c *Consumer) State() ConsumerState {
	return c.state.Load().(ConsumerState)
}

// Run blocks until ctx is cancelled or the bootstrap cycle is
// exhausted. It never runs on the request-serving goroutine.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		err := c.runCycle(ctx)

		if ctx.Err() != nil {
			c.state.Store(StateStopped)
			return ctx.Err()
		}

		if err != nil {
			c.state.Store(StateDegraded)
			log.Printf("[messaging] consumer %q degraded: %v", c.queue, err)
			return err
		}

		// Delivery channel closed mid-stream: reconnect and resume.
		c.state.Store(StateReconnecting)
		consumerReconnects.WithLabelValues(c.queue).Inc()
		log.Printf("[messaging] consumer %q lost its connection, reconnecting", c.queue)
	}
}

// runCycle performs one bootstrap-and-consume cycle. A nil return means
// the delivery stream closed and the caller should reconnect; an error
// means bootstrap exhausted its bound.
func (c *Consumer) runCycle(ctx context.Context) error {
	c.state.Store(StateConnecting)

	var (
		conn       Connection
		deliveries <-chan delivery
	)

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.delay):
			}
		}

		var err error
		conn, deliveries, err = c.connect(ctx)
		if err == nil {
			break
		}
		conn = nil

		if errors.Is(err, ErrTopologyConflict) {
			return err
		}
		log.Printf("[messaging] consumer %q connect failed (attempt %d/%d): %v", c.queue, attempt, c.attempts, err)
	}

	if conn == nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrapf(ErrConsumerStartup, "queue %q after %d attempts", c.queue, c.attempts)
	}
	defer conn.Close()

	c.state.Store(StateConsuming)
	log.Printf("[messaging] consumer %q waiting for messages", c.queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.dispatch(ctx, d)
		}
	}
}

func (c *Consumer) connect(ctx context.Context) (Connection, <-chan delivery, error) {
	conn, err := c.dial(c.url)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dialing broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, errors.Wrap(err, "opening channel")
	}

	if err := EnsureTopology(ch, c.topology); err != nil {
		conn.Close()
		return nil, nil, err
	}

	raw, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, nil, errors.Wrapf(err, "consuming queue %q", c.queue)
	}

	out := make(chan delivery)
	go func() {
		defer close(out)
		for d := range raw {
			select {
			case out <- delivery{body: d.Body, ack: d.Ack, nack: d.Nack}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return conn, out, nil
}

// delivery decouples handler dispatch from the amqp types.
type delivery struct {
	body []byte
	ack  func(multiple bool) error
	nack func(multiple, requeue bool) error
}

func (c *Consumer) dispatch(ctx context.Context, d delivery) {
	if err := c.handler(ctx, d.body); err != nil {
		log.Printf("[messaging] consumer %q handler error, dropping message: %v", c.queue, err)
		if nerr := d.nack(false, false); nerr != nil {
			log.Printf("[messaging] consumer %q nack failed: %v", c.queue, nerr)
		}
		consumedTotal.WithLabelValues(c.queue, "nack").Inc()
		return
	}

	if aerr := d.ack(false); aerr != nil {
		log.Printf("[messaging] consumer %q ack failed: %v", c.queue, aerr)
	}
	consumedTotal.WithLabelValues(c.queue, "ack").Inc()
}
