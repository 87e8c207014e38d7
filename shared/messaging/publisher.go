package messaging

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/orderlab/order-system/shared/events"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPublishExhausted means every publish attempt within the retry
// bound failed with a transient transport error.
var ErrPublishExhausted = errors.New("publish retries exhausted")

const (
	defaultPublishAttempts = 3
	defaultPublishDelay    = 2 * time.Second
)

// Publisher publishes envelopes to an exchange with bounded retry and
// persistent delivery marking. It owns its connection and reconnects on
// demand; connection state is never shared between instances.
type Publisher struct {
	url      string
	dial     Dialer
	topology Topology
	attempts int
	delay    time.Duration

	mux  sync.Mutex
	conn Connection
	ch   Channel
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublishAttempts bounds the retry count (default 3).
func WithPublishAttempts(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.attempts = n
		}
	}
}

// WithPublishDelay sets the fixed inter-attempt delay (default 2s).
func WithPublishDelay(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.delay = d
	}
}

// WithPublisherTopology makes the publisher declare its topology on
// every fresh channel, so a publish never races a missing exchange.
func WithPublisherTopology(t Topology) PublisherOption {
	return func(p *Publisher) {
		p.topology = t
	}
}

// WithPublisherDialer overrides the broker dialer. Used by tests.
func WithPublisherDialer(d Dialer) PublisherOption {
	return func(p *Publisher) {
		p.dial = d
	}
}

// NewPublisher creates a publisher for the broker at url.
func NewPublisher(url string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		url:      url,
		dial:     AMQPDial,
		attempts: defaultPublishAttempts,
		delay:    defaultPublishDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish serializes env and publishes it to exchange with the given
// routing key. Encoding failures fail fast without consuming an
// attempt. Transient transport failures are retried up to the bound;
// after that the caller gets ErrPublishExhausted wrapping the last
// transport error.
func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, env events.Envelope) error {
	body, err := events.Encode(env)
	if err != nil {
		return errors.Wrap(err, "encoding envelope")
	}

	msg := amqp.Publishing{
		MessageId:    events.NewMessageID(),
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.delay):
			}
		}

		ch, err := p.channel()
		if err != nil {
			if errors.Is(err, ErrTopologyConflict) {
				// Misconfiguration, not a transient fault. Retrying
				// cannot fix it.
				return err
			}
			lastErr = err
			log.Printf("[messaging] publish connect failed (attempt %d/%d): %v", attempt, p.attempts, err)
			p.drop()
			continue
		}

		if err := ch.PublishWithContext(ctx, exchange, routingKey, false, false, msg); err != nil {
			lastErr = err
			log.Printf("[messaging] publish to %q failed (attempt %d/%d): %v", exchange, attempt, p.attempts, err)
			p.drop()
			continue
		}

		publishedTotal.WithLabelValues(exchange, "ok").Inc()
		return nil
	}

	publishedTotal.WithLabelValues(exchange, "error").Inc()
	return errors.Wrapf(ErrPublishExhausted, "exchange %q after %d attempts: %v", exchange, p.attempts, lastErr)
}

// channel returns the cached channel, dialing and declaring topology
// when none is open.
func (p *Publisher) channel() (Channel, error) {
	p.mux.Lock()
	defer p.mux.Unlock()

	if p.ch != nil {
		return p.ch, nil
	}

	conn, err := p.dial(p.url)
	if err != nil {
		return nil, errors.Wrap(err, "dialing broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "opening channel")
	}

	if err := EnsureTopology(ch, p.topology); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	p.conn = conn
	p.ch = ch
	return ch, nil
}

// drop discards the cached connection so the next attempt redials.
func (p *Publisher) drop() {
	p.mux.Lock()
	defer p.mux.Unlock()

	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.drop()
	return nil
}
