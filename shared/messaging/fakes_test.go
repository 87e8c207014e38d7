package messaging

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// fakeChannel implements Channel in memory.
type fakeChannel struct {
	mux sync.Mutex

	exchangeErr error
	queueErr    error
	bindErr     error

	publishErrs []error // consumed one per publish, then nil
	published   []amqp.Publishing

	deliveries chan amqp.Delivery
	consumeErr error

	declaredExchanges []string
	declaredQueues    []string
	bindings          []string
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.exchangeErr != nil {
		return f.exchangeErr
	}
	f.declaredExchanges = append(f.declaredExchanges, name+"/"+kind)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.queueErr != nil {
		return amqp.Queue{}, f.queueErr
	}
	f.declaredQueues = append(f.declaredQueues, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.bindErr != nil {
		return f.bindErr
	}
	f.bindings = append(f.bindings, exchange+"->"+name)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if len(f.publishErrs) > 0 {
		err := f.publishErrs[0]
		f.publishErrs = f.publishErrs[1:]
		if err != nil {
			return err
		}
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	return f.deliveries, nil
}

func (f *fakeChannel) Close() error { return nil }

func (f *fakeChannel) publishedCount() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return len(f.published)
}

// fakeConn hands out a fixed channel.
type fakeConn struct {
	ch     *fakeChannel
	closed bool
	mux    sync.Mutex
}

func (f *fakeConn) Channel() (Channel, error) { return f.ch, nil }

func (f *fakeConn) Close() error {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.closed = true
	return nil
}

// fakeDialer scripts the outcome of successive dials.
type fakeDialer struct {
	mux      sync.Mutex
	dialErrs []error // consumed one per dial, then nil
	conns    []*fakeConn
	next     func() *fakeConn
}

func (f *fakeDialer) dial(url string) (Connection, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	if len(f.dialErrs) > 0 {
		err := f.dialErrs[0]
		f.dialErrs = f.dialErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	conn := f.next()
	f.conns = append(f.conns, conn)
	return conn, nil
}

func (f *fakeDialer) dialCount() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return len(f.conns)
}

func singleConnDialer(ch *fakeChannel) *fakeDialer {
	conn := &fakeConn{ch: ch}
	return &fakeDialer{next: func() *fakeConn { return conn }}
}

// fakeAcknowledger records ack/nack calls.
type fakeAcknowledger struct {
	mux   sync.Mutex
	acks  int
	nacks []bool // requeue flag per nack
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.acks++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.nacks = append(f.nacks, requeue)
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func (f *fakeAcknowledger) counts() (int, []bool) {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.acks, append([]bool{}, f.nacks...)
}
