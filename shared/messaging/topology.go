package messaging

import (
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrTopologyConflict means an exchange or queue already exists with
// different parameters. This is a misconfiguration: callers must treat
// it as fatal, never retry it.
var ErrTopologyConflict = errors.New("broker topology conflict")

// ExchangeSpec declares one exchange.
type ExchangeSpec struct {
	Name    string
	Kind    string // fanout, direct or topic
	Durable bool
}

// QueueSpec declares one queue.
type QueueSpec struct {
	Name    string
	Durable bool
}

// BindingSpec binds a queue to an exchange.
type BindingSpec struct {
	Exchange   string
	Queue      string
	RoutingKey string
}

// Topology enumerates the exchanges, queues and bindings a publisher or
// consumer needs. Names and kinds vary per deployment and come from
// configuration, not constants.
type Topology struct {
	Exchanges []ExchangeSpec
	Queues    []QueueSpec
	Bindings  []BindingSpec
}

// Merge combines two topologies into one declaration set.
func (t Topology) Merge(other Topology) Topology {
	return Topology{
		Exchanges: append(append([]ExchangeSpec{}, t.Exchanges...), other.Exchanges...),
		Queues:    append(append([]QueueSpec{}, t.Queues...), other.Queues...),
		Bindings:  append(append([]BindingSpec{}, t.Bindings...), other.Bindings...),
	}
}

// EnsureTopology declares every exchange, queue and binding in t.
// Re-declaring with identical parameters succeeds silently; conflicting
// parameters surface as ErrTopologyConflict. Failures here are
// structural, so there are no retries at this layer.
func EnsureTopology(ch Channel, t Topology) error {
	for _, ex := range t.Exchanges {
		err := ch.ExchangeDeclare(ex.Name, ex.Kind, ex.Durable, false, false, false, nil)
		if err != nil {
			return topologyErr(err, "exchange %q", ex.Name)
		}
	}

	for _, q := range t.Queues {
		_, err := ch.QueueDeclare(q.Name, q.Durable, false, false, false, nil)
		if err != nil {
			return topologyErr(err, "queue %q", q.Name)
		}
	}

	for _, b := range t.Bindings {
		err := ch.QueueBind(b.Queue, b.RoutingKey, b.Exchange, false, nil)
		if err != nil {
			return topologyErr(err, "binding %q -> %q", b.Exchange, b.Queue)
		}
	}

	return nil
}

func topologyErr(err error, format string, args ...interface{}) error {
	if isPreconditionFailed(err) {
		return errors.Wrapf(ErrTopologyConflict, format+": %v", append(args, err)...)
	}
	return errors.Wrapf(err, "declaring "+format, args...)
}

// The broker signals parameter mismatches with 406 precondition-failed.
func isPreconditionFailed(err error) bool {
	var amqpErr *amqp.Error
	return errors.As(err, &amqpErr) && amqpErr.Code == amqp.PreconditionFailed
}
