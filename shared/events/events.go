// Package events defines the wire envelopes exchanged between services and
// the codec that normalizes the two legacy payload shapes into one tagged
// union at the boundary. Downstream code never reads raw JSON fields.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orderlab/order-system/shared/models"
)

// Kind discriminates the envelope union.
type Kind string

const (
	KindOrderCreated     Kind = "order_created"
	KindPaymentProcessed Kind = "payment_processed"
)

// Wire type tags. The producers predate any naming convention: the order
// event uses "event_type"/"order_realized", the payment event uses
// "evento"/"PaymentProcessed". Both are kept as-is for compatibility.
const (
	TypeOrderRealized    = "order_realized"
	TypePaymentProcessed = "PaymentProcessed"
)

// Envelope is the tagged union of every event carried over the broker.
// It is immutable once constructed; publishers never mutate a serialized
// envelope.
type Envelope interface {
	Kind() Kind
	// Validate reports the first missing required field, if any.
	Validate() error
}

// OrderData is the nested order payload of an OrderCreated envelope.
// Field names follow the original wire contract (codigo/valor).
type OrderData struct {
	ID     int64  `json:"id"`
	Codigo string `json:"codigo"`
	Valor  string `json:"valor"`
	Data   string `json:"data"`
	Status string `json:"status"`
}

// OrderMetadata identifies the producing service.
type OrderMetadata struct {
	Service              string `json:"service"`
	Version              string `json:"version"`
	CommunicationPattern string `json:"communication_pattern,omitempty"`
}

// OrderCreated is emitted by order-service when an order is persisted.
type OrderCreated struct {
	EventType      string        `json:"event_type"`
	EventTimestamp string        `json:"event_timestamp"`
	Order          OrderData     `json:"order_data"`
	Message        string        `json:"message"`
	Metadata       OrderMetadata `json:"metadata"`
}

func (e *OrderCreated) Kind() Kind { return KindOrderCreated }

// PaymentMetadata identifies the payment producer.
type PaymentMetadata struct {
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

// PaymentProcessed is emitted by payment-service after processing an order.
// The payload is flat, unlike OrderCreated. Some producer versions put the
// business code in the id field; consumers reconcile with a dual lookup.
type PaymentProcessed struct {
	Evento   string          `json:"evento"`
	Codigo   string          `json:"codigo"`
	ID       int64           `json:"id"`
	Valor    string          `json:"valor"`
	Status   string          `json:"status"`
	Data     string          `json:"data"`
	Metadata PaymentMetadata `json:"metadata"`
}

func (e *PaymentProcessed) Kind() Kind { return KindPaymentProcessed }

// NewOrderCreated builds the order_realized envelope for a persisted order.
func NewOrderCreated(id int64, codigo string, valor models.Money, data time.Time, status, service, version, pattern string) *OrderCreated {
	return &OrderCreated{
		EventType:      TypeOrderRealized,
		EventTimestamp: time.Now().Format(time.RFC3339),
		Order: OrderData{
			ID:     id,
			Codigo: codigo,
			Valor:  valor.String(),
			Data:   data.Format(time.RFC3339),
			Status: status,
		},
		Message: "Pedido " + codigo + " foi realizado com sucesso",
		Metadata: OrderMetadata{
			Service:              service,
			Version:              version,
			CommunicationPattern: pattern,
		},
	}
}

// NewPaymentProcessed builds the payment outcome envelope.
func NewPaymentProcessed(orderID int64, codigo string, valor models.Money, status, source string) *PaymentProcessed {
	now := time.Now().UTC().Format(time.RFC3339)
	return &PaymentProcessed{
		Evento: TypePaymentProcessed,
		Codigo: codigo,
		ID:     orderID,
		Valor:  valor.String(),
		Status: status,
		Data:   now,
		Metadata: PaymentMetadata{
			Source:    source,
			Timestamp: now,
		},
	}
}

// NewMessageID generates a broker message id for an outgoing envelope.
func NewMessageID() string {
	return uuid.NewString()
}

// Handler processes one decoded envelope. A nil return acknowledges the
// delivery; an error causes a negative acknowledgment without requeue.
type Handler interface {
	HandlerID() string
	Handle(ctx context.Context, env Envelope) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc struct {
	id string
	fn func(ctx context.Context, env Envelope) error
}

func NewHandlerFunc(id string, fn func(ctx context.Context, env Envelope) error) *HandlerFunc {
	return &HandlerFunc{id: id, fn: fn}
}

func (h *HandlerFunc) HandlerID() string { return h.id }

func (h *HandlerFunc) Handle(ctx context.Context, env Envelope) error {
	return h.fn(ctx, env)
}

// Publisher publishes one envelope to an exchange.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, env Envelope) error
}
