package events

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// DecodeReason classifies codec failures.
type DecodeReason string

const (
	// Malformed means the bytes are not valid JSON at all.
	Malformed DecodeReason = "malformed"
	// SchemaViolation means a field required by the event type is missing.
	SchemaViolation DecodeReason = "schema_violation"
	// UnknownType means no recognized type tag was present.
	UnknownType DecodeReason = "unknown_type"
)

// DecodeError reports why an envelope could not be decoded or encoded.
type DecodeError struct {
	Reason DecodeReason
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	switch e.Reason {
	case SchemaViolation:
		return fmt.Sprintf("schema violation: missing required field %q", e.Field)
	case UnknownType:
		return "unknown event type"
	default:
		if e.Err != nil {
			return fmt.Sprintf("malformed envelope: %v", e.Err)
		}
		return "malformed envelope"
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsSchemaViolation checks whether err is a missing-required-field failure.
func IsSchemaViolation(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Reason == SchemaViolation
}

// Encode serializes an envelope, refusing incomplete ones before any
// broker I/O is attempted.
func Encode(env Envelope) ([]byte, error) {
	if env == nil {
		return nil, &DecodeError{Reason: SchemaViolation, Field: "envelope"}
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, &DecodeError{Reason: Malformed, Err: err}
	}
	return b, nil
}

// typeProbe sniffs the discriminating tag of either wire shape.
type typeProbe struct {
	EventType string `json:"event_type"`
	Evento    string `json:"evento"`
}

// Decode parses raw broker bytes into the envelope union. Unknown
// top-level fields are ignored for forward compatibility; missing
// required fields fail with a SchemaViolation naming the field.
func Decode(body []byte) (Envelope, error) {
	var probe typeProbe
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&probe); err != nil {
		return nil, &DecodeError{Reason: Malformed, Err: err}
	}

	switch {
	case probe.EventType == TypeOrderRealized:
		var env OrderCreated
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, &DecodeError{Reason: Malformed, Err: err}
		}
		if err := env.Validate(); err != nil {
			return nil, err
		}
		return &env, nil

	case probe.Evento == TypePaymentProcessed:
		var env PaymentProcessed
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, &DecodeError{Reason: Malformed, Err: err}
		}
		if err := env.Validate(); err != nil {
			return nil, err
		}
		return &env, nil

	case probe.EventType == "" && probe.Evento == "":
		return nil, &DecodeError{Reason: SchemaViolation, Field: "event_type"}

	default:
		return nil, &DecodeError{Reason: UnknownType}
	}
}

// Validate implements Envelope.
func (e *OrderCreated) Validate() error {
	switch {
	case e.EventType == "":
		return &DecodeError{Reason: SchemaViolation, Field: "event_type"}
	case e.Order.Codigo == "":
		return &DecodeError{Reason: SchemaViolation, Field: "order_data.codigo"}
	case e.Order.Valor == "":
		return &DecodeError{Reason: SchemaViolation, Field: "order_data.valor"}
	}
	return nil
}

// Validate implements Envelope. At least one correlation key (numeric id
// or business code) must be present; producers disagree on which.
func (e *PaymentProcessed) Validate() error {
	switch {
	case e.Evento == "":
		return &DecodeError{Reason: SchemaViolation, Field: "evento"}
	case e.Status == "":
		return &DecodeError{Reason: SchemaViolation, Field: "status"}
	case e.ID == 0 && e.Codigo == "":
		return &DecodeError{Reason: SchemaViolation, Field: "id"}
	}
	return nil
}
