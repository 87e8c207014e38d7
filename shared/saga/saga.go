// Package saga holds the pure order status machine driven by payment
// outcomes. Delivery is at-least-once, so the machine is built to be
// idempotent: terminal states absorb every further event, which makes
// replayed or reordered deliveries harmless.
package saga

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusPaymentPending Status = "PAYMENT_PENDING"
	StatusSuccess        Status = "SUCCESS"
	StatusPaymentFailed  Status = "PAYMENT_FAILED"
	StatusPaymentTimeout Status = "PAYMENT_TIMEOUT"
	StatusPaymentError   Status = "PAYMENT_ERROR"
)

// Terminal reports whether the status absorbs all further events.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusPaymentFailed
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaymentPending, StatusSuccess,
		StatusPaymentFailed, StatusPaymentTimeout, StatusPaymentError:
		return true
	}
	return false
}

// Description returns the human-readable status text served by the
// status endpoints.
func (s Status) Description() string {
	switch s {
	case StatusPending:
		return "Aguardando pagamento"
	case StatusSuccess:
		return "Pagamento confirmado"
	case StatusPaymentFailed:
		return "Falha no pagamento"
	case StatusPaymentPending:
		return "Pagamento em processamento"
	case StatusPaymentTimeout:
		return "Tempo de resposta do pagamento esgotado"
	case StatusPaymentError:
		return "Erro de comunicação com o pagamento"
	}
	return "Status desconhecido"
}

// Outcome is a payment result observed by the order saga, either from a
// broker event or from a synchronous payment call.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
	// OutcomeTimedOut and OutcomeTransportError are transport-level
	// failures of the synchronous payment call, distinct from a
	// business rejection.
	OutcomeTimedOut       Outcome = "timed_out"
	OutcomeTransportError Outcome = "transport_error"
	// OutcomeUnknown covers unparseable or unrecognized payment
	// statuses arriving over the wire.
	OutcomeUnknown Outcome = "unknown"
)

// OutcomeFromPaymentStatus maps a wire payment status to an outcome.
// Anything unrecognized maps to OutcomeUnknown rather than failing the
// consumer.
func OutcomeFromPaymentStatus(status string) Outcome {
	switch status {
	case "SUCCESS":
		return OutcomeApproved
	case "FAILED":
		return OutcomeRejected
	default:
		return OutcomeUnknown
	}
}

// Next computes the status an order moves to when outcome arrives while
// it is in current. Terminal states never change.
func Next(current Status, outcome Outcome) Status {
	if current.Terminal() {
		return current
	}

	switch outcome {
	case OutcomeApproved:
		return StatusSuccess
	case OutcomeRejected:
		return StatusPaymentFailed
	case OutcomeTimedOut:
		return StatusPaymentTimeout
	case OutcomeTransportError:
		return StatusPaymentError
	default:
		return StatusPaymentPending
	}
}
