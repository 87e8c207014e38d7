package saga

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		current  Status
		outcome  Outcome
		expected Status
	}{
		{name: "pending approved", current: StatusPending, outcome: OutcomeApproved, expected: StatusSuccess},
		{name: "pending rejected", current: StatusPending, outcome: OutcomeRejected, expected: StatusPaymentFailed},
		{name: "pending timed out", current: StatusPending, outcome: OutcomeTimedOut, expected: StatusPaymentTimeout},
		{name: "pending transport error", current: StatusPending, outcome: OutcomeTransportError, expected: StatusPaymentError},
		{name: "pending unknown", current: StatusPending, outcome: OutcomeUnknown, expected: StatusPaymentPending},
		{name: "payment pending approved", current: StatusPaymentPending, outcome: OutcomeApproved, expected: StatusSuccess},
		{name: "payment pending unknown stays pending", current: StatusPaymentPending, outcome: OutcomeUnknown, expected: StatusPaymentPending},
		{name: "timeout later approved", current: StatusPaymentTimeout, outcome: OutcomeApproved, expected: StatusSuccess},
		{name: "error later rejected", current: StatusPaymentError, outcome: OutcomeRejected, expected: StatusPaymentFailed},
		{name: "success absorbs rejected", current: StatusSuccess, outcome: OutcomeRejected, expected: StatusSuccess},
		{name: "success absorbs unknown", current: StatusSuccess, outcome: OutcomeUnknown, expected: StatusSuccess},
		{name: "failed absorbs approved", current: StatusPaymentFailed, outcome: OutcomeApproved, expected: StatusPaymentFailed},
		{name: "failed absorbs transport error", current: StatusPaymentFailed, outcome: OutcomeTransportError, expected: StatusPaymentFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Next(tt.current, tt.outcome))
		})
	}
}

// Applying the same terminal-resolving outcome twice must land in the
// same state as applying it once.
func TestNextIdempotentUnderReplay(t *testing.T) {
	outcomes := []Outcome{OutcomeApproved, OutcomeRejected, OutcomeTimedOut, OutcomeTransportError, OutcomeUnknown}

	for _, outcome := range outcomes {
		once := Next(StatusPending, outcome)
		twice := Next(once, outcome)
		assert.Equal(t, once, twice, "outcome %s replay changed status", outcome)
	}
}

// Once terminal, no ordering of later outcomes may overwrite the status.
func TestTerminalAbsorptionUnderAnyOrdering(t *testing.T) {
	outcomes := []Outcome{OutcomeApproved, OutcomeRejected, OutcomeTimedOut, OutcomeTransportError, OutcomeUnknown}

	for _, terminal := range []Status{StatusSuccess, StatusPaymentFailed} {
		for _, first := range outcomes {
			for _, second := range outcomes {
				got := Next(Next(terminal, first), second)
				assert.Equal(t, terminal, got)
			}
		}
	}
}

func TestOutcomeFromPaymentStatus(t *testing.T) {
	assert.Equal(t, OutcomeApproved, OutcomeFromPaymentStatus("SUCCESS"))
	assert.Equal(t, OutcomeRejected, OutcomeFromPaymentStatus("FAILED"))
	assert.Equal(t, OutcomeUnknown, OutcomeFromPaymentStatus("PROCESSING"))
	assert.Equal(t, OutcomeUnknown, OutcomeFromPaymentStatus(""))
	assert.Equal(t, OutcomeUnknown, OutcomeFromPaymentStatus("success"))
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusPaymentFailed.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusPaymentTimeout.Terminal())

	assert.True(t, StatusPaymentPending.Valid())
	assert.False(t, Status("SHIPPED").Valid())

	assert.NotEqual(t, Status("SHIPPED").Description(), StatusSuccess.Description())
}
