package events

import (
	"testing"
	"time"

	"github.com/orderlab/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOrderCreated(t *testing.T) {
	body := []byte(`{
		"event_type": "order_realized",
		"event_timestamp": "2024-05-01T10:00:00Z",
		"order_data": {"id": 7, "codigo": "ORD-1", "valor": "99.90", "data": "2024-05-01T09:59:00Z", "status": "PENDING"},
		"message": "Pedido ORD-1 foi realizado com sucesso",
		"metadata": {"service": "order-service", "version": "1.0.0", "communication_pattern": "hybrid_async_notification"}
	}`)

	env, err := Decode(body)
	require.NoError(t, err)
	require.Equal(t, KindOrderCreated, env.Kind())

	oc := env.(*OrderCreated)
	assert.Equal(t, int64(7), oc.Order.ID)
	assert.Equal(t, "ORD-1", oc.Order.Codigo)
	assert.Equal(t, "99.90", oc.Order.Valor)
	assert.Equal(t, "order-service", oc.Metadata.Service)
}

func TestDecodePaymentProcessed(t *testing.T) {
	body := []byte(`{
		"evento": "PaymentProcessed",
		"codigo": "ORD-1",
		"id": 7,
		"valor": "99.90",
		"status": "SUCCESS",
		"data": "2024-05-01T10:00:05",
		"metadata": {"source": "payment-service", "timestamp": "2024-05-01T10:00:05"}
	}`)

	env, err := Decode(body)
	require.NoError(t, err)
	require.Equal(t, KindPaymentProcessed, env.Kind())

	pp := env.(*PaymentProcessed)
	assert.Equal(t, int64(7), pp.ID)
	assert.Equal(t, "SUCCESS", pp.Status)
	assert.Equal(t, "payment-service", pp.Metadata.Source)
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	body := []byte(`{
		"evento": "PaymentProcessed",
		"codigo": "ORD-2",
		"id": 3,
		"status": "FAILED",
		"some_future_field": {"nested": true}
	}`)

	env, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, "FAILED", env.(*PaymentProcessed).Status)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	require.Error(t, err)

	de, ok := err.(*DecodeError)
	require.True(t, ok)
	assert.Equal(t, Malformed, de.Reason)
}

func TestDecodeSchemaViolations(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "order event without codigo",
			body:  `{"event_type": "order_realized", "order_data": {"id": 1, "valor": "5.00"}}`,
			field: "order_data.codigo",
		},
		{
			name:  "order event without valor",
			body:  `{"event_type": "order_realized", "order_data": {"id": 1, "codigo": "ORD-1"}}`,
			field: "order_data.valor",
		},
		{
			name:  "payment event without status",
			body:  `{"evento": "PaymentProcessed", "id": 1, "codigo": "ORD-1"}`,
			field: "status",
		},
		{
			name:  "payment event without correlation key",
			body:  `{"evento": "PaymentProcessed", "status": "SUCCESS"}`,
			field: "id",
		},
		{
			name:  "no type tag at all",
			body:  `{"hello": "world"}`,
			field: "event_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, IsSchemaViolation(err))
			assert.Equal(t, tt.field, err.(*DecodeError).Field)
		})
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"event_type": "shipment_arrived"}`))
	require.Error(t, err)
	assert.Equal(t, UnknownType, err.(*DecodeError).Reason)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	envelopes := []Envelope{
		NewOrderCreated(7, "ORD-1", models.MustParseMoney("99.90"),
			time.Date(2024, 5, 1, 9, 59, 0, 0, time.UTC), "PENDING",
			"order-service", "1.0.0", "hybrid_async_notification"),
		NewPaymentProcessed(7, "ORD-1", models.MustParseMoney("99.90"),
			"SUCCESS", "payment-service"),
	}

	for _, env := range envelopes {
		body, err := Encode(env)
		require.NoError(t, err)

		decoded, err := Decode(body)
		require.NoError(t, err)
		assert.Equal(t, env, decoded)
	}
}

func TestEncodeRefusesIncompleteEnvelope(t *testing.T) {
	_, err := Encode(&PaymentProcessed{Evento: TypePaymentProcessed})
	require.Error(t, err)
	assert.True(t, IsSchemaViolation(err))

	_, err = Encode(&OrderCreated{EventType: TypeOrderRealized})
	require.Error(t, err)
	assert.True(t, IsSchemaViolation(err))
}
