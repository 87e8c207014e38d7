package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orderlab/order-system/shared/models"
	"github.com/orderlab/order-system/shared/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentClient_Process(t *testing.T) {
	t.Run("should map SUCCESS response to approved", func(t *testing.T) {
		var got paymentRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode(map[string]string{"status": "SUCCESS"})
		}))
		defer server.Close()

		client := NewPaymentClient(server.URL, time.Second)
		outcome, err := client.Process(context.Background(), 7, "PED-001", models.MustParseMoney("99.90"))

		require.NoError(t, err)
		assert.Equal(t, saga.OutcomeApproved, outcome)
		assert.Equal(t, int64(7), got.OrderID)
		assert.Equal(t, "PED-001", got.Codigo)
		assert.Equal(t, "99.90", got.Valor)
	})

	t.Run("should map FAILED response to rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": "FAILED"})
		}))
		defer server.Close()

		client := NewPaymentClient(server.URL, time.Second)
		outcome, err := client.Process(context.Background(), 1, "PED-002", models.MustParseMoney("10.00"))

		require.NoError(t, err)
		assert.Equal(t, saga.OutcomeRejected, outcome)
	})

	t.Run("should map unrecognized status to unknown", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": "MAYBE"})
		}))
		defer server.Close()

		client := NewPaymentClient(server.URL, time.Second)
		outcome, err := client.Process(context.Background(), 1, "PED-003", models.MustParseMoney("10.00"))

		require.NoError(t, err)
		assert.Equal(t, saga.OutcomeUnknown, outcome)
	})

	t.Run("should map slow responses to timed out", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			json.NewEncoder(w).Encode(map[string]string{"status": "SUCCESS"})
		}))
		defer server.Close()

		client := NewPaymentClient(server.URL, 50*time.Millisecond)
		outcome, err := client.Process(context.Background(), 1, "PED-004", models.MustParseMoney("10.00"))

		assert.Error(t, err)
		assert.Equal(t, saga.OutcomeTimedOut, outcome)
	})

	t.Run("should map unreachable service to transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewPaymentClient(server.URL, time.Second)
		outcome, err := client.Process(context.Background(), 1, "PED-005", models.MustParseMoney("10.00"))

		assert.Error(t, err)
		assert.Equal(t, saga.OutcomeTransportError, outcome)
	})

	t.Run("should map non-200 responses to transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewPaymentClient(server.URL, time.Second)
		outcome, err := client.Process(context.Background(), 1, "PED-006", models.MustParseMoney("10.00"))

		assert.Error(t, err)
		assert.Equal(t, saga.OutcomeTransportError, outcome)
	})
}
