package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/orderlab/order-system/payment-service/application"
	"github.com/orderlab/order-system/payment-service/domain"
	"github.com/orderlab/order-system/shared/messaging"
	"github.com/pkg/errors"
)

// PaymentHandlers contains payment HTTP handlers
type PaymentHandlers struct {
	listPayments   *application.ListPayments
	getPayment     *application.GetPayment
	processPayment *application.ProcessPaymentRequest
	registry       *messaging.Registry
}

// NewPaymentHandlers creates new payment handlers
func NewPaymentHandlers(
	listPayments *application.ListPayments,
	getPayment *application.GetPayment,
	processPayment *application.ProcessPaymentRequest,
	registry *messaging.Registry,
) *PaymentHandlers {
	return &PaymentHandlers{
		listPayments:   listPayments,
		getPayment:     getPayment,
		processPayment: processPayment,
		registry:       registry,
	}
}

// ProcessPayment handles synchronous payment processing requests. The
// outcome travels back in the response body instead of an event.
func (h *PaymentHandlers) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var cmd application.ProcessPaymentCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := h.processPayment.Execute(r.Context(), &cmd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// ListPayments handles payment listing requests
func (h *PaymentHandlers) ListPayments(w http.ResponseWriter, r *http.Request) {
	views, err := h.listPayments.Execute(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// GetPayment handles payment retrieval requests
func (h *PaymentHandlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Payment ID must be a positive integer", http.StatusBadRequest)
		return
	}

	view, err := h.getPayment.Execute(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			http.Error(w, "Payment not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// Health reports service liveness plus the state of every consumer.
func (h *PaymentHandlers) Health(w http.ResponseWriter, r *http.Request) {
	statuses := h.registry.Statuses()

	status := "healthy"
	code := http.StatusOK
	for _, s := range statuses {
		if s.State == messaging.StateDegraded {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"service":   "payment-service",
		"consumers": statuses,
	})
}

// RegisterRoutes registers payment routes
func (h *PaymentHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.ListPayments)
		r.Post("/process", h.ProcessPayment)
		r.Get("/{id}", h.GetPayment)
	})
	r.Get("/health", h.Health)
}
