package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/orderlab/order-system/order-service/application"
	"github.com/orderlab/order-system/order-service/domain"
	"github.com/orderlab/order-system/shared/messaging"
	"github.com/pkg/errors"
)

// OrderHandlers contains order HTTP handlers
type OrderHandlers struct {
	createOrder   *application.CreateOrder
	getOrder      *application.GetOrder
	listOrders    *application.ListOrders
	statusSummary *application.StatusSummary
	registry      *messaging.Registry
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(
	createOrder *application.CreateOrder,
	getOrder *application.GetOrder,
	listOrders *application.ListOrders,
	statusSummary *application.StatusSummary,
	registry *messaging.Registry,
) *OrderHandlers {
	return &OrderHandlers{
		createOrder:   createOrder,
		getOrder:      getOrder,
		listOrders:    listOrders,
		statusSummary: statusSummary,
		registry:      registry,
	}
}

// CreateOrder handles order creation requests
func (h *OrderHandlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd application.CreateOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.createOrder.Execute(r.Context(), &cmd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// GetOrder handles order retrieval requests
func (h *OrderHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	view, err := h.getOrder.Execute(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// GetOrderStatus returns only the saga status of one order.
func (h *OrderHandlers) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	view, err := h.getOrder.ExecuteStatus(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// ListOrders handles order listing requests
func (h *OrderHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	views, err := h.listOrders.Execute(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// StatusSummary handles aggregate status reporting requests
func (h *OrderHandlers) StatusSummary(w http.ResponseWriter, r *http.Request) {
	view, err := h.statusSummary.Execute(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// Health reports service liveness plus the state of every consumer, so
// degraded mode is visible without log access.
func (h *OrderHandlers) Health(w http.ResponseWriter, r *http.Request) {
	statuses := h.registry.Statuses()

	healthy := true
	for _, s := range statuses {
		if s.State == messaging.StateDegraded {
			healthy = false
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"service":   "order-service",
		"consumers": statuses,
	})
}

// RegisterRoutes registers order routes
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/status/summary", h.StatusSummary)
		r.Get("/{id}", h.GetOrder)
		r.Get("/{id}/status", h.GetOrderStatus)
	})
	r.Get("/health", h.Health)
}

func (h *OrderHandlers) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Order ID must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *OrderHandlers) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrOrderNotFound) {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
