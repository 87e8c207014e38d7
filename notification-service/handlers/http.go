package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/orderlab/order-system/notification-service/application"
	"github.com/orderlab/order-system/shared/messaging"
)

// NotificationHandlers contains notification HTTP handlers
type NotificationHandlers struct {
	listNotifications *application.ListNotifications
	registry          *messaging.Registry
}

// NewNotificationHandlers creates new notification handlers
func NewNotificationHandlers(listNotifications *application.ListNotifications, registry *messaging.Registry) *NotificationHandlers {
	return &NotificationHandlers{
		listNotifications: listNotifications,
		registry:          registry,
	}
}

// ListNotifications handles notification listing requests
func (h *NotificationHandlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	views, err := h.listNotifications.Execute(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// Health reports service liveness plus the state of every consumer.
func (h *NotificationHandlers) Health(w http.ResponseWriter, r *http.Request) {
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
		"service":   "notification-service",
		"consumers": statuses,
	})
}

// RegisterRoutes registers notification routes
func (h *NotificationHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.ListNotifications)
	r.Get("/health", h.Health)
}
