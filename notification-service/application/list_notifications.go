package application

import (
	"context"
	"time"

	"github.com/orderlab/order-system/notification-service/domain"
)

// NotificationView is the outbound representation of a notification.
type NotificationView struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"order_id"`
	Codigo    string `json:"codigo"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ListNotifications returns every recorded notification.
type ListNotifications struct {
	notifications domain.NotificationRepository
}

func NewListNotifications(notifications domain.NotificationRepository) *ListNotifications {
	return &ListNotifications{notifications: notifications}
}

func (uc *ListNotifications) Execute(ctx context.Context) ([]*NotificationView, error) {
	records, err := uc.notifications.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*NotificationView, len(records))
	for i, record := range records {
		views[i] = &NotificationView{
			ID:        record.ID,
			OrderID:   record.OrderID,
			Codigo:    record.Codigo,
			Kind:      record.Kind,
			Message:   record.Message,
			Status:    record.Status,
			CreatedAt: record.CreatedAt.Format(time.RFC3339),
		}
	}
	return views, nil
}
