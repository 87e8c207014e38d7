package domain

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Notification kinds, one per consumed stream.
const (
	KindOrderConfirmation = "order_confirmation"
	KindPaymentResult     = "payment_result"
)

// StatusSent is the only terminal state a notification reaches: the
// service is a passive tail of the saga and delivery is simulated by
// recording.
const StatusSent = "SENT"

// NotificationRecord is the immutable trace of one delivered
// notification.
type NotificationRecord struct {
	ID        int64
	OrderID   int64
	Codigo    string
	Kind      string
	Message   string
	Status    string
	CreatedAt time.Time
}

// NewNotificationRecord creates a sent record for one event.
func NewNotificationRecord(orderID int64, codigo, kind, message string) (*NotificationRecord, error) {
	if kind != KindOrderConfirmation && kind != KindPaymentResult {
		return nil, errors.Errorf("unsupported notification kind %q", kind)
	}
	if message == "" {
		return nil, errors.New("notification message is required")
	}

	return &NotificationRecord{
		OrderID:   orderID,
		Codigo:    codigo,
		Kind:      kind,
		Message:   message,
		Status:    StatusSent,
		CreatedAt: time.Now(),
	}, nil
}

// NotificationRepository persists notification records, append-only.
type NotificationRepository interface {
	Save(ctx context.Context, record *NotificationRecord) error
	List(ctx context.Context) ([]*NotificationRecord, error)
}
