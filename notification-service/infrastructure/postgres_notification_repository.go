package infrastructure

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/orderlab/order-system/notification-service/domain"
	"github.com/pkg/errors"
)

// PostgresNotificationRepository implements NotificationRepository using PostgreSQL
type PostgresNotificationRepository struct {
	db *sqlx.DB
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository
func NewPostgresNotificationRepository(db *sqlx.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// postgresNotification represents a notification row in the database
type postgresNotification struct {
	ID        int64     `db:"id"`
	OrderID   int64     `db:"order_id"`
	Codigo    string    `db:"codigo"`
	Kind      string    `db:"kind"`
	Message   string    `db:"message"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// Save inserts a notification record. Records are never updated.
func (r *PostgresNotificationRepository) Save(ctx context.Context, record *domain.NotificationRecord) error {
	query := `
		INSERT INTO notifications (order_id, codigo, kind, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		record.OrderID,
		record.Codigo,
		record.Kind,
		record.Message,
		record.Status,
		record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return errors.Wrap(err, "failed to insert notification")
	}

	return nil
}

// List returns all notifications in recording order.
func (r *PostgresNotificationRepository) List(ctx context.Context) ([]*domain.NotificationRecord, error) {
	query := `
		SELECT id, order_id, codigo, kind, message, status, created_at
		FROM notifications ORDER BY id`

	var pgNotifications []postgresNotification
	err := r.db.SelectContext(ctx, &pgNotifications, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	records := make([]*domain.NotificationRecord, len(pgNotifications))
	for i := range pgNotifications {
		pg := &pgNotifications[i]
		records[i] = &domain.NotificationRecord{
			ID:        pg.ID,
			OrderID:   pg.OrderID,
			Codigo:    pg.Codigo,
			Kind:      pg.Kind,
			Message:   pg.Message,
			Status:    pg.Status,
			CreatedAt: pg.CreatedAt,
		}
	}
	return records, nil
}
