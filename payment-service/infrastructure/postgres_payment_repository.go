package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/orderlab/order-system/payment-service/domain"
	"github.com/orderlab/order-system/shared/models"
	"github.com/pkg/errors"
)

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	db *sqlx.DB
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(db *sqlx.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

// postgresPayment represents a payment record row in the database
type postgresPayment struct {
	ID        int64     `db:"id"`
	OrderID   int64     `db:"order_id"`
	Codigo    string    `db:"codigo"`
	Valor     int64     `db:"valor_cents"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// Save inserts a payment record. Records are never updated.
func (r *PostgresPaymentRepository) Save(ctx context.Context, record *domain.PaymentRecord) error {
	query := `
		INSERT INTO payments (order_id, codigo, valor_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		record.OrderID,
		record.Codigo,
		record.Valor.Cents(),
		record.Status,
		record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return errors.Wrap(err, "failed to insert payment record")
	}

	return nil
}

// FindByID finds a payment record by its primary key.
func (r *PostgresPaymentRepository) FindByID(ctx context.Context, id int64) (*domain.PaymentRecord, error) {
	query := `
		SELECT id, order_id, codigo, valor_cents, status, created_at
		FROM payments WHERE id = $1`

	var pgPayment postgresPayment
	err := r.db.GetContext(ctx, &pgPayment, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, errors.Wrap(err, "failed to find payment record")
	}

	return r.toDomain(&pgPayment), nil
}

// List returns all payment records in processing order.
func (r *PostgresPaymentRepository) List(ctx context.Context) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT id, order_id, codigo, valor_cents, status, created_at
		FROM payments ORDER BY id`

	var pgPayments []postgresPayment
	err := r.db.SelectContext(ctx, &pgPayments, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list payment records")
	}

	records := make([]*domain.PaymentRecord, len(pgPayments))
	for i := range pgPayments {
		records[i] = r.toDomain(&pgPayments[i])
	}
	return records, nil
}

// toDomain converts a database row into the domain record
func (r *PostgresPaymentRepository) toDomain(pgPayment *postgresPayment) *domain.PaymentRecord {
	return &domain.PaymentRecord{
		ID:        pgPayment.ID,
		OrderID:   pgPayment.OrderID,
		Codigo:    pgPayment.Codigo,
		Valor:     models.Money(pgPayment.Valor),
		Status:    pgPayment.Status,
		CreatedAt: pgPayment.CreatedAt,
	}
}
