package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/orderlab/order-system/order-service/domain"
	"github.com/orderlab/order-system/shared/models"
	"github.com/orderlab/order-system/shared/saga"
	"github.com/pkg/errors"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// postgresOrder represents an order row in the database
type postgresOrder struct {
	ID        int64     `db:"id"`
	Codigo    string    `db:"codigo"`
	Valor     int64     `db:"valor_cents"`
	Data      time.Time `db:"data"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const orderColumns = `id, codigo, valor_cents, data, status, created_at, updated_at`

// Create inserts a new order and assigns its generated ID.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (codigo, valor_cents, data, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		order.Codigo,
		order.Valor.Cents(),
		order.Data,
		string(order.Status),
		order.Timestamps.CreatedAt,
		order.Timestamps.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return errors.Wrap(err, "failed to insert order")
	}

	return nil
}

// FindByID finds an order by its primary key.
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var pgOrder postgresOrder
	err := r.db.GetContext(ctx, &pgOrder, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to find order")
	}

	return r.toDomain(&pgOrder), nil
}

// FindByCodigo finds an order by its business code.
func (r *PostgresOrderRepository) FindByCodigo(ctx context.Context, codigo string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE codigo = $1`

	var pgOrder postgresOrder
	err := r.db.GetContext(ctx, &pgOrder, query, codigo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to find order by codigo")
	}

	return r.toDomain(&pgOrder), nil
}

// List returns all orders in creation order.
func (r *PostgresOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY id`

	var pgOrders []postgresOrder
	err := r.db.SelectContext(ctx, &pgOrders, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	orders := make([]*domain.Order, len(pgOrders))
	for i := range pgOrders {
		orders[i] = r.toDomain(&pgOrders[i])
	}
	return orders, nil
}

// UpdateStatus applies the transition function under a row lock so that
// concurrent consumers serialize on the same order.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id int64, next func(saga.Status) saga.Status) (*domain.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	var pgOrder postgresOrder
	err = tx.GetContext(ctx, &pgOrder, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to lock order")
	}

	order := r.toDomain(&pgOrder)
	order.Status = next(order.Status)
	order.Timestamps = order.Timestamps.Update()

	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(order.Status), order.Timestamps.UpdatedAt, order.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update order status")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit status update")
	}

	return order, nil
}

// CountByStatus aggregates order counts grouped by status.
func (r *PostgresOrderRepository) CountByStatus(ctx context.Context) (map[saga.Status]int64, error) {
	query := `SELECT status, COUNT(*) AS total FROM orders GROUP BY status`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count orders by status")
	}
	defer rows.Close()

	counts := make(map[saga.Status]int64)
	for rows.Next() {
		var status string
		var total int64
		if err := rows.Scan(&status, &total); err != nil {
			return nil, errors.Wrap(err, "failed to scan status count")
		}
		counts[saga.Status(status)] = total
	}
	return counts, rows.Err()
}

// toDomain converts a database row into the domain order
func (r *PostgresOrderRepository) toDomain(pgOrder *postgresOrder) *domain.Order {
	return &domain.Order{
		ID:     pgOrder.ID,
		Codigo: pgOrder.Codigo,
		Valor:  models.Money(pgOrder.Valor),
		Data:   pgOrder.Data,
		Status: saga.Status(pgOrder.Status),
		Timestamps: models.Timestamps{
			CreatedAt: pgOrder.CreatedAt,
			UpdatedAt: pgOrder.UpdatedAt,
		},
	}
}
