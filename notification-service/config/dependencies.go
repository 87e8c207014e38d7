package config

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/orderlab/order-system/notification-service/application"
	"github.com/orderlab/order-system/notification-service/domain"
	"github.com/orderlab/order-system/notification-service/handlers"
	"github.com/orderlab/order-system/notification-service/infrastructure"
	"github.com/orderlab/order-system/shared/messaging"
)

type Dependencies struct {
	// Database (nil when the in-memory store is selected)
	DB *sqlx.DB

	// Repositories
	NotificationRepository domain.NotificationRepository

	// Use Cases
	RecordOrderNotification   *application.RecordOrderNotification
	RecordPaymentNotification *application.RecordPaymentNotification
	ListNotifications         *application.ListNotifications

	// HTTP Handlers
	NotificationHandlers *handlers.NotificationHandlers

	// Event Handlers
	NotificationEventHandlers *handlers.NotificationEventHandlers

	// Infrastructure
	Registry *messaging.Registry
}

func BuildDependencies(config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	// Initialize the notification store
	if config.Database.URL != "" {
		db, err := sqlx.Connect("postgres", config.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.DB = db
		deps.NotificationRepository = infrastructure.NewPostgresNotificationRepository(db)
	} else {
		deps.NotificationRepository = infrastructure.NewMemoryNotificationRepository()
	}

	// Initialize use cases
	deps.RecordOrderNotification = application.NewRecordOrderNotification(deps.NotificationRepository)
	deps.RecordPaymentNotification = application.NewRecordPaymentNotification(deps.NotificationRepository)
	deps.ListNotifications = application.NewListNotifications(deps.NotificationRepository)

	// Initialize event handlers; one consumer per stream, both feeding
	// the same handler.
	deps.NotificationEventHandlers = handlers.NewNotificationEventHandlers(
		deps.RecordOrderNotification,
		deps.RecordPaymentNotification,
	)

	orderTopology := messaging.Topology{
		Exchanges: []messaging.ExchangeSpec{
			{Name: config.Broker.OrderExchange, Kind: "fanout", Durable: true},
		},
		Queues: []messaging.QueueSpec{
			{Name: config.Broker.OrderQueue, Durable: true},
		},
		Bindings: []messaging.BindingSpec{
			{Exchange: config.Broker.OrderExchange, Queue: config.Broker.OrderQueue},
		},
	}
	paymentTopology := messaging.Topology{
		Exchanges: []messaging.ExchangeSpec{
			{Name: config.Broker.PaymentExchange, Kind: "fanout", Durable: true},
		},
		Queues: []messaging.QueueSpec{
			{Name: config.Broker.PaymentQueue, Durable: true},
		},
		Bindings: []messaging.BindingSpec{
			{Exchange: config.Broker.PaymentExchange, Queue: config.Broker.PaymentQueue},
		},
	}

	orderConsumer := messaging.NewConsumer(
		config.Broker.URL,
		config.Broker.OrderQueue,
		messaging.EnvelopeHandler(deps.NotificationEventHandlers),
		messaging.WithBootstrapAttempts(config.Broker.BootstrapAttempts),
		messaging.WithBootstrapDelay(config.Broker.BootstrapDelay),
		messaging.WithConsumerTopology(orderTopology),
	)
	paymentConsumer := messaging.NewConsumer(
		config.Broker.URL,
		config.Broker.PaymentQueue,
		messaging.EnvelopeHandler(deps.NotificationEventHandlers),
		messaging.WithBootstrapAttempts(config.Broker.BootstrapAttempts),
		messaging.WithBootstrapDelay(config.Broker.BootstrapDelay),
		messaging.WithConsumerTopology(paymentTopology),
	)

	deps.Registry = messaging.NewRegistry()
	deps.Registry.Register("order-confirmations", orderConsumer)
	deps.Registry.Register("payment-results", paymentConsumer)

	// Initialize HTTP handlers
	deps.NotificationHandlers = handlers.NewNotificationHandlers(deps.ListNotifications, deps.Registry)

	return deps, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
