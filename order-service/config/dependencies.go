package config

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/orderlab/order-system/order-service/application"
	"github.com/orderlab/order-system/order-service/domain"
	"github.com/orderlab/order-system/order-service/handlers"
	"github.com/orderlab/order-system/order-service/infrastructure"
	"github.com/orderlab/order-system/shared/messaging"
)

type Dependencies struct {
	// Database (nil when the in-memory store is selected)
	DB *sqlx.DB

	// Repositories
	OrderRepository domain.OrderRepository

	// Use Cases
	CreateOrder         *application.CreateOrder
	GetOrder            *application.GetOrder
	ListOrders          *application.ListOrders
	StatusSummary       *application.StatusSummary
	ApplyPaymentOutcome *application.ApplyPaymentOutcome

	// HTTP Handlers
	OrderHandlers *handlers.OrderHandlers

	// Event Handlers
	OrderEventHandlers *handlers.OrderEventHandlers

	// Infrastructure
	Publisher *messaging.Publisher
	Registry  *messaging.Registry
}

func BuildDependencies(config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	// Initialize the order store
	if config.Database.URL != "" {
		db, err := sqlx.Connect("postgres", config.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.DB = db
		deps.OrderRepository = infrastructure.NewPostgresOrderRepository(db)
	} else {
		deps.OrderRepository = infrastructure.NewMemoryOrderRepository()
	}

	// Initialize the publisher. It owns the topology this service
	// produces into, so the exchange exists before the first publish.
	publishTopology := messaging.Topology{
		Exchanges: []messaging.ExchangeSpec{
			{Name: config.Broker.OrderExchange, Kind: "fanout", Durable: true},
		},
	}
	deps.Publisher = messaging.NewPublisher(config.Broker.URL,
		messaging.WithPublishAttempts(config.Broker.PublishAttempts),
		messaging.WithPublishDelay(config.Broker.PublishDelay),
		messaging.WithPublisherTopology(publishTopology),
	)

	// Initialize use cases
	var payments application.PaymentCaller
	if config.Pattern == application.PatternSync {
		payments = infrastructure.NewPaymentClient(config.Payment.ServiceURL, config.Payment.Timeout)
	}

	deps.CreateOrder = application.NewCreateOrder(deps.OrderRepository, deps.Publisher, payments, application.CreateOrderConfig{
		Exchange:       config.Broker.OrderExchange,
		ServiceName:    config.ServiceName,
		ServiceVersion: config.ServiceVersion,
		Pattern:        config.Pattern,
	})
	deps.GetOrder = application.NewGetOrder(deps.OrderRepository)
	deps.ListOrders = application.NewListOrders(deps.OrderRepository)
	deps.StatusSummary = application.NewStatusSummary(deps.OrderRepository)
	deps.ApplyPaymentOutcome = application.NewApplyPaymentOutcome(deps.OrderRepository)

	// Initialize event handlers and the consumer for payment outcomes
	deps.OrderEventHandlers = handlers.NewOrderEventHandlers(deps.ApplyPaymentOutcome)

	consumeTopology := messaging.Topology{
		Exchanges: []messaging.ExchangeSpec{
			{Name: config.Broker.PaymentExchange, Kind: "fanout", Durable: true},
		},
		Queues: []messaging.QueueSpec{
			{Name: config.Broker.PaymentUpdateQueue, Durable: true},
		},
		Bindings: []messaging.BindingSpec{
			{Exchange: config.Broker.PaymentExchange, Queue: config.Broker.PaymentUpdateQueue},
		},
	}
	paymentConsumer := messaging.NewConsumer(
		config.Broker.URL,
		config.Broker.PaymentUpdateQueue,
		messaging.EnvelopeHandler(deps.OrderEventHandlers),
		messaging.WithBootstrapAttempts(config.Broker.BootstrapAttempts),
		messaging.WithBootstrapDelay(config.Broker.BootstrapDelay),
		messaging.WithConsumerTopology(consumeTopology),
	)

	deps.Registry = messaging.NewRegistry()
	deps.Registry.Register("payment-updates", paymentConsumer)

	// Initialize HTTP handlers
	deps.OrderHandlers = handlers.NewOrderHandlers(
		deps.CreateOrder,
		deps.GetOrder,
		deps.ListOrders,
		deps.StatusSummary,
		deps.Registry,
	)

	return deps, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
