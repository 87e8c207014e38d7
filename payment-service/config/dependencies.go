package config

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/orderlab/order-system/payment-service/application"
	"github.com/orderlab/order-system/payment-service/domain"
	"github.com/orderlab/order-system/payment-service/handlers"
	"github.com/orderlab/order-system/payment-service/infrastructure"
	"github.com/orderlab/order-system/shared/messaging"
)

type Dependencies struct {
	// Database (nil when the in-memory store is selected)
	DB *sqlx.DB

	// Repositories
	PaymentRepository domain.PaymentRepository

	// Use Cases
	ProcessOrderCreated   *application.ProcessOrderCreated
	ProcessPaymentRequest *application.ProcessPaymentRequest
	ListPayments          *application.ListPayments
	GetPayment            *application.GetPayment

	// HTTP Handlers
	PaymentHandlers *handlers.PaymentHandlers

	// Event Handlers
	PaymentEventHandlers *handlers.PaymentEventHandlers

	// Infrastructure
	Publisher *messaging.Publisher
	Registry  *messaging.Registry
}

func BuildDependencies(config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	// Initialize the payment record store
	if config.Database.URL != "" {
		db, err := sqlx.Connect("postgres", config.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.DB = db
		deps.PaymentRepository = infrastructure.NewPostgresPaymentRepository(db)
	} else {
		deps.PaymentRepository = infrastructure.NewMemoryPaymentRepository()
	}

	// Initialize the outcome publisher
	publishTopology := messaging.Topology{
		Exchanges: []messaging.ExchangeSpec{
			{Name: config.Broker.PaymentExchange, Kind: "fanout", Durable: true},
		},
	}
	deps.Publisher = messaging.NewPublisher(config.Broker.URL,
		messaging.WithPublishAttempts(config.Broker.PublishAttempts),
		messaging.WithPublishDelay(config.Broker.PublishDelay),
		messaging.WithPublisherTopology(publishTopology),
	)

	// Initialize use cases
	processor := infrastructure.NewSimulatedProcessor(config.Processor.FailureRate, config.Processor.Seed)
	deps.ProcessOrderCreated = application.NewProcessOrderCreated(
		deps.PaymentRepository, processor, deps.Publisher,
		application.ProcessOrderCreatedConfig{
			Exchange:    config.Broker.PaymentExchange,
			ServiceName: config.ServiceName,
		},
	)
	deps.ProcessPaymentRequest = application.NewProcessPaymentRequest(deps.PaymentRepository, processor)
	deps.ListPayments = application.NewListPayments(deps.PaymentRepository)
	deps.GetPayment = application.NewGetPayment(deps.PaymentRepository)

	// Initialize event handlers and the consumer for incoming orders
	deps.PaymentEventHandlers = handlers.NewPaymentEventHandlers(deps.ProcessOrderCreated)

	consumeTopology := messaging.Topology{
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
	orderConsumer := messaging.NewConsumer(
		config.Broker.URL,
		config.Broker.OrderQueue,
		messaging.EnvelopeHandler(deps.PaymentEventHandlers),
		messaging.WithBootstrapAttempts(config.Broker.BootstrapAttempts),
		messaging.WithBootstrapDelay(config.Broker.BootstrapDelay),
		messaging.WithConsumerTopology(consumeTopology),
	)

	deps.Registry = messaging.NewRegistry()
	deps.Registry.Register("incoming-orders", orderConsumer)

	// Initialize HTTP handlers
	deps.PaymentHandlers = handlers.NewPaymentHandlers(deps.ListPayments, deps.GetPayment, deps.ProcessPaymentRequest, deps.Registry)

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
