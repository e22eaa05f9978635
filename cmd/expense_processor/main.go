package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/storefront-debt-ledger/internal/config"
	"github.com/storefront-debt-ledger/internal/data/postgres"
	"github.com/storefront-debt-ledger/internal/expense_processor/consumer"
	"github.com/storefront-debt-ledger/internal/expense_processor/outbox_poller"
	"github.com/storefront-debt-ledger/internal/expense_processor/service"
	"github.com/storefront-debt-ledger/internal/ledger"
	"github.com/storefront-debt-ledger/internal/logger"
	"github.com/storefront-debt-ledger/internal/platform/messaging/consumers"
	"github.com/storefront-debt-ledger/internal/platform/messaging/producers"
	"github.com/storefront-debt-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("expense_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Expense Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewDebtAccountRepository(log, postgresDB)
	paymentRepo := postgres.NewPaymentRepository(log, postgresDB)
	expenseRepo := postgres.NewExpenseRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	personRepo := postgres.NewPersonMappingRepository(log, postgresDB)

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Keep the
	// interface nil in that case so the handler's nil check works.
	var dlqPublisher producers.DeadLetterPublisher
	if dlqProducer != nil {
		dlqPublisher = dlqProducer
	}

	// Initialize Kafka producer for payment-recorded events
	paymentProducer, err := producers.NewPaymentEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize payment event Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize the ledger service shared with the API gateway
	ledgerService := ledger.NewPostingService(
		postgresDB,
		accountRepo,
		paymentRepo,
		expenseRepo,
		outboxRepo,
		personRepo,
		cfg.Postgres.QueryTimeout,
		cfg.Ledger.MaxConflictRetries,
		log,
	)

	// Wrap event processing in a worker pool
	baseService := service.NewProcessingService(ledgerService, log)
	processingService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize expense event handler
	expenseEventHandler := consumer.NewExpenseEventHandler(
		log,
		processingService,
		dlqPublisher,
	)

	// Initialize outbox poller
	paymentPublisher := outbox_poller.NewPaymentPublisher(
		outboxRepo,
		paymentProducer,
		log,
	)
	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		outboxRepo,
		paymentPublisher,
		log,
	)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.ExpenseTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.ExpenseTopic, cfg.Kafka.ConsumerGroup, expenseEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool
	log.Info("Shutting down worker pool", "running_workers", processingService.Running())
	processingService.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close Kafka producers
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}
	if err = paymentProducer.Close(); err != nil {
		log.Error("Error closing payment event Kafka producer", "error", err)
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Final status
	if serviceErr != nil {
		log.Error("Expense Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Expense Processor shutdown completed with errors")
	} else {
		log.Info("Expense Processor shutdown completed successfully")
	}
}
