package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-hrms/internal/authz"
	"go-hrms/internal/events"
	"go-hrms/internal/leavebalance"
	"go-hrms/internal/messaging/kafka/consumer"
	"go-hrms/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer subscribes to the employee lifecycle topic and seeds
// leave ledgers for new hires.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	gate, err := authz.NewService()
	if err != nil {
		return err
	}

	balanceRepo := leavebalance.NewRepository(gormDB)
	balanceService := leavebalance.NewService(gormDB, balanceRepo, gate)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.EmployeeOnboardedTopic,
		GroupID:        "go-hrms-leave-balance",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeEmployeeLifecycle(ctx, reader, balanceService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
