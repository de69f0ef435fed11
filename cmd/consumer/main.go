package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thep200/github-user-dashboard/cfg"
	"github.com/thep200/github-user-dashboard/internal/dashboard"
	"github.com/thep200/github-user-dashboard/internal/fetcher"
	githubapi "github.com/thep200/github-user-dashboard/internal/github_api"
	"github.com/thep200/github-user-dashboard/internal/model"
	"github.com/thep200/github-user-dashboard/pkg/db"
	"github.com/thep200/github-user-dashboard/pkg/kafka"
	"github.com/thep200/github-user-dashboard/pkg/log"
)

// RefreshMessage names the user a producer wants re-fetched.
type RefreshMessage struct {
	Login string `json:"login"`
}

func main() {
	// Load configuration
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	var logger log.Logger
	if config.App.LogFile != "" {
		logger, _ = log.NewFileLogger(config.App.LogFile)
	} else {
		logger, _ = log.NewCslLogger()
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup database and pipeline
	mysql, _ := db.NewMysql(config)
	userMd, _ := model.NewUser(config, logger, mysql)
	caller := githubapi.NewCaller(logger, config)
	userFetcher, _ := fetcher.NewFetcher(logger, config, caller)

	if err := mysql.Migrate(userMd); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	producer, err := kafka.NewProducer(config, logger, config.Kafka.Producer.TopicUserFetched)
	if err != nil {
		logger.Error(ctx, "Kafka is required for the consumer: %v", err)
		os.Exit(1)
	}
	defer producer.Close()

	service, _ := dashboard.NewService(logger, config, userMd, userFetcher, producer)

	consumer, err := kafka.NewConsumer(config, logger, config.Kafka.Consumer.TopicRefresh, "user-refresh-group")
	if err != nil {
		logger.Error(ctx, "Failed to create consumer: %v", err)
		os.Exit(1)
	}
	defer consumer.Close()

	// Register handler for refresh messages
	consumer.RegisterHandler("refresh", func(data []byte) error {
		var msg RefreshMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal refresh message: %w", err)
		}
		if msg.Login == "" {
			return fmt.Errorf("refresh message without login")
		}

		if _, err := service.RefreshUser(ctx, msg.Login); err != nil {
			return fmt.Errorf("failed to refresh user %s: %w", msg.Login, err)
		}
		return nil
	})

	// Start consumer in a goroutine
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Refresh consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Refresh consumer started successfully")

	// Wait for termination signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
}
