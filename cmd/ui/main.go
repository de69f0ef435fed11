package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/github-user-dashboard/cfg"
	"github.com/thep200/github-user-dashboard/internal/dashboard"
	"github.com/thep200/github-user-dashboard/internal/fetcher"
	githubapi "github.com/thep200/github-user-dashboard/internal/github_api"
	"github.com/thep200/github-user-dashboard/internal/model"
	"github.com/thep200/github-user-dashboard/internal/ui"
	"github.com/thep200/github-user-dashboard/pkg/db"
	"github.com/thep200/github-user-dashboard/pkg/kafka"
	applog "github.com/thep200/github-user-dashboard/pkg/log"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 0, "Port for the dashboard server (0 uses the config value)")
	logFile := flag.String("log", "", "Log file path (empty uses the config value, console when unset)")
	flag.Parse()

	// Setup dependencies
	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	config, _ := loader.Load()
	mysql, _ := db.NewMysql(config)

	logPath := *logFile
	if logPath == "" {
		logPath = config.App.LogFile
	}
	var logger applog.Logger
	if logPath != "" {
		logger, _ = applog.NewFileLogger(logPath)
	} else {
		logger, _ = applog.NewCslLogger()
	}
	userMd, _ := model.NewUser(config, logger, mysql)
	caller := githubapi.NewCaller(logger, config)
	userFetcher, _ := fetcher.NewFetcher(logger, config, caller)

	if err := mysql.Migrate(userMd); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var producer dashboard.Publisher
	if len(config.Kafka.Brokers) > 0 {
		p, err := kafka.NewProducer(config, logger, config.Kafka.Producer.TopicUserFetched)
		if err != nil {
			logger.Warn(ctx, "Kafka disabled: %v", err)
		} else {
			producer = p
			defer p.Close()
		}
	}

	service, _ := dashboard.NewService(logger, config, userMd, userFetcher, producer)

	listenPort := *port
	if listenPort == 0 {
		listenPort = config.Ui.Port
	}

	// Create and run the server
	server, err := ui.NewServer(logger, config, service, listenPort)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Run server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error(ctx, "Server failed to start: %v", err)
			os.Exit(1)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for termination signal
	<-stop

	// Create a context with timeout for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Gracefully shutdown the server
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during server shutdown: %v", err)
	}

	logger.Info(ctx, "Server shut down gracefully")
}
