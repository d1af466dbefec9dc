// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"agrly/cmd"
	"agrly/internal/data/repository"
	"agrly/internal/wire"
	"agrly/internal/worker"
	"agrly/pkg/database"
	"agrly/pkg/events"
	"agrly/pkg/utils"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, config, logger)

	// Kafka is optional: with no brokers configured the outbox worker still
	// projects rent history, it just skips publishing
	var publisher events.Publisher
	if len(config.Kafka.Brokers) > 0 {
		kafka, err := events.NewKafkaPublisher(config.Kafka.Brokers)
		if err != nil {
			logger.Fatal("Failed to connect to Kafka", zap.Error(err))
		}
		defer kafka.Close()
		publisher = kafka
		logger.Info("Kafka producer connected", zap.Strings("brokers", config.Kafka.Brokers))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the outbox worker alongside the API
	outbox := worker.NewOutboxWorker(repos, publisher, config, logger)
	go outbox.Run(ctx)

	// Wire all dependencies
	app := wire.Wiring(repos, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(ctx, app.Router, config.App.Port)
}
