package main

import (
	"context"
	"fmt"
	"log"
	"mentorship-service/internal/config"
	"mentorship-service/internal/database/mongo"
	"mentorship-service/internal/database/redis"
	"mentorship-service/internal/event"
	"mentorship-service/internal/handlers"
	"mentorship-service/internal/matching"
	"mentorship-service/internal/repository"
	"mentorship-service/internal/service"
	"mentorship-service/pkg/discovery"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/evolvia", "log", "mentorship_service")
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.ServiceConfig

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"*"},
	}))

	app.Get("/health", func(c fiber.Ctx) error {
		if !mongo.IsConnected() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Mentorship Service is unhealthy")
		}
		return c.Status(fiber.StatusOK).SendString("Mentorship Service is healthy")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Initialize repositories
	userRepo := repository.NewUserRepository(mongo.Mongo_Database, redis.Redis_Client)
	actionRepo := repository.NewActionRepository(mongo.Mongo_Database)
	connectionRepo := repository.NewConnectionRepository(mongo.Mongo_Database)
	roomRepo := repository.NewRoomRepository(mongo.Mongo_Database)
	messageRepo := repository.NewMessageRepository(mongo.Mongo_Database)

	// Create database indexes
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	for name, createIndexes := range map[string]func(context.Context) error{
		"users":             userRepo.CreateIndexes,
		"discovery_actions": actionRepo.CreateIndexes,
		"connections":       connectionRepo.CreateIndexes,
		"chat_rooms":        roomRepo.CreateIndexes,
		"messages":          messageRepo.CreateIndexes,
	} {
		if err := createIndexes(ctx); err != nil {
			log.Printf("Warning: Failed to create indexes for %s: %v", name, err)
		}
	}
	cancel()
	log.Println("Database index setup complete")

	var publisher service.EventPublisher
	eventPublisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI)
	if err != nil {
		log.Printf("Warning: Failed to initialize event publisher: %v", err)
	} else {
		publisher = eventPublisher
	}

	eventConsumer, err := event.NewEventConsumer(cfg.RabbitMQ.URI, userRepo)
	if err != nil {
		log.Printf("Warning: Failed to initialize event consumer: %v", err)
	} else {
		if err := eventConsumer.Start(); err != nil {
			log.Printf("Warning: Failed to start event consumer: %v", err)
			eventConsumer.Close()
		} else {
			log.Println("Successfully started event consumer")
			defer eventConsumer.Close()
		}
	}

	// Initialize services
	selector := matching.NewSelector()
	discoveryService := service.NewDiscoveryService(userRepo, actionRepo, connectionRepo, selector)
	connectionService := service.NewConnectionService(userRepo, actionRepo, connectionRepo, roomRepo, messageRepo, publisher)
	chatService := service.NewChatService(connectionRepo, roomRepo, messageRepo, publisher)

	// Initialize and register handlers
	discoveryHandler := handlers.NewDiscoveryHandler(discoveryService)
	discoveryHandler.RegisterRoutes(app)

	connectionHandler := handlers.NewConnectionHandler(connectionService, chatService)
	connectionHandler.RegisterRoutes(app)

	shutdownChan := make(chan os.Signal, 1)
	doneChan := make(chan bool, 1)

	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := app.Listen(fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
		doneChan <- true
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	// Close event publisher
	if eventPublisher != nil {
		if err := eventPublisher.Close(); err != nil {
			log.Printf("Error closing event publisher: %v", err)
		}
	}

	// Disconnect from MongoDB
	mongo.DisconnectMongo()

	// Deregister from service discovery
	if discovery.ServiceDiscovery != nil {
		if err := discovery.ServiceDiscovery.Deregister(); err != nil {
			log.Printf("Error deregistering from service discovery: %v", err)
		}
	}

	<-doneChan
	log.Println("Server shutdown complete")
}
