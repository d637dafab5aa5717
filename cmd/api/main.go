package main

import (
	"context"
	"log"
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/JPostigo48/TI2project-backend/internal/auth"
	"github.com/JPostigo48/TI2project-backend/internal/config"
	"github.com/JPostigo48/TI2project-backend/internal/database"
	"github.com/JPostigo48/TI2project-backend/internal/routes"
	"github.com/JPostigo48/TI2project-backend/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	auth.Init(cfg.JWTSecret)

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to MongoDB
	client, err := database.ConnectMongoDB(cfg.MongoURI)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	mailer := utils.Mailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	}

	// Initialize router
	router := routes.SetupRouter(client, cfg.DatabaseName, mailer, logger)

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	// Wrap router with CORS
	handler := c.Handler(router)

	// Start server
	logger.Info("Server running", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
