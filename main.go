package main

import (
	"os"

	"sams/cmd"
	"sams/internal/container"
	"sams/internal/database"
	"sams/internal/logger"
	"sams/internal/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env first; system environment variables win. Missing .env is
	// fine outside development.
	_ = godotenv.Load()

	log := logger.NewLogger()
	defer log.Sync()

	if len(os.Args) > 1 {
		cmd.Execute()
		return
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := database.NewPostgresConnection(dbURL)
	if err != nil {
		log.Fatal("could not connect to the database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Connected to the database")

	appContainer := container.NewAppContainer(db, log)

	router := gin.Default()
	routes.RegisterRoutes(router, appContainer)

	host := os.Getenv("APP_HOST")
	if host == "" {
		host = ":8080"
	}

	log.Info("Starting server", zap.String("host", host))
	if err := router.Run(host); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
