package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-board/internal/config"
	"github.com/justsurfingit/job-board/internal/database"
	"github.com/justsurfingit/job-board/internal/handlers"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/services"
)

func main() {
	envFile := flag.String("env", ".env", "path to the environment file")
	flag.Parse()

	// 1. Load Environment Variables
	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal(err)
	}
	appLogger := logger.New(logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Format:  cfg.Log.Format,
		Service: "job-api",
	})

	// 2. Database Connection
	db, err := database.Connect(cfg.Database.DSN(), appLogger)
	if err != nil {
		log.Fatal(err)
	}

	// 3. Initialize Core Services (Dependencies)
	gen, err := services.NewGeminiGenerator(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		if !errors.Is(err, services.ErrLLMUnavailable) {
			log.Fatal(err)
		}
		appLogger.Warn("GEMINI_API_KEY is empty, job extraction is disabled")
	}
	llmService := services.NewLLMService(gen, appLogger)
	jobService := services.NewJobService(db, appLogger)

	// 4. Initialize Handlers
	jobHandler := handlers.NewJobHandler(llmService, jobService, appLogger)

	// 5. Setup Router & CORS
	r := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // For development only
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-User-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	// 6. Define Routes
	handlers.RegisterRoutes(r.Group("/api"), jobHandler, cfg.Server.DefaultUserID)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("🚀 Server starting on port %d...", cfg.Server.Port)
	slog.Info("listening", slog.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
