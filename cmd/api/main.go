package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/parole-du-moment-api/internal/config"
	"github.com/parole-du-moment-api/internal/handlers"
	"github.com/parole-du-moment-api/internal/middleware"
	"github.com/parole-du-moment-api/internal/repository/mongodb"
	"github.com/parole-du-moment-api/internal/services"
	"github.com/parole-du-moment-api/pkg/schema/db"
	pkgservices "github.com/parole-du-moment-api/pkg/schema/services"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Get configuration
	cfg := config.GetConfig()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSMiddleware())

	// Initialize MongoDB
	ctx := context.Background()
	if err := db.InitMongo(ctx); err != nil {
		log.Fatalf("Failed to initialize MongoDB: %v", err)
	}
	log.Println("Database initialization complete")

	// Create repositories
	database := db.GetMongo()
	verseRepo := mongodb.NewVerseRepository(database)
	emotionRepo := mongodb.NewTaxonomyRepository(database, "emotions")
	themeRepo := mongodb.NewTaxonomyRepository(database, "themes")
	emotionLinkRepo := mongodb.NewLinkRepository(database, "verses_emotions", "emotion_id")
	themeLinkRepo := mongodb.NewLinkRepository(database, "verses_themes", "theme_id")
	translationRepo := mongodb.NewTranslationRepository(database)

	// Create the embeddings service. A failed backend degrades the engine to
	// lexical-only retrieval instead of aborting startup.
	embeddingsSvc := pkgservices.GetEmbeddingsService()
	vectorAvailable := true
	if err := pkgservices.GetInitError(); err != nil {
		log.Printf("Embeddings service unavailable, running lexical-only: %v", err)
		vectorAvailable = false
	}

	// Create services
	linkResolver := services.NewLinkResolver(emotionRepo, themeRepo, emotionLinkRepo, themeLinkRepo, cfg.Retriever)
	retrieverSvc := services.NewRetrieverService(verseRepo, linkResolver, embeddingsSvc, vectorAvailable, cfg.Retriever)

	// Create API group with prefix
	api := e.Group(cfg.APIPrefix)

	// Register handlers
	healthHandler := handlers.NewHealthHandler()
	healthHandler.RegisterRoutes(api)

	searchHandler := handlers.NewSearchHandler(retrieverSvc)
	searchHandler.RegisterRoutes(api)

	translationsHandler := handlers.NewTranslationsHandler(translationRepo)
	translationsHandler.RegisterRoutes(api)

	// Root health check
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"name":    cfg.APITitle,
			"version": cfg.APIVersion,
			"status":  "running",
		})
	})

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Starting %s v%s on %s", cfg.APITitle, cfg.APIVersion, addr)
		if err := e.Start(addr); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	if err := db.CloseMongo(shutdownCtx); err != nil {
		log.Printf("Error closing MongoDB: %v", err)
	}

	log.Println("Server stopped")
}
