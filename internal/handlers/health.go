package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/parole-du-moment-api/pkg/schema/db"
	"go.mongodb.org/mongo-driver/bson"
)

// HealthHandler handles health check endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthResponse is the response for basic health check
type HealthResponse struct {
	Status string `json:"status"`
}

// MongoHealthResponse is the response for the MongoDB health check
type MongoHealthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	VerseCount   int64  `json:"verse_count"`
	EmotionCount int64  `json:"emotion_count"`
	ThemeCount   int64  `json:"theme_count"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// MongoHealth handles GET /health/mongo
func (h *HealthHandler) MongoHealth(c echo.Context) error {
	if !db.MongoEnabled() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_configured",
			"error":  "MongoDB is not configured",
		})
	}

	database := db.GetMongo()
	if database == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  "MongoDB connection not available",
		})
	}

	ctx := c.Request().Context()
	verseCount, err := database.Collection("verses").CountDocuments(ctx, bson.M{})
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
	}
	emotionCount, _ := database.Collection("emotions").CountDocuments(ctx, bson.M{})
	themeCount, _ := database.Collection("themes").CountDocuments(ctx, bson.M{})

	return c.JSON(http.StatusOK, MongoHealthResponse{
		Status:       "connected",
		Database:     "mongo",
		VerseCount:   verseCount,
		EmotionCount: emotionCount,
		ThemeCount:   themeCount,
	})
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
	g.GET("/health/mongo", h.MongoHealth)
}
