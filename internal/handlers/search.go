package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/parole-du-moment-api/internal/models"
	"github.com/parole-du-moment-api/internal/services"
	"github.com/parole-du-moment-api/internal/versions"
)

// SearchHandler handles verse retrieval endpoints
type SearchHandler struct {
	retriever *services.RetrieverService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(retriever *services.RetrieverService) *SearchHandler {
	return &SearchHandler{
		retriever: retriever,
	}
}

// SearchVerse handles POST /verse/search - best-verse retrieval
func (h *SearchHandler) SearchVerse(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.VerseSearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Text is required")
	}

	analysis := models.AnalysisResult{}
	if req.Analysis != nil {
		analysis = *req.Analysis
	}

	translation := versions.Resolve(req.Translation, req.Version, req.Language)

	result, err := h.retriever.FindBestVerse(ctx, req.Text, analysis, translation)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyQuery):
			return echo.NewHTTPError(http.StatusBadRequest, "Text cannot be empty")
		case errors.Is(err, services.ErrNoVerseFound):
			return echo.NewHTTPError(http.StatusNotFound, "No matching verse was found. Please rephrase your message.")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Verse retrieval failed: "+err.Error())
		}
	}

	resp := models.VerseSearchResponse{Verse: *result}
	if req.IncludeAnalysis && req.Analysis != nil {
		resp.Analysis = req.Analysis
	}
	return c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers search routes
func (h *SearchHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/verse/search", h.SearchVerse)
}
