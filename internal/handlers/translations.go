package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/parole-du-moment-api/internal/repository"
)

// TranslationsHandler handles translation listing endpoints
type TranslationsHandler struct {
	translations repository.TranslationRepository
}

// NewTranslationsHandler creates a new translations handler
func NewTranslationsHandler(translations repository.TranslationRepository) *TranslationsHandler {
	return &TranslationsHandler{
		translations: translations,
	}
}

// ListTranslations handles GET /translations - the supported Bible translations
func (h *TranslationsHandler) ListTranslations(c echo.Context) error {
	ctx := c.Request().Context()

	translations, err := h.translations.ListAll(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Listing translations failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, translations)
}

// RegisterRoutes registers translation routes
func (h *TranslationsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/translations", h.ListTranslations)
}
