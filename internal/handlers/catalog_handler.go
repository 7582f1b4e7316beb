package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trimwise/trimwise-api/internal/models"
)

// CatalogHandler serves the static form catalogs: the wizard variants render
// their state, category and provider selects from this endpoint so the lists
// live in one place.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	// The catalog is static per release; let the CDN hold it for a while.
	c.Header("Cache-Control", "public, max-age=3600")

	c.JSON(http.StatusOK, gin.H{
		"states":     models.USStates(),
		"categories": models.BillCategories,
		"providers":  models.ProvidersByCategory,
	})
}
