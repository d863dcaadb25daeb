package handler

import (
	"trivia-token-service/controller/respond"
	"trivia-token-service/registry"
	"trivia-token-service/service/catalog_service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler catalog and identifier handler
type CatalogHandler struct {
	catalogService *catalog_service.CatalogService
}

// NewCatalogHandler create catalog handler instance
func NewCatalogHandler(catalogService *catalog_service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GetAvailability available designs of a category
// @Summary Catalog availability
// @Tags Catalog
// @Produce json
// @Param categoryId path string true "Category slug"
// @Success 200 {object} respond.Response{data=respond.AvailabilityResponse}
// @Router /api/v1/catalog/{categoryId}/availability [get]
func (h *CatalogHandler) GetAvailability(c *gin.Context) {
	categoryID := c.Param("categoryId")
	if !registry.IsCategorySlug(categoryID) {
		respond.InvalidParam(c, "unknown category: "+categoryID)
		return
	}
	n, err := h.catalogService.Availability(c.Request.Context(), categoryID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, respond.AvailabilityResponse{CategoryID: categoryID, Available: n})
}

// ListCategories registered categories
// @Summary Categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} respond.Response{data=[]registry.Category}
// @Router /api/v1/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	respond.Success(c, registry.Categories())
}

// ReleaseItem return a reserved item to the pool
// @Summary Release catalog item
// @Tags Admin
// @Produce json
// @Param itemId path string true "Catalog item ID"
// @Success 200 {object} respond.Response
// @Router /api/v1/admin/catalog/{itemId}/release [post]
func (h *CatalogHandler) ReleaseItem(c *gin.Context) {
	if err := h.catalogService.Release(c.Request.Context(), c.Param("itemId")); err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, nil)
}

// InspectIdentifier parse an asset identifier
// @Summary Inspect identifier
// @Description Parse a standard or legacy identifier; invalid strings return valid=false
// @Tags Identifier
// @Produce json
// @Param identifier path string true "Asset identifier"
// @Success 200 {object} respond.Response{data=respond.IdentifierResponse}
// @Router /api/v1/identifiers/{identifier} [get]
func (h *CatalogHandler) InspectIdentifier(c *gin.Context) {
	respond.Success(c, respond.ToIdentifierResponse(c.Param("identifier")))
}
