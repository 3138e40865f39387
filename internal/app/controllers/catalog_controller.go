package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/diploma-registry/internal/app/models/dto"
	"github.com/yigit/diploma-registry/internal/catalog"
)

// CatalogController serves the raw faculty catalog
type CatalogController struct {
	catalog *catalog.Catalog
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(cat *catalog.Catalog) *CatalogController {
	return &CatalogController{catalog: cat}
}

// GetCatalog handles GET /catalog
// @Summary Catalog keyed by faculty
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]catalog.Faculty
// @Router /catalog [get]
func (cc *CatalogController) GetCatalog(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, cc.catalog.Map())
}

// ListCatalog handles GET /catalog/list
// @Summary Catalog as an ordered list
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.CatalogFaculty
// @Router /catalog/list [get]
func (cc *CatalogController) ListCatalog(ctx *gin.Context) {
	faculties := cc.catalog.Faculties()
	out := make([]dto.CatalogFaculty, 0, len(faculties))
	for _, f := range faculties {
		out = append(out, dto.CatalogFaculty{Key: f.Key, Name: f.Name, Specialties: f.Specialties})
	}
	ctx.JSON(http.StatusOK, out)
}
