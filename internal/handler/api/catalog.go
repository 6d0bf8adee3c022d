package api

import (
	"net/http"

	"studio-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogQueries queries.CatalogQueries
}

func NewCatalogHandler(catalogQueries queries.CatalogQueries) *CatalogHandler {
	return &CatalogHandler{catalogQueries: catalogQueries}
}

// @Summary List services
// @Description List active services available for booking
// @Tags catalog
// @Produce json
// @Success 200 {array} queries.ServiceView
// @Router /services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	views, err := h.catalogQueries.ListServices(c.Request.Context(), true)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Summary List addons
// @Description List active addons with their category applicability
// @Tags catalog
// @Produce json
// @Success 200 {array} queries.CatalogAddonView
// @Router /addons [get]
func (h *CatalogHandler) ListAddons(c *gin.Context) {
	views, err := h.catalogQueries.ListAddons(c.Request.Context(), true)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
