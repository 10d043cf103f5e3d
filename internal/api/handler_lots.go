package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLots handles the GET /api/lots request: active lots with at least one
// free spot.
func (h *Handler) GetLots(c *gin.Context) {
	listings, err := h.store.ListAvailableLots(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}
