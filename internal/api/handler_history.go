package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tank-status-backend/internal/model"
)

// GetTankHistory handles GET /api/tanks/:id/history?limit=N.
func (h *Handler) GetTankHistory(c *gin.Context) {
	id, ok := tankIDParam(c)
	if !ok {
		return
	}

	// Reject lookups for unknown tanks rather than serving an empty
	// series for an id that never existed.
	if _, err := h.store.GetTank(c.Request.Context(), id); err != nil {
		storeError(c, err)
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	samples, err := h.store.ListHistory(c.Request.Context(), id, limit)
	if err != nil {
		storeError(c, err)
		return
	}
	if samples == nil {
		samples = []model.TankHistory{}
	}
	c.JSON(http.StatusOK, samples)
}
