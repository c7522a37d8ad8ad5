package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tank-status-backend/internal/report"
)

// GetReport handles GET /api/reports/:type with type one of status,
// history, maintenance. The body is CSV.
func (h *Handler) GetReport(c *gin.Context) {
	reportType := c.Param("type")
	ctx := c.Request.Context()

	var (
		body []byte
		err  error
	)
	switch reportType {
	case report.TypeStatus:
		tanks, listErr := h.store.ListTanks(ctx)
		if listErr != nil {
			storeError(c, listErr)
			return
		}
		body, err = report.Status(tanks)
	case report.TypeHistory:
		samples, listErr := h.store.ListHistory(ctx, 0, 0)
		if listErr != nil {
			storeError(c, listErr)
			return
		}
		body, err = report.History(samples)
	case report.TypeMaintenance:
		tasks, listErr := h.store.ListMaintenance(ctx, 0)
		if listErr != nil {
			storeError(c, listErr)
			return
		}
		body, err = report.Maintenance(tasks)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "report type must be one of status, history, maintenance"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(reportType)))
	c.Data(http.StatusOK, "text/csv", body)
}
