package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tank-status-backend/internal/model"
)

type createMaintenanceRequest struct {
	Type          string    `json:"type" binding:"required"`
	ScheduledDate time.Time `json:"scheduledDate" binding:"required"`
	Technician    string    `json:"technician"`
	Notes         string    `json:"notes"`
}

// CreateMaintenance handles POST /api/tanks/:id/maintenance.
func (h *Handler) CreateMaintenance(c *gin.Context) {
	id, ok := tankIDParam(c)
	if !ok {
		return
	}

	var req createMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := model.MaintenanceTask{
		TankID:        id,
		Type:          req.Type,
		ScheduledDate: req.ScheduledDate,
		Technician:    req.Technician,
		Notes:         req.Notes,
	}

	created, err := h.store.CreateMaintenance(c.Request.Context(), task)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListTankMaintenance handles GET /api/tanks/:id/maintenance.
func (h *Handler) ListTankMaintenance(c *gin.Context) {
	id, ok := tankIDParam(c)
	if !ok {
		return
	}

	if _, err := h.store.GetTank(c.Request.Context(), id); err != nil {
		storeError(c, err)
		return
	}

	tasks, err := h.store.ListMaintenance(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []model.MaintenanceTask{}
	}
	c.JSON(http.StatusOK, tasks)
}

type updateMaintenanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateMaintenanceStatus handles PATCH /api/maintenance/:id/status.
// Completed and cancelled are terminal; the store rejects transitions
// out of them.
func (h *Handler) UpdateMaintenanceStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maintenance id"})
		return
	}

	var req updateMaintenanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Status {
	case model.MaintenanceInProgress, model.MaintenanceCompleted, model.MaintenanceCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of in-progress, completed, cancelled"})
		return
	}

	task, err := h.store.UpdateMaintenanceStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
