package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tank-status-backend/internal/model"
	"tank-status-backend/internal/store"
)

func tankIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid tank id"})
		return 0, false
	}
	return id, true
}

// ListTanks handles GET /api/tanks. A backend connectivity failure
// degrades to an empty collection instead of failing the whole page.
func (h *Handler) ListTanks(c *gin.Context) {
	tanks, err := h.store.ListTanks(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrStorageUnavailable) {
			c.JSON(http.StatusOK, []model.Tank{})
			return
		}
		storeError(c, err)
		return
	}
	if tanks == nil {
		tanks = []model.Tank{}
	}
	c.JSON(http.StatusOK, tanks)
}

// GetTank handles GET /api/tanks/:id.
func (h *Handler) GetTank(c *gin.Context) {
	id, ok := tankIDParam(c)
	if !ok {
		return
	}
	tank, err := h.store.GetTank(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tank)
}

type createTankRequest struct {
	Name              string     `json:"name" binding:"required"`
	FillLevel         float64    `json:"fillLevel"`
	Temperature       float64    `json:"temperature"`
	Capacity          float64    `json:"capacity"`
	Status            string     `json:"status"`
	Location          string     `json:"location"`
	Group             string     `json:"group"`
	AlertLowThreshold float64    `json:"alertLowThreshold"`
	TempMaxThreshold  float64    `json:"tempMaxThreshold"`
	MaintenanceDays   int        `json:"maintenanceIntervalDays"`
	LastMaintenance   *time.Time `json:"lastMaintenance"`
	NextMaintenance   *time.Time `json:"nextMaintenance"`
	Manufacturer      string     `json:"manufacturer"`
}

func (r createTankRequest) validate() error {
	if r.FillLevel < 0 || r.FillLevel > 100 {
		return errors.New("fillLevel must be between 0 and 100")
	}
	if r.Capacity < 0 {
		return errors.New("capacity must be positive")
	}
	if r.Status != "" && !model.ValidStatus(r.Status) {
		return errors.New("status must be one of online, warning, offline")
	}
	return nil
}

// CreateTank handles POST /api/tanks.
func (h *Handler) CreateTank(c *gin.Context) {
	var req createTankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tank := model.Tank{
		Name:              req.Name,
		FillLevel:         req.FillLevel,
		Temperature:       req.Temperature,
		Capacity:          req.Capacity,
		Status:            req.Status,
		Location:          req.Location,
		Group:             req.Group,
		AlertLowThreshold: req.AlertLowThreshold,
		TempMaxThreshold:  req.TempMaxThreshold,
		MaintenanceDays:   req.MaintenanceDays,
		LastMaintenance:   req.LastMaintenance,
		NextMaintenance:   req.NextMaintenance,
		Manufacturer:      req.Manufacturer,
	}

	created, err := h.store.CreateTank(c.Request.Context(), tank)
	if err != nil {
		storeError(c, err)
		return
	}

	h.events.TankCreated(created)
	c.JSON(http.StatusCreated, created)
}

func validatePatch(p store.TankPatch) error {
	if p.Name != nil && *p.Name == "" {
		return errors.New("name must not be empty")
	}
	if p.FillLevel != nil && (*p.FillLevel < 0 || *p.FillLevel > 100) {
		return errors.New("fillLevel must be between 0 and 100")
	}
	if p.Capacity != nil && *p.Capacity <= 0 {
		return errors.New("capacity must be positive")
	}
	if p.Status != nil && !model.ValidStatus(*p.Status) {
		return errors.New("status must be one of online, warning, offline")
	}
	return nil
}

// UpdateTank handles PATCH /api/tanks/:id. Fields absent from the body
// are left unchanged.
func (h *Handler) UpdateTank(c *gin.Context) {
	id, ok := tankIDParam(c)
	if !ok {
		return
	}

	var patch store.TankPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validatePatch(patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdateTank(c.Request.Context(), id, patch)
	if err != nil {
		storeError(c, err)
		return
	}

	h.events.TankUpdated(updated)
	c.JSON(http.StatusOK, updated)
}

// DeleteTank handles DELETE /api/tanks/:id.
func (h *Handler) DeleteTank(c *gin.Context) {
	id, ok := tankIDParam(c)
	if !ok {
		return
	}

	existed, err := h.store.DeleteTank(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	h.events.TankDeleted(id)
	c.Status(http.StatusNoContent)
}
