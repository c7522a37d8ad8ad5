package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"tank-status-backend/internal/model"
	"tank-status-backend/internal/store"
)

// Events receives the delta notifications emitted after each mutation.
// The WebSocket hub satisfies this; tests stub it.
type Events interface {
	TankCreated(tank model.Tank)
	TankUpdated(tank model.Tank)
	TankDeleted(id int64)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	events  Events
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, events Events, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		events:  events,
		webpush: webpushOptions,
	}
}

// storeError maps a store-layer failure onto an HTTP response.
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, store.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotImplemented):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "storage backend not implemented"})
	case errors.Is(err, store.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
