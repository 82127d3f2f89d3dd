package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hail/internal/auth"
	"hail/internal/presence"
)

// DriverHandler handles driver availability toggles.
type DriverHandler struct {
	registry *presence.Registry
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(registry *presence.Registry) *DriverHandler {
	return &DriverHandler{registry: registry}
}

// GoOnline handles POST /v1/drivers/online
func (h *DriverHandler) GoOnline(c *gin.Context) {
	id, _ := auth.FromContext(c)

	if err := h.registry.GoOnline(c.Request.Context(), id.UserID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"online": true})
}

// GoOffline handles POST /v1/drivers/offline
func (h *DriverHandler) GoOffline(c *gin.Context) {
	id, _ := auth.FromContext(c)

	if err := h.registry.GoOffline(c.Request.Context(), id.UserID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"online": false})
}
