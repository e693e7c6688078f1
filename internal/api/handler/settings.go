package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/safebadge/internal/api/auth"
	"github.com/jon4hz/safebadge/internal/api/models"
	"github.com/jon4hz/safebadge/internal/engine"
)

// GetSettings returns the device settings of the current user.
func (h *Handler) GetSettings(c *gin.Context) {
	user := auth.CurrentUser(c)

	settings, err := h.engine.GetSettings(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToDeviceSettings(settings))
}

// UpdateSettings merges the provided toggles into the device settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, MsgInvalidBody)
		return
	}

	settings, err := h.engine.UpdateSettings(c.Request.Context(), user.ID, req.SettingsUpdate())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToDeviceSettings(settings))
}

// UpdateBattery stores a new battery level.
func (h *Handler) UpdateBattery(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req models.BatteryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BatteryLevel == nil {
		badRequest(c, engine.MsgInvalidBattery)
		return
	}

	settings, err := h.engine.UpdateBattery(c.Request.Context(), user.ID, *req.BatteryLevel)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToDeviceSettings(settings))
}

// UpdateLocation stores the last known location of the badge.
func (h *Handler) UpdateLocation(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req models.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		badRequest(c, engine.MsgInvalidLocation)
		return
	}

	settings, err := h.engine.UpdateLocation(c.Request.Context(), user.ID, *req.Latitude, *req.Longitude, req.Address)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToDeviceSettings(settings))
}
