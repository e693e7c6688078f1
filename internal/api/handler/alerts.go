package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/safebadge/internal/api/auth"
	"github.com/jon4hz/safebadge/internal/api/models"
)

const msgInvalidAlertID = "Invalid alert ID"

// ListAlerts returns all alerts of the current user, active or not.
func (h *Handler) ListAlerts(c *gin.Context) {
	user := auth.CurrentUser(c)

	alerts, err := h.engine.ListAlerts(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToAlerts(alerts))
}

// CreateAlert raises a new alert. The request body is ignored.
func (h *Handler) CreateAlert(c *gin.Context) {
	user := auth.CurrentUser(c)

	alert, err := h.engine.CreateAlert(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.ToAlert(alert))
}

// GetAlert returns a single alert of the current user.
func (h *Handler) GetAlert(c *gin.Context) {
	user := auth.CurrentUser(c)

	alertID, err := parseUintParam(c.Param("id"))
	if err != nil {
		badRequest(c, msgInvalidAlertID)
		return
	}

	alert, err := h.engine.GetAlert(c.Request.Context(), user.ID, alertID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToAlert(alert))
}

// DeactivateAlert marks an alert as inactive. Deactivating twice is not an error.
func (h *Handler) DeactivateAlert(c *gin.Context) {
	user := auth.CurrentUser(c)

	alertID, err := parseUintParam(c.Param("id"))
	if err != nil {
		badRequest(c, msgInvalidAlertID)
		return
	}

	alert, err := h.engine.DeactivateAlert(c.Request.Context(), user.ID, alertID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToAlert(alert))
}
