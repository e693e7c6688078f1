package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/safebadge/internal/api/auth"
	"github.com/jon4hz/safebadge/internal/api/models"
	"github.com/jon4hz/safebadge/internal/engine"
)

// GetHistory returns the audit trail of the current user, newest first.
func (h *Handler) GetHistory(c *gin.Context) {
	user := auth.CurrentUser(c)

	limit := engine.DefaultHistoryLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 || l > 1000 {
			badRequest(c, "Invalid limit")
			return
		}
		limit = l
	}

	events, err := h.engine.GetHistory(c.Request.Context(), user.ID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToHistoryEvents(events))
}
