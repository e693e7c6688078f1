package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/safebadge/internal/api/auth"
	"github.com/jon4hz/safebadge/internal/api/models"
	"github.com/jon4hz/safebadge/internal/engine"
)

// MsgInvalidBody is returned when the request body is not valid JSON.
const MsgInvalidBody = "Invalid request body"

type Handler struct {
	engine *engine.Engine
}

func New(eng *engine.Engine) *Handler {
	return &Handler{
		engine: eng,
	}
}

// GetUser returns the profile of the current user.
func (h *Handler) GetUser(c *gin.Context) {
	current := auth.CurrentUser(c)

	user, err := h.engine.GetUser(c.Request.Context(), current.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToUser(user, h.engine.AvatarURL))
}

// Healthz reports that the server is up.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps engine errors to status codes. Unexpected errors are logged and hidden from the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	var engineErr *engine.Error
	if errors.As(err, &engineErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, engine.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, engine.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, engine.ErrValidation):
			status = http.StatusBadRequest
		}
		if status != http.StatusInternalServerError {
			c.JSON(status, models.ErrorResponse{Message: engineErr.Message})
			return
		}
	}

	log.Error("Unexpected error while handling request",
		"method", c.Request.Method,
		"route", c.FullPath(),
		"request_id", c.GetString("request_id"),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: engine.MsgUnexpected})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: message})
}

func parseUintParam(param string) (uint, error) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return safecast.Convert[uint](id)
}
