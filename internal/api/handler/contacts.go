package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/safebadge/internal/api/auth"
	"github.com/jon4hz/safebadge/internal/api/models"
	"github.com/jon4hz/safebadge/internal/engine"
)

const msgInvalidContactID = "Invalid contact ID"

// ListContacts returns the emergency contacts of the current user.
func (h *Handler) ListContacts(c *gin.Context) {
	user := auth.CurrentUser(c)

	contacts, err := h.engine.ListContacts(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToContacts(contacts, h.engine.AvatarURL))
}

// CreateContact adds an emergency contact.
func (h *Handler) CreateContact(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req models.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, MsgInvalidBody)
		return
	}

	contact, err := h.engine.CreateContact(c.Request.Context(), user.ID, engine.ContactInput{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.ToContact(*contact, h.engine.AvatarURL))
}

// UpdateContact merges the provided fields into an emergency contact of the current user.
func (h *Handler) UpdateContact(c *gin.Context) {
	user := auth.CurrentUser(c)

	contactID, err := parseUintParam(c.Param("id"))
	if err != nil {
		badRequest(c, msgInvalidContactID)
		return
	}

	var req models.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, MsgInvalidBody)
		return
	}

	contact, err := h.engine.UpdateContact(c.Request.Context(), user.ID, contactID, req.ContactUpdate())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToContact(*contact, h.engine.AvatarURL))
}

// DeleteContact removes an emergency contact of the current user.
func (h *Handler) DeleteContact(c *gin.Context) {
	user := auth.CurrentUser(c)

	contactID, err := parseUintParam(c.Param("id"))
	if err != nil {
		badRequest(c, msgInvalidContactID)
		return
	}

	if err := h.engine.DeleteContact(c.Request.Context(), user.ID, contactID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
