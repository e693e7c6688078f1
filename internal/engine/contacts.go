package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/safebadge/internal/database"
	"github.com/samber/lo"
)

// ContactInput holds the fields of a new emergency contact.
type ContactInput struct {
	Name  string
	Phone string
	Email *string
}

// ListContacts returns the emergency contacts of a user in creation order.
func (e *Engine) ListContacts(ctx context.Context, userID uint) ([]database.EmergencyContact, error) {
	if _, err := e.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	contacts, err := e.db.GetContactsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// CreateContact adds an emergency contact. Name and phone are required.
func (e *Engine) CreateContact(ctx context.Context, userID uint, input ContactInput) (*database.EmergencyContact, error) {
	if _, err := e.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || phone == "" {
		return nil, invalid(MsgContactRequired)
	}

	contact := &database.EmergencyContact{
		UserID: userID,
		Name:   name,
		Phone:  phone,
		Email:  normalizeEmail(input.Email),
	}
	if err := e.db.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	e.recordHistory(ctx, database.HistoryEvent{
		UserID:    userID,
		EventType: database.HistoryEventContactCreated,
		ContactID: lo.ToPtr(contact.ID),
		Message:   fmt.Sprintf("Added %s as emergency contact", contact.Name),
	})
	return contact, nil
}

// UpdateContact merges the provided fields into a contact owned by the user.
func (e *Engine) UpdateContact(ctx context.Context, userID, contactID uint, update database.ContactUpdate) (*database.EmergencyContact, error) {
	if _, err := e.ownedContact(ctx, userID, contactID, "update"); err != nil {
		return nil, err
	}

	if update.Name != nil {
		update.Name = lo.ToPtr(strings.TrimSpace(*update.Name))
		if *update.Name == "" {
			return nil, invalid(MsgContactRequired)
		}
	}
	if update.Phone != nil {
		update.Phone = lo.ToPtr(strings.TrimSpace(*update.Phone))
		if *update.Phone == "" {
			return nil, invalid(MsgContactRequired)
		}
	}
	update.Email = normalizeEmail(update.Email)

	contact, err := e.db.UpdateContact(ctx, contactID, update)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound(MsgContactNotFound)
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	e.recordHistory(ctx, database.HistoryEvent{
		UserID:    userID,
		EventType: database.HistoryEventContactUpdated,
		ContactID: lo.ToPtr(contact.ID),
		Message:   fmt.Sprintf("Updated emergency contact %s", contact.Name),
	})
	return contact, nil
}

// DeleteContact removes a contact owned by the user.
func (e *Engine) DeleteContact(ctx context.Context, userID, contactID uint) error {
	contact, err := e.ownedContact(ctx, userID, contactID, "delete")
	if err != nil {
		return err
	}

	if err := e.db.DeleteContact(ctx, contactID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound(MsgContactNotFound)
		}
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	e.recordHistory(ctx, database.HistoryEvent{
		UserID:    userID,
		EventType: database.HistoryEventContactDeleted,
		ContactID: lo.ToPtr(contactID),
		Message:   fmt.Sprintf("Removed emergency contact %s", contact.Name),
	})
	return nil
}

// ownedContact loads a contact and verifies that it belongs to the user.
// A contact of another user is reported as forbidden, never as not found.
func (e *Engine) ownedContact(ctx context.Context, userID, contactID uint, action string) (*database.EmergencyContact, error) {
	contact, err := e.db.GetContact(ctx, contactID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound(MsgContactNotFound)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if contact.UserID != userID {
		log.Warn("Denied access to contact", "user_id", userID, "contact_id", contactID, "owner_id", contact.UserID, "action", action)
		e.recordHistory(ctx, database.HistoryEvent{
			UserID:    userID,
			EventType: database.HistoryEventAccessDenied,
			ContactID: lo.ToPtr(contactID),
			Message:   fmt.Sprintf("Tried to %s a contact of another user", action),
		})
		return nil, forbidden(fmt.Sprintf("Not authorized to %s this contact", action))
	}
	return contact, nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	return lo.ToPtr(strings.TrimSpace(*email))
}
