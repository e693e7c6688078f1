package database

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// EmergencyContact is a person notified when the badge raises an alert.
type EmergencyContact struct {
	gorm.Model
	UserID uint   `gorm:"not null;index"`
	Name   string `gorm:"not null"`
	Phone  string `gorm:"not null"`
	Email  *string
}

// ContactUpdate is a partial update of an emergency contact. Nil fields are left untouched.
type ContactUpdate struct {
	Name  *string
	Phone *string
	Email *string
}

// Apply merges the update into the given contact.
func (u ContactUpdate) Apply(contact *EmergencyContact) {
	if u.Name != nil {
		contact.Name = *u.Name
	}
	if u.Phone != nil {
		contact.Phone = *u.Phone
	}
	if u.Email != nil {
		contact.Email = u.Email
	}
}

func (c *Client) CreateContact(ctx context.Context, contact *EmergencyContact) error {
	if err := c.db.WithContext(ctx).Create(contact).Error; err != nil {
		log.Error("failed to create contact", "error", err)
		return err
	}
	return nil
}

func (c *Client) GetContact(ctx context.Context, id uint) (*EmergencyContact, error) {
	var contact EmergencyContact
	if err := c.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get contact", "error", err)
		}
		return nil, translateError(err)
	}
	return &contact, nil
}

func (c *Client) GetContactsByUserID(ctx context.Context, userID uint) ([]EmergencyContact, error) {
	var contacts []EmergencyContact
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&contacts).Error; err != nil {
		log.Error("failed to get contacts", "error", err)
		return nil, err
	}
	return contacts, nil
}

func (c *Client) UpdateContact(ctx context.Context, id uint, update ContactUpdate) (*EmergencyContact, error) {
	contact, err := c.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	update.Apply(contact)
	if err := c.db.WithContext(ctx).Model(contact).Select("name", "phone", "email").Updates(contact).Error; err != nil {
		log.Error("failed to update contact", "error", err)
		return nil, err
	}
	return c.GetContact(ctx, id)
}

func (c *Client) DeleteContact(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Delete(&EmergencyContact{}, id)
	if result.Error != nil {
		log.Error("failed to delete contact", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
