package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// UnknownLocation is stored on alerts raised before the badge reported any position.
var UnknownLocation = Location{
	Latitude:  0,
	Longitude: 0,
	Address:   "Unknown location",
}

// EmergencyAlert is raised by the badge's emergency button.
// Alerts are never deleted. Once deactivated they stay inactive.
type EmergencyAlert struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index"`
	Timestamp time.Time `gorm:"not null"`
	Location  Location  `gorm:"serializer:json"`
	IsActive  bool      `gorm:"not null;index"`
}

func (c *Client) CreateAlert(ctx context.Context, alert *EmergencyAlert) error {
	if err := c.db.WithContext(ctx).Create(alert).Error; err != nil {
		log.Error("failed to create alert", "error", err)
		return err
	}
	return nil
}

func (c *Client) GetAlert(ctx context.Context, id uint) (*EmergencyAlert, error) {
	var alert EmergencyAlert
	if err := c.db.WithContext(ctx).First(&alert, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get alert", "error", err)
		}
		return nil, translateError(err)
	}
	return &alert, nil
}

func (c *Client) GetAlertsByUserID(ctx context.Context, userID uint) ([]EmergencyAlert, error) {
	var alerts []EmergencyAlert
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&alerts).Error; err != nil {
		log.Error("failed to get alerts", "error", err)
		return nil, err
	}
	return alerts, nil
}

func (c *Client) DeactivateAlert(ctx context.Context, id uint) (*EmergencyAlert, error) {
	alert, err := c.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.IsActive {
		if err := c.db.WithContext(ctx).Model(alert).Update("is_active", false).Error; err != nil {
			log.Error("failed to deactivate alert", "error", err)
			return nil, err
		}
	}
	return c.GetAlert(ctx, id)
}
