package database

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Location is a point reported by the badge.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// DeviceSettings mirrors the state of the simulated badge. There is exactly one record per user.
type DeviceSettings struct {
	gorm.Model
	UserID            uint      `gorm:"uniqueIndex;not null"`
	IsActive          bool      `gorm:"not null"`
	BatteryLevel      int       `gorm:"not null"`
	LocationSharing   bool      `gorm:"not null"`
	SMSAlerts         bool      `gorm:"not null"`
	EmergencyServices bool      `gorm:"not null"`
	SoundAlarm        bool      `gorm:"not null"`
	LastLocation      *Location `gorm:"serializer:json"`
}

// DeviceSettingsUpdate is a partial update. Nil fields are left untouched.
type DeviceSettingsUpdate struct {
	IsActive          *bool
	LocationSharing   *bool
	SMSAlerts         *bool
	EmergencyServices *bool
	SoundAlarm        *bool
}

// columns returns the changed columns keyed by their database name.
func (u DeviceSettingsUpdate) columns() map[string]any {
	cols := make(map[string]any)
	if u.IsActive != nil {
		cols["is_active"] = *u.IsActive
	}
	if u.LocationSharing != nil {
		cols["location_sharing"] = *u.LocationSharing
	}
	if u.SMSAlerts != nil {
		cols["sms_alerts"] = *u.SMSAlerts
	}
	if u.EmergencyServices != nil {
		cols["emergency_services"] = *u.EmergencyServices
	}
	if u.SoundAlarm != nil {
		cols["sound_alarm"] = *u.SoundAlarm
	}
	return cols
}

// Apply merges the update into the given settings.
func (u DeviceSettingsUpdate) Apply(s *DeviceSettings) {
	if u.IsActive != nil {
		s.IsActive = *u.IsActive
	}
	if u.LocationSharing != nil {
		s.LocationSharing = *u.LocationSharing
	}
	if u.SMSAlerts != nil {
		s.SMSAlerts = *u.SMSAlerts
	}
	if u.EmergencyServices != nil {
		s.EmergencyServices = *u.EmergencyServices
	}
	if u.SoundAlarm != nil {
		s.SoundAlarm = *u.SoundAlarm
	}
}

func (c *Client) CreateDeviceSettings(ctx context.Context, settings *DeviceSettings) error {
	if err := c.db.WithContext(ctx).Create(settings).Error; err != nil {
		log.Error("failed to create device settings", "error", err)
		return err
	}
	return nil
}

func (c *Client) GetDeviceSettings(ctx context.Context, userID uint) (*DeviceSettings, error) {
	var settings DeviceSettings
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get device settings", "error", err)
		}
		return nil, translateError(err)
	}
	return &settings, nil
}

func (c *Client) GetAllDeviceSettings(ctx context.Context) ([]DeviceSettings, error) {
	var settings []DeviceSettings
	if err := c.db.WithContext(ctx).Order("id asc").Find(&settings).Error; err != nil {
		log.Error("failed to get all device settings", "error", err)
		return nil, err
	}
	return settings, nil
}

func (c *Client) UpdateDeviceSettings(ctx context.Context, userID uint, update DeviceSettingsUpdate) (*DeviceSettings, error) {
	return c.updateDeviceSettings(ctx, userID, update.columns())
}

func (c *Client) UpdateBatteryLevel(ctx context.Context, userID uint, level int) (*DeviceSettings, error) {
	return c.updateDeviceSettings(ctx, userID, map[string]any{"battery_level": level})
}

func (c *Client) UpdateLastLocation(ctx context.Context, userID uint, location Location) (*DeviceSettings, error) {
	settings, err := c.GetDeviceSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings.LastLocation = &location
	if err := c.db.WithContext(ctx).Model(settings).Select("last_location").Updates(settings).Error; err != nil {
		log.Error("failed to update last location", "error", err)
		return nil, err
	}
	return c.GetDeviceSettings(ctx, userID)
}

func (c *Client) updateDeviceSettings(ctx context.Context, userID uint, cols map[string]any) (*DeviceSettings, error) {
	settings, err := c.GetDeviceSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return settings, nil
	}
	if err := c.db.WithContext(ctx).Model(settings).Updates(cols).Error; err != nil {
		log.Error("failed to update device settings", "error", err)
		return nil, err
	}
	return c.GetDeviceSettings(ctx, userID)
}
