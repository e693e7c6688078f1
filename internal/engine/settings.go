package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/safebadge/internal/database"
)

// GetSettings returns the device settings of a user.
func (e *Engine) GetSettings(ctx context.Context, userID uint) (*database.DeviceSettings, error) {
	settings, err := e.db.GetDeviceSettings(ctx, userID)
	if err != nil {
		return nil, settingsError(err)
	}
	return settings, nil
}

// UpdateSettings merges the provided fields into the device settings.
func (e *Engine) UpdateSettings(ctx context.Context, userID uint, update database.DeviceSettingsUpdate) (*database.DeviceSettings, error) {
	settings, err := e.db.UpdateDeviceSettings(ctx, userID, update)
	if err != nil {
		return nil, settingsError(err)
	}
	log.Debug("Updated device settings", "user_id", userID, "active", settings.IsActive)
	return settings, nil
}

// UpdateBattery stores a new battery level. Levels outside [0, 100] are rejected and leave the stored level unchanged.
func (e *Engine) UpdateBattery(ctx context.Context, userID uint, level int) (*database.DeviceSettings, error) {
	if level < 0 || level > 100 {
		return nil, invalid(MsgInvalidBattery)
	}
	settings, err := e.db.UpdateBatteryLevel(ctx, userID, level)
	if err != nil {
		return nil, settingsError(err)
	}
	e.metrics.BatteryLevel(userID, settings.BatteryLevel)
	return settings, nil
}

// UpdateLocation stores the last known location. Without an address the
// location is reverse geocoded when enabled, otherwise "<lat>, <lon>" is used.
func (e *Engine) UpdateLocation(ctx context.Context, userID uint, latitude, longitude float64, address string) (*database.DeviceSettings, error) {
	if !validCoordinates(latitude, longitude) {
		return nil, invalid(MsgInvalidLocation)
	}

	address = strings.TrimSpace(address)
	if address == "" {
		address = e.resolveAddress(ctx, latitude, longitude)
	}

	settings, err := e.db.UpdateLastLocation(ctx, userID, database.Location{
		Latitude:  latitude,
		Longitude: longitude,
		Address:   address,
	})
	if err != nil {
		return nil, settingsError(err)
	}
	return settings, nil
}

func (e *Engine) resolveAddress(ctx context.Context, latitude, longitude float64) string {
	if e.geocoder != nil {
		address, err := e.geocoder.Reverse(ctx, latitude, longitude)
		if err == nil {
			return address
		}
		log.Warn("Failed to reverse geocode location", "lat", latitude, "lon", longitude, "error", err)
	}
	return FormatCoordinates(latitude, longitude)
}

// FormatCoordinates renders a location as "<lat>, <lon>" with the shortest exact representation.
func FormatCoordinates(latitude, longitude float64) string {
	return strconv.FormatFloat(latitude, 'f', -1, 64) + ", " + strconv.FormatFloat(longitude, 'f', -1, 64)
}

func validCoordinates(latitude, longitude float64) bool {
	if math.IsNaN(latitude) || math.IsNaN(longitude) {
		return false
	}
	return latitude >= -90 && latitude <= 90 && longitude >= -180 && longitude <= 180
}

func settingsError(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return notFound(MsgSettingsNotFound)
	}
	return fmt.Errorf("device settings: %w", err)
}
