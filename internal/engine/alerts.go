package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/safebadge/internal/database"
	"github.com/samber/lo"
)

// CreateAlert raises an emergency alert with a snapshot of the last known location.
// The device has to be active. Every call creates a new record, active alerts are not deduplicated.
func (e *Engine) CreateAlert(ctx context.Context, userID uint) (*database.EmergencyAlert, error) {
	settings, err := e.db.GetDeviceSettings(ctx, userID)
	if err != nil {
		return nil, settingsError(err)
	}
	if !settings.IsActive {
		return nil, ErrDeviceInactive
	}

	location := database.UnknownLocation
	if settings.LastLocation != nil {
		location = *settings.LastLocation
	}

	alert := &database.EmergencyAlert{
		UserID:    userID,
		Timestamp: e.clock.Now(),
		Location:  location,
		IsActive:  true,
	}
	if err := e.db.CreateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	log.Warn("Emergency alert raised", "alert_id", alert.ID, "user_id", userID, "location", location.Address)
	e.metrics.AlertCreated()
	e.recordHistory(ctx, database.HistoryEvent{
		UserID:    userID,
		EventType: database.HistoryEventAlertCreated,
		AlertID:   lo.ToPtr(alert.ID),
		Message:   fmt.Sprintf("Emergency alert raised at %s", location.Address),
	})

	e.dispatchNotifications(*alert, *settings)
	return alert, nil
}

// ListAlerts returns all alerts of a user, active and inactive, in creation order.
func (e *Engine) ListAlerts(ctx context.Context, userID uint) ([]database.EmergencyAlert, error) {
	if _, err := e.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	alerts, err := e.db.GetAlertsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// GetAlert returns a single alert owned by the user.
func (e *Engine) GetAlert(ctx context.Context, userID, alertID uint) (*database.EmergencyAlert, error) {
	return e.ownedAlert(ctx, userID, alertID, "view")
}

// DeactivateAlert cancels an alert owned by the user. Deactivating an inactive alert succeeds.
func (e *Engine) DeactivateAlert(ctx context.Context, userID, alertID uint) (*database.EmergencyAlert, error) {
	current, err := e.ownedAlert(ctx, userID, alertID, "update")
	if err != nil {
		return nil, err
	}

	alert, err := e.db.DeactivateAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound(MsgAlertNotFound)
		}
		return nil, fmt.Errorf("failed to deactivate alert: %w", err)
	}

	if current.IsActive {
		log.Info("Emergency alert cancelled", "alert_id", alertID, "user_id", userID)
		e.metrics.AlertDeactivated()
		e.recordHistory(ctx, database.HistoryEvent{
			UserID:    userID,
			EventType: database.HistoryEventAlertDeactivated,
			AlertID:   lo.ToPtr(alertID),
			Message:   "Emergency alert cancelled",
		})
	}
	return alert, nil
}

func (e *Engine) ownedAlert(ctx context.Context, userID, alertID uint, action string) (*database.EmergencyAlert, error) {
	alert, err := e.db.GetAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound(MsgAlertNotFound)
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	if alert.UserID != userID {
		log.Warn("Denied access to alert", "user_id", userID, "alert_id", alertID, "owner_id", alert.UserID, "action", action)
		e.recordHistory(ctx, database.HistoryEvent{
			UserID:    userID,
			EventType: database.HistoryEventAccessDenied,
			AlertID:   lo.ToPtr(alertID),
			Message:   fmt.Sprintf("Tried to %s an alert of another user", action),
		})
		return nil, forbidden(fmt.Sprintf("Not authorized to %s this alert", action))
	}
	return alert, nil
}
