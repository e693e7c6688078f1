package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/safebadge/internal/database"
	"github.com/jon4hz/safebadge/internal/notify/email"
	"github.com/jon4hz/safebadge/internal/notify/ntfy"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const notificationTimeout = 30 * time.Second

// dispatchNotifications fans a new alert out to the enabled channels in the background.
// It is detached from the request and never affects the outcome of the alert creation.
func (e *Engine) dispatchNotifications(alert database.EmergencyAlert, settings database.DeviceSettings) {
	e.notifications.Add(1)
	go func() {
		defer e.notifications.Done()

		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()

		if err := e.sendAlertNotifications(ctx, alert, settings); err != nil {
			log.Error("Failed to deliver alert notifications", "alert_id", alert.ID, "error", err)
		}
	}()
}

func (e *Engine) sendAlertNotifications(ctx context.Context, alert database.EmergencyAlert, settings database.DeviceSettings) error {
	user, err := e.db.GetUserByID(ctx, alert.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	var g errgroup.Group

	if settings.SMSAlerts && e.ntfy != nil {
		g.Go(func() error {
			err := e.ntfy.SendEmergencyAlert(ctx, ntfy.Alert{
				AlertID:   alert.ID,
				UserName:  user.FullName,
				UserPhone: lo.FromPtr(user.Phone),
				Latitude:  alert.Location.Latitude,
				Longitude: alert.Location.Longitude,
				Address:   alert.Location.Address,
				Timestamp: alert.Timestamp,
			})
			e.metrics.Notification("ntfy", err)
			if err != nil {
				return fmt.Errorf("ntfy: %w", err)
			}
			return nil
		})
	}

	if e.email != nil {
		contacts, err := e.db.GetContactsByUserID(ctx, alert.UserID)
		if err != nil {
			return fmt.Errorf("failed to load contacts: %w", err)
		}
		recipients := lo.Filter(contacts, func(c database.EmergencyContact, _ int) bool {
			return lo.FromPtr(c.Email) != ""
		})
		for _, contact := range recipients {
			g.Go(func() error {
				err := e.email.SendAlertNotification(email.AlertNotification{
					ContactEmail: *contact.Email,
					ContactName:  contact.Name,
					UserName:     user.FullName,
					UserPhone:    lo.FromPtr(user.Phone),
					Address:      alert.Location.Address,
					MapURL:       ntfy.MapURL(alert.Location.Latitude, alert.Location.Longitude),
					Timestamp:    alert.Timestamp,
				})
				e.metrics.Notification("email", err)
				if err != nil {
					return fmt.Errorf("email to %s: %w", contact.Name, err)
				}
				return nil
			})
		}
	}

	if settings.EmergencyServices {
		// there is no real dispatch integration, the badge only simulates it
		log.Warn("Simulated emergency services dispatch",
			"alert_id", alert.ID,
			"user", user.FullName,
			"lat", alert.Location.Latitude,
			"lon", alert.Location.Longitude,
			"address", alert.Location.Address,
		)
		e.metrics.Notification("dispatch", nil)
	}

	return g.Wait()
}
