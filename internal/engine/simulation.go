package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/safebadge/internal/database"
)

const (
	batteryDrainJobID  = "battery_drain"
	locationDriftJobID = "location_drift"

	// SimulatedAddress is reported by the location drift.
	SimulatedAddress = "350 5th Ave, New York, NY 10118"

	// maxDrift is the largest offset in degrees applied per axis and tick.
	maxDrift = 0.005
)

// setupJobs registers the device simulation jobs.
func (e *Engine) setupJobs() error {
	sim := e.cfg.Simulation
	if sim == nil || !sim.Enabled {
		log.Info("Device simulation is disabled")
		return nil
	}

	if err := e.scheduler.AddIntervalJob(
		batteryDrainJobID,
		"Battery Drain",
		"Drains one percent of battery from every active badge",
		sim.BatteryDrainInterval,
		e.drainBatteries,
	); err != nil {
		return fmt.Errorf("failed to add battery drain job: %w", err)
	}

	if err := e.scheduler.AddIntervalJob(
		locationDriftJobID,
		"Location Drift",
		"Reports a slightly moved location for every badge that shares its location",
		sim.LocationInterval,
		e.driftLocations,
	); err != nil {
		return fmt.Errorf("failed to add location drift job: %w", err)
	}

	log.Info("Scheduled jobs configured successfully")
	return nil
}

// drainBatteries lowers the battery of every active badge by one percent, stopping at zero.
func (e *Engine) drainBatteries(ctx context.Context) error {
	all, err := e.db.GetAllDeviceSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load device settings: %w", err)
	}

	for _, settings := range all {
		if !settings.IsActive || settings.BatteryLevel <= 0 {
			continue
		}
		updated, err := e.db.UpdateBatteryLevel(ctx, settings.UserID, settings.BatteryLevel-1)
		if err != nil {
			return fmt.Errorf("failed to drain battery of user %d: %w", settings.UserID, err)
		}
		e.metrics.BatteryLevel(updated.UserID, updated.BatteryLevel)
		log.Debug("Drained battery", "user_id", updated.UserID, "level", updated.BatteryLevel)
	}
	return nil
}

// driftLocations moves every active, location sharing badge by a small random offset.
func (e *Engine) driftLocations(ctx context.Context) error {
	all, err := e.db.GetAllDeviceSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load device settings: %w", err)
	}

	for _, settings := range all {
		if !settings.IsActive || !settings.LocationSharing {
			continue
		}

		base := database.Location{
			Latitude:  e.cfg.Demo.Latitude,
			Longitude: e.cfg.Demo.Longitude,
		}
		if settings.LastLocation != nil {
			base = *settings.LastLocation
		}

		next := database.Location{
			Latitude:  clamp(base.Latitude+e.drift(), -90, 90),
			Longitude: clamp(base.Longitude+e.drift(), -180, 180),
			Address:   SimulatedAddress,
		}
		if _, err := e.db.UpdateLastLocation(ctx, settings.UserID, next); err != nil {
			return fmt.Errorf("failed to update location of user %d: %w", settings.UserID, err)
		}
		log.Debug("Drifted location", "user_id", settings.UserID, "lat", next.Latitude, "lon", next.Longitude)
	}
	return nil
}

// drift returns a random offset in [-maxDrift, maxDrift).
func (e *Engine) drift() float64 {
	e.randMu.Lock()
	defer e.randMu.Unlock()
	return (e.rand.Float64() - 0.5) * 2 * maxDrift
}

func clamp(v, low, high float64) float64 {
	return max(low, min(high, v))
}
