package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/jon4hz/safebadge/internal/cache"
	"github.com/jon4hz/safebadge/internal/config"
	"github.com/jon4hz/safebadge/internal/database"
	"github.com/jon4hz/safebadge/internal/geocode"
	"github.com/jon4hz/safebadge/internal/gravatar"
	"github.com/jon4hz/safebadge/internal/metrics"
	"github.com/jon4hz/safebadge/internal/notify/email"
	"github.com/jon4hz/safebadge/internal/notify/ntfy"
	"github.com/jon4hz/safebadge/internal/scheduler"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
)

// MaxContacts is the number of emergency contacts the clients allow. The engine does not enforce it.
const MaxContacts = 5

// Engine is the domain service of safebadge. It owns the device simulation,
// validates every mutation and fans alerts out to the configured notification channels.
type Engine struct {
	cfg       *config.Config
	db        database.DB
	scheduler *scheduler.Scheduler
	geocoder  geocode.Geocoder
	email     *email.NotificationService
	ntfy      *ntfy.Client
	gravatar  *gravatar.Generator
	metrics   *metrics.Metrics
	clock     clockwork.Clock

	randMu sync.Mutex
	rand   *rand.Rand

	// tracks notification fan-outs that outlive their request
	notifications sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records alert and battery metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock replaces the wall clock used for timestamps and the scheduler.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithGeocoder replaces the configured reverse geocoder.
func WithGeocoder(g geocode.Geocoder) Option {
	return func(e *Engine) { e.geocoder = g }
}

// WithRand sets the random source of the location drift.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rand = r }
}

// New creates a new Engine instance.
func New(cfg *config.Config, db database.DB, opts ...Option) (*Engine, error) {
	gravatarGen, err := gravatar.New(cfg.Gravatar)
	if err != nil {
		return nil, fmt.Errorf("failed to create gravatar generator: %w", err)
	}

	engine := &Engine{
		cfg:      cfg,
		db:       db,
		gravatar: gravatarGen,
		clock:    clockwork.NewRealClock(),
		rand:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec
	}

	if cfg.Geocoding != nil && cfg.Geocoding.Enabled {
		geocodeCache := cache.NewGeocodeCache(cache.New(cfg.Cache), cfg.Cache)
		engine.geocoder = geocode.New(cfg.Geocoding, geocodeCache)
	}

	if cfg.Email != nil && cfg.Email.Enabled {
		engine.email = email.New(cfg.Email)
	}

	if cfg.Ntfy != nil && cfg.Ntfy.Enabled {
		engine.ntfy = ntfy.NewClient(cfg.Ntfy)
	}

	for _, opt := range opts {
		opt(engine)
	}

	sched, err := scheduler.New(gocron.WithClock(engine.clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	engine.scheduler = sched

	if err := engine.setupJobs(); err != nil {
		return nil, fmt.Errorf("failed to setup jobs: %w", err)
	}

	return engine, nil
}

// EnsureDemoUser creates the configured demo user and its device settings unless they already exist.
func (e *Engine) EnsureDemoUser(ctx context.Context) (*database.User, error) {
	demo := e.cfg.Demo

	user, err := e.db.GetUserByUsername(ctx, demo.Username)
	switch {
	case errors.Is(err, database.ErrNotFound):
		user = &database.User{
			Username: demo.Username,
			Password: demo.Password,
			FullName: demo.FullName,
			Phone:    lo.EmptyableToPtr(demo.Phone),
			Email:    lo.EmptyableToPtr(demo.Email),
		}
		if err := e.db.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create demo user: %w", err)
		}
		log.Info("Created demo user", "username", user.Username, "id", user.ID)
	case err != nil:
		return nil, fmt.Errorf("failed to look up demo user: %w", err)
	}

	_, err = e.db.GetDeviceSettings(ctx, user.ID)
	if errors.Is(err, database.ErrNotFound) {
		settings := &database.DeviceSettings{
			UserID:            user.ID,
			IsActive:          true,
			BatteryLevel:      demo.BatteryLevel,
			LocationSharing:   true,
			SMSAlerts:         true,
			EmergencyServices: true,
			SoundAlarm:        true,
			LastLocation: &database.Location{
				Latitude:  demo.Latitude,
				Longitude: demo.Longitude,
				Address:   demo.Address,
			},
		}
		if err := e.db.CreateDeviceSettings(ctx, settings); err != nil {
			return nil, fmt.Errorf("failed to create demo device settings: %w", err)
		}
		e.metrics.BatteryLevel(user.ID, settings.BatteryLevel)
		log.Info("Created demo device settings", "user_id", user.ID)
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up demo device settings: %w", err)
	}

	return user, nil
}

// GetScheduler returns the scheduler instance.
func (e *Engine) GetScheduler() *scheduler.Scheduler {
	return e.scheduler
}

// Run starts the engine and all its background jobs. It blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.scheduler.Start()
	for _, job := range e.scheduler.GetJobs() {
		log.Info("Scheduled job", "name", job.Name, "interval", job.Interval, "next_run", job.NextRun)
	}
	<-ctx.Done()
	return nil
}

// Close stops the scheduler and waits for pending notifications.
func (e *Engine) Close() error {
	err := e.scheduler.Stop()
	e.notifications.Wait()
	return err
}
