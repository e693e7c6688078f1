// Package session implements the press-and-hold alert gesture of the badge.
//
// A Controller has two independent sub-states. The hold state moves from Idle
// to Holding when the button is pressed on an active device, back to Idle on an
// early release, and through Activating once the button was held for the
// threshold. The alert state is either empty or holds the alert created by the
// last successful activation until it is cancelled.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/safebadge/internal/api/models"
	"github.com/jonboulle/clockwork"
)

const (
	// DefaultThreshold is how long the button has to be held.
	DefaultThreshold = 3 * time.Second
	// DefaultSampleInterval is the period of the elapsed time sampler.
	DefaultSampleInterval = 100 * time.Millisecond
	// ActivationTimeFormat is used to display the activation time of an alert.
	ActivationTimeFormat = "January 2, 2006 at 03:04 PM"
)

var (
	// ErrDeviceInactive is returned by Press when the badge is switched off.
	ErrDeviceInactive = errors.New("device is not active")
	// ErrAlertActive is returned by Press while an alert is active.
	ErrAlertActive = errors.New("an alert is already active")
	// ErrNoActiveAlert is returned by Cancel when there is nothing to cancel.
	ErrNoActiveAlert = errors.New("no active alert")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session controller is closed")
)

// API is the part of the safebadge API the controller depends on.
type API interface {
	GetSettings(ctx context.Context) (*models.DeviceSettings, error)
	CreateAlert(ctx context.Context) (*models.Alert, error)
	DeactivateAlert(ctx context.Context, id uint) (*models.Alert, error)
}

// HoldState is the state of the hold gesture.
type HoldState int

const (
	Idle HoldState = iota
	Holding
	Activating
)

func (s HoldState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Holding:
		return "holding"
	case Activating:
		return "activating"
	default:
		return fmt.Sprintf("HoldState(%d)", int(s))
	}
}

// ActiveAlert is the alert captured by a successful activation.
type ActiveAlert struct {
	ID          uint
	ActivatedAt string
}

// Controller drives the hold gesture against the API. It is safe for concurrent use.
type Controller struct {
	api       API
	clock     clockwork.Clock
	threshold time.Duration
	interval  time.Duration
	observer  Observer

	mu      sync.Mutex
	state   HoldState
	start   time.Time
	elapsed time.Duration
	stop    context.CancelFunc
	alert   *ActiveAlert
	closed  bool

	wg sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithThreshold sets how long the button has to be held.
func WithThreshold(d time.Duration) Option {
	return func(c *Controller) { c.threshold = d }
}

// WithSampleInterval sets the sampler period.
func WithSampleInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithObserver registers a callback for controller events.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// New creates a Controller in the Idle state without an active alert.
func New(api API, opts ...Option) *Controller {
	c := &Controller{
		api:       api,
		clock:     clockwork.NewRealClock(),
		threshold: DefaultThreshold,
		interval:  DefaultSampleInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.interval <= 0 || c.interval > c.threshold {
		c.interval = min(DefaultSampleInterval, c.threshold)
	}
	return c
}

// Progress returns min(elapsed/threshold, 1), never less than 0.
func Progress(elapsed, threshold time.Duration) float64 {
	if threshold <= 0 {
		return 1
	}
	return min(max(float64(elapsed)/float64(threshold), 0), 1)
}

// Press starts a hold session. The device has to report active. Pressing while
// a hold is running is ignored.
func (c *Controller) Press(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.state != Idle:
		c.mu.Unlock()
		return nil
	case c.alert != nil:
		c.mu.Unlock()
		return ErrAlertActive
	}
	c.mu.Unlock()

	settings, err := c.api.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to get device settings: %w", err)
	}
	if !settings.IsActive {
		return ErrDeviceInactive
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// state may have changed while the settings were fetched
	switch {
	case c.closed:
		return ErrClosed
	case c.state != Idle:
		return nil
	case c.alert != nil:
		return ErrAlertActive
	}

	samplerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.state = Holding
	c.start = c.clock.Now()
	c.elapsed = 0
	c.stop = cancel

	ticker := c.clock.NewTicker(c.interval)
	c.wg.Add(1)
	go c.sample(samplerCtx, ticker, c.start)

	log.Debug("Hold started", "threshold", c.threshold)
	return nil
}

// Release ends the hold before the threshold. No alert is created.
// Releasing outside of Holding is a no-op.
func (c *Controller) Release() {
	c.mu.Lock()
	if c.state != Holding {
		c.mu.Unlock()
		return
	}
	elapsed := c.clock.Since(c.start)
	c.resetHold()
	c.mu.Unlock()

	log.Debug("Hold released", "elapsed", elapsed)
	c.emit(Event{Type: EventReleased, Elapsed: elapsed, Progress: Progress(elapsed, c.threshold)})
}

// Cancel deactivates the active alert. If the request fails the alert stays active.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	if c.alert == nil {
		c.mu.Unlock()
		return ErrNoActiveAlert
	}
	alertID := c.alert.ID
	c.mu.Unlock()

	if _, err := c.api.DeactivateAlert(ctx, alertID); err != nil {
		return fmt.Errorf("failed to cancel alert %d: %w", alertID, err)
	}

	c.mu.Lock()
	if c.alert != nil && c.alert.ID == alertID {
		c.alert = nil
	}
	c.mu.Unlock()

	log.Info("Alert cancelled", "alert_id", alertID)
	c.emit(Event{Type: EventCancelled, AlertID: alertID})
	return nil
}

// State returns the current hold state.
func (c *Controller) State() HoldState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Alert returns the active alert, if any.
func (c *Controller) Alert() (ActiveAlert, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.alert == nil {
		return ActiveAlert{}, false
	}
	return *c.alert, true
}

// Progress returns the progress of the running hold as of the last sample.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Holding:
		return Progress(c.elapsed, c.threshold)
	case Activating:
		return 1
	default:
		return 0
	}
}

// Close stops a running hold and waits for the sampler to exit. An alert
// request that is already in flight is not aborted.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	holding := c.state == Holding
	if holding {
		c.resetHold()
	}
	c.mu.Unlock()

	c.wg.Wait()
}

// resetHold returns to Idle and releases the sampler. c.mu must be held.
func (c *Controller) resetHold() {
	c.state = Idle
	c.elapsed = 0
	c.start = time.Time{}
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

func (c *Controller) sample(ctx context.Context, ticker clockwork.Ticker, start time.Time) {
	defer c.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		elapsed := c.clock.Since(start)

		c.mu.Lock()
		if ctx.Err() != nil || c.state != Holding {
			c.mu.Unlock()
			return
		}
		c.elapsed = elapsed
		if elapsed >= c.threshold {
			c.state = Activating
			if c.stop != nil {
				c.stop()
				c.stop = nil
			}
			c.mu.Unlock()

			c.emit(Event{Type: EventProgress, Elapsed: elapsed, Progress: 1})
			c.activate(ctx)
			return
		}
		c.mu.Unlock()

		c.emit(Event{Type: EventProgress, Elapsed: elapsed, Progress: Progress(elapsed, c.threshold)})
	}
}

// activate creates the alert. The request is detached from the sampler so
// neither Release nor Close can abort it.
func (c *Controller) activate(ctx context.Context) {
	alert, err := c.api.CreateAlert(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.state = Idle
	c.elapsed = 0
	c.start = time.Time{}
	if err != nil {
		c.mu.Unlock()
		log.Error("Failed to activate alert", "error", err)
		c.emit(Event{Type: EventActivationFailed, Err: err})
		return
	}
	active := ActiveAlert{
		ID:          alert.ID,
		ActivatedAt: c.clock.Now().Format(ActivationTimeFormat),
	}
	c.alert = &active
	c.mu.Unlock()

	log.Warn("Emergency alert activated", "alert_id", active.ID)
	c.emit(Event{Type: EventActivated, AlertID: active.ID, ActivatedAt: active.ActivatedAt, Progress: 1})
}

func (c *Controller) emit(e Event) {
	if c.observer != nil {
		c.observer(e)
	}
}
