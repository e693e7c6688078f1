// Package memory provides the in-memory implementation of database.DB.
// Records live in maps keyed by their integer handle. Every read returns a copy.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jon4hz/safebadge/internal/database"
	"github.com/samber/lo"
)

var _ database.DB = (*Store)(nil) // Ensure Store implements database.DB

// Store is an arena style in-memory repository.
type Store struct {
	mu sync.RWMutex

	users      map[uint]*database.User
	nextUserID uint

	settings       map[uint]*database.DeviceSettings
	nextSettingsID uint

	contacts      map[uint]*database.EmergencyContact
	nextContactID uint

	alerts      map[uint]*database.EmergencyAlert
	nextAlertID uint

	history       []database.HistoryEvent
	nextHistoryID uint

	now func() time.Time
}

// New creates an empty Store.
func New() *Store {
	s := &Store{now: time.Now}
	s.reset()
	return s
}

// Reset clears all collections and restarts the id sequences.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) reset() {
	s.users = make(map[uint]*database.User)
	s.nextUserID = 1
	s.settings = make(map[uint]*database.DeviceSettings)
	s.nextSettingsID = 1
	s.contacts = make(map[uint]*database.EmergencyContact)
	s.nextContactID = 1
	s.alerts = make(map[uint]*database.EmergencyAlert)
	s.nextAlertID = 1
	s.history = nil
	s.nextHistoryID = 1
}

func (s *Store) Close() error {
	return nil
}

// sortedValues returns copies of the map values ordered by id.
func sortedValues[T any](m map[uint]*T, keep func(*T) bool) []T {
	ids := lo.Keys(m)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if keep == nil || keep(m[id]) {
			out = append(out, *m[id])
		}
	}
	return out
}

func copyLocation(l *database.Location) *database.Location {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// User operations

func (s *Store) CreateUser(ctx context.Context, user *database.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return fmt.Errorf("user %q already exists", user.Username)
		}
	}

	now := s.now()
	user.ID = s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.nextUserID++

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*database.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := lo.Find(lo.Values(s.users), func(u *database.User) bool {
		return u.Username == username
	})
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *user
	return &out, nil
}

// Device settings operations

func (s *Store) CreateDeviceSettings(ctx context.Context, settings *database.DeviceSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findSettings(settings.UserID); ok {
		return fmt.Errorf("device settings for user %d already exist", settings.UserID)
	}

	now := s.now()
	settings.ID = s.nextSettingsID
	settings.CreatedAt = now
	settings.UpdatedAt = now
	s.nextSettingsID++

	stored := *settings
	stored.LastLocation = copyLocation(settings.LastLocation)
	s.settings[settings.ID] = &stored
	return nil
}

// findSettings must be called with the lock held.
func (s *Store) findSettings(userID uint) (*database.DeviceSettings, bool) {
	return lo.Find(lo.Values(s.settings), func(ds *database.DeviceSettings) bool {
		return ds.UserID == userID
	})
}

func copySettings(ds *database.DeviceSettings) *database.DeviceSettings {
	out := *ds
	out.LastLocation = copyLocation(ds.LastLocation)
	return &out
}

func (s *Store) GetDeviceSettings(ctx context.Context, userID uint) (*database.DeviceSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.findSettings(userID)
	if !ok {
		return nil, database.ErrNotFound
	}
	return copySettings(ds), nil
}

func (s *Store) GetAllDeviceSettings(ctx context.Context) ([]database.DeviceSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := sortedValues(s.settings, nil)
	for i := range out {
		out[i].LastLocation = copyLocation(out[i].LastLocation)
	}
	return out, nil
}

func (s *Store) UpdateDeviceSettings(ctx context.Context, userID uint, update database.DeviceSettingsUpdate) (*database.DeviceSettings, error) {
	return s.updateSettings(userID, update.Apply)
}

func (s *Store) UpdateBatteryLevel(ctx context.Context, userID uint, level int) (*database.DeviceSettings, error) {
	return s.updateSettings(userID, func(ds *database.DeviceSettings) {
		ds.BatteryLevel = level
	})
}

func (s *Store) UpdateLastLocation(ctx context.Context, userID uint, location database.Location) (*database.DeviceSettings, error) {
	return s.updateSettings(userID, func(ds *database.DeviceSettings) {
		ds.LastLocation = &location
	})
}

func (s *Store) updateSettings(userID uint, mutate func(*database.DeviceSettings)) (*database.DeviceSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.findSettings(userID)
	if !ok {
		return nil, database.ErrNotFound
	}
	mutate(ds)
	ds.UpdatedAt = s.now()
	return copySettings(ds), nil
}

// Contact operations

func copyContact(c *database.EmergencyContact) *database.EmergencyContact {
	out := *c
	if c.Email != nil {
		out.Email = lo.ToPtr(*c.Email)
	}
	return &out
}

func (s *Store) CreateContact(ctx context.Context, contact *database.EmergencyContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	contact.ID = s.nextContactID
	contact.CreatedAt = now
	contact.UpdatedAt = now
	s.nextContactID++

	s.contacts[contact.ID] = copyContact(contact)
	return nil
}

func (s *Store) GetContact(ctx context.Context, id uint) (*database.EmergencyContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contact, ok := s.contacts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return copyContact(contact), nil
}

func (s *Store) GetContactsByUserID(ctx context.Context, userID uint) ([]database.EmergencyContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := sortedValues(s.contacts, func(c *database.EmergencyContact) bool {
		return c.UserID == userID
	})
	for i := range out {
		out[i] = *copyContact(&out[i])
	}
	return out, nil
}

func (s *Store) UpdateContact(ctx context.Context, id uint, update database.ContactUpdate) (*database.EmergencyContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, ok := s.contacts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	update.Apply(contact)
	contact.UpdatedAt = s.now()
	return copyContact(contact), nil
}

func (s *Store) DeleteContact(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.contacts, id)
	return nil
}

// Alert operations

func (s *Store) CreateAlert(ctx context.Context, alert *database.EmergencyAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	alert.ID = s.nextAlertID
	alert.CreatedAt = now
	alert.UpdatedAt = now
	s.nextAlertID++

	stored := *alert
	s.alerts[alert.ID] = &stored
	return nil
}

func (s *Store) GetAlert(ctx context.Context, id uint) (*database.EmergencyAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, ok := s.alerts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *alert
	return &out, nil
}

func (s *Store) GetAlertsByUserID(ctx context.Context, userID uint) ([]database.EmergencyAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.alerts, func(a *database.EmergencyAlert) bool {
		return a.UserID == userID
	}), nil
}

func (s *Store) DeactivateAlert(ctx context.Context, id uint) (*database.EmergencyAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if alert.IsActive {
		alert.IsActive = false
		alert.UpdatedAt = s.now()
	}
	out := *alert
	return &out, nil
}

// History operations

func (s *Store) CreateHistoryEvent(ctx context.Context, event database.HistoryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = s.nextHistoryID
	s.nextHistoryID++
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	s.history = append(s.history, event)
	return nil
}

func (s *Store) GetHistoryEvents(ctx context.Context, userID uint, limit int) ([]database.HistoryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := lo.Reverse(lo.Filter(s.history, func(e database.HistoryEvent, _ int) bool {
		return e.UserID == userID
	}))
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
