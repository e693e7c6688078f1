package memory

import (
	"context"
	"testing"

	"github.com/jon4hz/safebadge/internal/database"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, username string) *database.User {
	t.Helper()
	user := &database.User{Username: username, Password: "password", FullName: "Demo User"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := New()

	demo := seedUser(t, s, "demo")
	other := seedUser(t, s, "other")
	assert.Equal(t, uint(1), demo.ID)
	assert.Equal(t, uint(2), other.ID)

	got, err := s.GetUserByUsername(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, demo.ID, got.ID)

	_, err = s.GetUserByID(ctx, 99)
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, database.ErrNotFound)

	assert.Error(t, s.CreateUser(ctx, &database.User{Username: "demo"}))
}

func TestStore_DeviceSettings(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := seedUser(t, s, "demo")

	require.NoError(t, s.CreateDeviceSettings(ctx, &database.DeviceSettings{
		UserID:       user.ID,
		IsActive:     true,
		BatteryLevel: 85,
		SMSAlerts:    true,
		SoundAlarm:   true,
		LastLocation: &database.Location{Latitude: 40.7128, Longitude: -74.0060, Address: "New York, NY, USA"},
	}))
	assert.Error(t, s.CreateDeviceSettings(ctx, &database.DeviceSettings{UserID: user.ID}))

	updated, err := s.UpdateDeviceSettings(ctx, user.ID, database.DeviceSettingsUpdate{SoundAlarm: lo.ToPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.SoundAlarm)
	assert.True(t, updated.IsActive)
	assert.True(t, updated.SMSAlerts)
	assert.Equal(t, 85, updated.BatteryLevel)

	updated, err = s.UpdateBatteryLevel(ctx, user.ID, 84)
	require.NoError(t, err)
	assert.Equal(t, 84, updated.BatteryLevel)

	updated, err = s.UpdateLastLocation(ctx, user.ID, database.Location{Latitude: 1, Longitude: 2, Address: "1, 2"})
	require.NoError(t, err)
	assert.Equal(t, "1, 2", updated.LastLocation.Address)

	// mutating a returned copy must not leak into the store
	updated.LastLocation.Address = "tampered"
	updated.BatteryLevel = 0
	fresh, err := s.GetDeviceSettings(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "1, 2", fresh.LastLocation.Address)
	assert.Equal(t, 84, fresh.BatteryLevel)

	all, err := s.GetAllDeviceSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_DeviceSettingsMissing(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.UpdateDeviceSettings(ctx, 1, database.DeviceSettingsUpdate{IsActive: lo.ToPtr(true)})
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = s.UpdateBatteryLevel(ctx, 1, 50)
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = s.UpdateLastLocation(ctx, 1, database.Location{})
	assert.ErrorIs(t, err, database.ErrNotFound)

	// updates never create a record
	_, err = s.GetDeviceSettings(ctx, 1)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestStore_Contacts(t *testing.T) {
	ctx := context.Background()
	s := New()
	demo := seedUser(t, s, "demo")
	other := seedUser(t, s, "other")

	first := &database.EmergencyContact{UserID: demo.ID, Name: "Alice", Phone: "+111"}
	second := &database.EmergencyContact{UserID: demo.ID, Name: "Bob", Phone: "+222", Email: lo.ToPtr("bob@example.com")}
	foreign := &database.EmergencyContact{UserID: other.ID, Name: "Eve", Phone: "+333"}
	for _, c := range []*database.EmergencyContact{first, second, foreign} {
		require.NoError(t, s.CreateContact(ctx, c))
	}
	assert.Equal(t, uint(1), first.ID)
	assert.Equal(t, uint(3), foreign.ID)

	contacts, err := s.GetContactsByUserID(ctx, demo.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, lo.Map(contacts, func(c database.EmergencyContact, _ int) string { return c.Name }))

	updated, err := s.UpdateContact(ctx, second.ID, database.ContactUpdate{Phone: lo.ToPtr("+999")})
	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.Name)
	assert.Equal(t, "+999", updated.Phone)
	assert.Equal(t, "bob@example.com", *updated.Email)

	require.NoError(t, s.DeleteContact(ctx, first.ID))
	assert.ErrorIs(t, s.DeleteContact(ctx, first.ID), database.ErrNotFound)
	_, err = s.UpdateContact(ctx, first.ID, database.ContactUpdate{})
	assert.ErrorIs(t, err, database.ErrNotFound)

	// ids are never reused
	next := &database.EmergencyContact{UserID: demo.ID, Name: "Carol", Phone: "+444"}
	require.NoError(t, s.CreateContact(ctx, next))
	assert.Equal(t, uint(4), next.ID)
}

func TestStore_Alerts(t *testing.T) {
	ctx := context.Background()
	s := New()
	demo := seedUser(t, s, "demo")

	alert := &database.EmergencyAlert{UserID: demo.ID, Location: database.UnknownLocation, IsActive: true}
	require.NoError(t, s.CreateAlert(ctx, alert))
	require.NoError(t, s.CreateAlert(ctx, &database.EmergencyAlert{UserID: demo.ID, IsActive: true}))

	alerts, err := s.GetAlertsByUserID(ctx, demo.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, uint(1), alerts[0].ID)

	deactivated, err := s.DeactivateAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	again, err := s.DeactivateAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive)

	_, err = s.DeactivateAlert(ctx, 42)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestStore_History(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, et := range []database.HistoryEventType{
		database.HistoryEventContactCreated,
		database.HistoryEventAlertCreated,
		database.HistoryEventAlertDeactivated,
	} {
		require.NoError(t, s.CreateHistoryEvent(ctx, database.HistoryEvent{UserID: 1, EventType: et}))
	}
	require.NoError(t, s.CreateHistoryEvent(ctx, database.HistoryEvent{UserID: 2, EventType: database.HistoryEventAccessDenied}))

	events, err := s.GetHistoryEvents(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, database.HistoryEventAlertDeactivated, events[0].EventType)
	assert.Equal(t, database.HistoryEventAlertCreated, events[1].EventType)

	events, err = s.GetHistoryEvents(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestStore_Reset(t *testing.T) {
	s := New()
	seedUser(t, s, "demo")
	s.Reset()

	user := seedUser(t, s, "demo")
	assert.Equal(t, uint(1), user.ID)
}
