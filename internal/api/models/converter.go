package models

import (
	"github.com/jon4hz/safebadge/internal/database"
	"github.com/samber/lo"
)

// AvatarFunc resolves the avatar URL of an email address. It returns an empty string if avatars are disabled.
type AvatarFunc func(email *string) string

// ToUser converts a database.User to its public profile.
func ToUser(u *database.User, avatar AvatarFunc) User {
	user := User{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Phone:    u.Phone,
		Email:    u.Email,
	}
	if avatar != nil {
		user.AvatarURL = avatar(u.Email)
	}
	return user
}

func toLocation(l database.Location) Location {
	return Location{
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Address:   l.Address,
	}
}

// ToDeviceSettings converts database.DeviceSettings for the API.
func ToDeviceSettings(s *database.DeviceSettings) DeviceSettings {
	settings := DeviceSettings{
		ID:                s.ID,
		UserID:            s.UserID,
		IsActive:          s.IsActive,
		BatteryLevel:      s.BatteryLevel,
		LocationSharing:   s.LocationSharing,
		SMSAlerts:         s.SMSAlerts,
		EmergencyServices: s.EmergencyServices,
		SoundAlarm:        s.SoundAlarm,
	}
	if s.LastLocation != nil {
		settings.LastLocation = lo.ToPtr(toLocation(*s.LastLocation))
	}
	return settings
}

// ToContact converts a database.EmergencyContact for the API.
func ToContact(c database.EmergencyContact, avatar AvatarFunc) Contact {
	contact := Contact{
		ID:     c.ID,
		UserID: c.UserID,
		Name:   c.Name,
		Phone:  c.Phone,
		Email:  c.Email,
	}
	if avatar != nil {
		contact.AvatarURL = avatar(c.Email)
	}
	return contact
}

// ToContacts converts a slice of database.EmergencyContact. The result is never nil.
func ToContacts(contacts []database.EmergencyContact, avatar AvatarFunc) []Contact {
	result := make([]Contact, len(contacts))
	for i, c := range contacts {
		result[i] = ToContact(c, avatar)
	}
	return result
}

// ToAlert converts a database.EmergencyAlert for the API.
func ToAlert(a *database.EmergencyAlert) Alert {
	return Alert{
		ID:        a.ID,
		UserID:    a.UserID,
		Timestamp: a.Timestamp,
		Location:  toLocation(a.Location),
		IsActive:  a.IsActive,
	}
}

// ToAlerts converts a slice of database.EmergencyAlert. The result is never nil.
func ToAlerts(alerts []database.EmergencyAlert) []Alert {
	result := make([]Alert, len(alerts))
	for i := range alerts {
		result[i] = ToAlert(&alerts[i])
	}
	return result
}

// ToHistoryEvents converts the audit trail for the API. The result is never nil.
func ToHistoryEvents(events []database.HistoryEvent) []HistoryEvent {
	return lo.Map(events, func(e database.HistoryEvent, _ int) HistoryEvent {
		return HistoryEvent{
			ID:        e.ID,
			EventType: string(e.EventType),
			AlertID:   e.AlertID,
			ContactID: e.ContactID,
			Message:   e.Message,
			CreatedAt: e.CreatedAt,
		}
	})
}

// SettingsUpdate converts the request into a partial settings update.
func (r UpdateSettingsRequest) SettingsUpdate() database.DeviceSettingsUpdate {
	return database.DeviceSettingsUpdate{
		IsActive:          r.IsActive,
		LocationSharing:   r.LocationSharing,
		SMSAlerts:         r.SMSAlerts,
		EmergencyServices: r.EmergencyServices,
		SoundAlarm:        r.SoundAlarm,
	}
}

// ContactUpdate converts the request into a partial contact update.
func (r UpdateContactRequest) ContactUpdate() database.ContactUpdate {
	return database.ContactUpdate{
		Name:  r.Name,
		Phone: r.Phone,
		Email: r.Email,
	}
}
