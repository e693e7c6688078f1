package models

import "time"

// User is the public profile of a badge owner. The password never leaves the server.
type User struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	FullName  string  `json:"fullName"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	AvatarURL string  `json:"avatarUrl,omitempty"`
}

// Location is a point reported by the badge.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// DeviceSettings is the state of the simulated badge.
type DeviceSettings struct {
	ID                uint      `json:"id"`
	UserID            uint      `json:"userId"`
	IsActive          bool      `json:"isActive"`
	BatteryLevel      int       `json:"batteryLevel"`
	LocationSharing   bool      `json:"locationSharing"`
	SMSAlerts         bool      `json:"smsAlerts"`
	EmergencyServices bool      `json:"emergencyServices"`
	SoundAlarm        bool      `json:"soundAlarm"`
	LastLocation      *Location `json:"lastLocation"`
}

// Contact is an emergency contact of the badge owner.
type Contact struct {
	ID        uint    `json:"id"`
	UserID    uint    `json:"userId"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
	AvatarURL string  `json:"avatarUrl,omitempty"`
}

// Alert is an emergency alert raised by the badge.
type Alert struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	Location  Location  `json:"location"`
	IsActive  bool      `json:"isActive"`
}

// HistoryEvent is an entry of the audit trail.
type HistoryEvent struct {
	ID        uint      `json:"id"`
	EventType string    `json:"eventType"`
	AlertID   *uint     `json:"alertId,omitempty"`
	ContactID *uint     `json:"contactId,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateContactRequest is the body of POST /api/contacts.
type CreateContactRequest struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

// UpdateContactRequest is the body of PUT /api/contacts/:id. Omitted fields are left untouched.
type UpdateContactRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

// UpdateSettingsRequest is the body of PUT /api/device-settings. Omitted fields are left untouched.
type UpdateSettingsRequest struct {
	IsActive          *bool `json:"isActive,omitempty"`
	LocationSharing   *bool `json:"locationSharing,omitempty"`
	SMSAlerts         *bool `json:"smsAlerts,omitempty"`
	EmergencyServices *bool `json:"emergencyServices,omitempty"`
	SoundAlarm        *bool `json:"soundAlarm,omitempty"`
}

// BatteryRequest is the body of PUT /api/device-settings/battery.
type BatteryRequest struct {
	BatteryLevel *int `json:"batteryLevel"`
}

// LocationRequest is the body of PUT /api/device-settings/location.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address,omitempty"`
}

// SuccessResponse acknowledges an operation without a body of its own.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}
