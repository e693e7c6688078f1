package engine

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to classify an error returned by the engine.
var (
	// ErrNotFound indicates that the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates that the entity exists but belongs to another user.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates malformed or out of range input.
	ErrValidation = errors.New("validation failed")
)

// Error is an expected failure of an engine operation. Message is safe to show to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func notFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

func invalid(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Client visible messages.
const (
	MsgUserNotFound     = "User not found"
	MsgSettingsNotFound = "Device settings not found"
	MsgContactNotFound  = "Contact not found"
	MsgAlertNotFound    = "Alert not found"
	MsgInvalidBattery   = "Invalid battery level"
	MsgInvalidLocation  = "Invalid location data"
	MsgContactRequired  = "Name and phone are required"
	MsgDeviceInactive   = "Device is not active"
	MsgUnexpected       = "An unexpected error occurred"
)

// ErrDeviceInactive is returned when an alert is requested while the badge is switched off.
var ErrDeviceInactive = &Error{Kind: ErrValidation, Message: MsgDeviceInactive}
