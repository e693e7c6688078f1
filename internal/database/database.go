package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned by every repository implementation when a record does not exist.
var ErrNotFound = errors.New("record not found")

var _ DB = (*Client)(nil) // Ensure Client implements DB

// DB is the repository used by the engine. Implementations own id generation
// and hand out copies of their records, never references into their storage.
type DB interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// Device settings
	CreateDeviceSettings(ctx context.Context, settings *DeviceSettings) error
	GetDeviceSettings(ctx context.Context, userID uint) (*DeviceSettings, error)
	GetAllDeviceSettings(ctx context.Context) ([]DeviceSettings, error)
	UpdateDeviceSettings(ctx context.Context, userID uint, update DeviceSettingsUpdate) (*DeviceSettings, error)
	UpdateBatteryLevel(ctx context.Context, userID uint, level int) (*DeviceSettings, error)
	UpdateLastLocation(ctx context.Context, userID uint, location Location) (*DeviceSettings, error)

	// Emergency contacts
	CreateContact(ctx context.Context, contact *EmergencyContact) error
	GetContact(ctx context.Context, id uint) (*EmergencyContact, error)
	GetContactsByUserID(ctx context.Context, userID uint) ([]EmergencyContact, error)
	UpdateContact(ctx context.Context, id uint, update ContactUpdate) (*EmergencyContact, error)
	DeleteContact(ctx context.Context, id uint) error

	// Emergency alerts
	CreateAlert(ctx context.Context, alert *EmergencyAlert) error
	GetAlert(ctx context.Context, id uint) (*EmergencyAlert, error)
	GetAlertsByUserID(ctx context.Context, userID uint) ([]EmergencyAlert, error)
	DeactivateAlert(ctx context.Context, id uint) (*EmergencyAlert, error)

	// History
	CreateHistoryEvent(ctx context.Context, event HistoryEvent) error
	GetHistoryEvents(ctx context.Context, userID uint, limit int) ([]HistoryEvent, error)

	Close() error
}

// Client is the sqlite backed implementation of DB. It wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection and performs migrations.
func New(dbpath string) (*Client, error) {
	db, err := gorm.Open(sqlite.Open(dbpath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&User{},
		&DeviceSettings{},
		&EmergencyContact{},
		&EmergencyAlert{},
		&HistoryEvent{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Client{db: db}, nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translateError maps gorm errors onto the repository errors.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
