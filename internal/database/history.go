package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// HistoryEventType represents the type of an audit event.
type HistoryEventType string

const (
	// HistoryEventAlertCreated indicates an emergency alert was raised.
	HistoryEventAlertCreated HistoryEventType = "alert_created"
	// HistoryEventAlertDeactivated indicates an emergency alert was cancelled.
	HistoryEventAlertDeactivated HistoryEventType = "alert_deactivated"
	// HistoryEventContactCreated indicates an emergency contact was added.
	HistoryEventContactCreated HistoryEventType = "contact_created"
	// HistoryEventContactUpdated indicates an emergency contact was changed.
	HistoryEventContactUpdated HistoryEventType = "contact_updated"
	// HistoryEventContactDeleted indicates an emergency contact was removed.
	HistoryEventContactDeleted HistoryEventType = "contact_deleted"
	// HistoryEventAccessDenied indicates a user tried to touch a record owned by someone else.
	HistoryEventAccessDenied HistoryEventType = "access_denied"
)

// HistoryEvent is an entry of the audit trail.
type HistoryEvent struct {
	ID        uint             `gorm:"primarykey"`
	UserID    uint             `gorm:"not null;index"`
	EventType HistoryEventType `gorm:"not null;index"`
	AlertID   *uint
	ContactID *uint
	Message   string
	CreatedAt time.Time
}

func (c *Client) CreateHistoryEvent(ctx context.Context, event HistoryEvent) error {
	if err := c.db.WithContext(ctx).Create(&event).Error; err != nil {
		log.Error("failed to create history event", "error", err)
		return err
	}
	return nil
}

// GetHistoryEvents returns the newest events of a user first. A limit <= 0 returns all events.
func (c *Client) GetHistoryEvents(ctx context.Context, userID uint, limit int) ([]HistoryEvent, error) {
	var events []HistoryEvent
	query := c.db.WithContext(ctx).Where("user_id = ?", userID).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		log.Error("failed to get history events", "error", err)
		return nil, err
	}
	return events, nil
}
