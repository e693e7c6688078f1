package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/safebadge/internal/database"
)

// DefaultHistoryLimit is the number of events returned when no limit is requested.
const DefaultHistoryLimit = 100

// recordHistory stores an audit event. Failures are logged, they never fail the operation.
func (e *Engine) recordHistory(ctx context.Context, event database.HistoryEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = e.clock.Now()
	}
	if err := e.db.CreateHistoryEvent(ctx, event); err != nil {
		log.Error("Failed to record history event", "type", event.EventType, "user_id", event.UserID, "error", err)
	}
}

// GetHistory returns the newest audit events of a user first.
func (e *Engine) GetHistory(ctx context.Context, userID uint, limit int) ([]database.HistoryEvent, error) {
	if _, err := e.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	events, err := e.db.GetHistoryEvents(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return events, nil
}
