package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/jon4hz/safebadge/internal/database"
)

// GetUser returns the user with the given id.
func (e *Engine) GetUser(ctx context.Context, userID uint) (*database.User, error) {
	user, err := e.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound(MsgUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername resolves a username to a user.
func (e *Engine) GetUserByUsername(ctx context.Context, username string) (*database.User, error) {
	user, err := e.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound(MsgUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// AvatarURL returns the gravatar URL for an optional email, or "" when disabled.
func (e *Engine) AvatarURL(email *string) string {
	return e.gravatar.URLPtr(email)
}
