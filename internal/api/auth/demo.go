package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/safebadge/internal/api/models"
	"github.com/jon4hz/safebadge/internal/database"
	"github.com/jon4hz/safebadge/internal/engine"
)

// UserResolver looks up users by name.
type UserResolver interface {
	GetUserByUsername(ctx context.Context, username string) (*database.User, error)
}

// DemoProvider authenticates every request as the configured demo user.
// No header, cookie or token is consulted.
type DemoProvider struct {
	users    UserResolver
	username string
}

// NewDemoProvider creates a provider for the given demo username.
func NewDemoProvider(users UserResolver, username string) *DemoProvider {
	return &DemoProvider{
		users:    users,
		username: username,
	}
}

// RequireAuth resolves the demo user and stores it in the gin context under "user".
func (p *DemoProvider) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := p.users.GetUserByUsername(c.Request.Context(), p.username)
		if err != nil {
			if errors.Is(err, engine.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, models.ErrorResponse{Message: engine.MsgUserNotFound})
				return
			}
			log.Error("Failed to resolve demo user", "username", p.username, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Message: engine.MsgUnexpected})
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(c *gin.Context) *database.User {
	return c.MustGet("user").(*database.User)
}
