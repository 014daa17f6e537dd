package gong

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sderosiaux/gong-to-github/internal/domain/entities"
)

// ListUsers returns every Gong user. The users endpoint is paginated once per
// process lifetime; subsequent calls are served from the cache. The cache has
// no expiry and no invalidation.
func (c *Client) ListUsers(ctx context.Context) ([]entities.User, error) {
	if c.usersReady {
		return c.users, nil
	}

	var users []entities.User
	byID := make(map[string]entities.User)

	pages := c.paginate(ctx, http.MethodGet, "/users", nil, nil, "users")
	for pages.Next() {
		var user entities.User
		if err := json.Unmarshal(pages.Item(), &user); err != nil {
			return nil, err
		}
		users = append(users, user)
		byID[user.ID] = user
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}

	c.users = users
	c.usersByID = byID
	c.usersReady = true
	c.logger.Debug("user directory cached", zap.Int("users", len(users)))
	return c.users, nil
}

// GetUserByID looks a user up by identifier, filling the cache first if
// needed. Returns nil when the user is unknown.
func (c *Client) GetUserByID(ctx context.Context, userID string) (*entities.User, error) {
	if !c.usersReady {
		if _, err := c.ListUsers(ctx); err != nil {
			return nil, err
		}
	}
	user, ok := c.usersByID[userID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}
