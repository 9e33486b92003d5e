package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/teamflow/internal/model"
)

// ListUsers returns a page of users. limit <= 0 uses the server default.
func (c *Client) ListUsers(ctx context.Context, skip, limit int) ([]model.User, error) {
	params := url.Values{}
	if skip > 0 {
		params.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var users []model.User
	if err := c.get(ctx, "/users", params, &users); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// GetUser returns a single user.
func (c *Client) GetUser(ctx context.Context, id model.ID) (model.User, error) {
	var user model.User
	if err := c.get(ctx, idPath("users", id), nil, &user); err != nil {
		return model.User{}, fmt.Errorf("getting user %s: %w", id, err)
	}
	return user, nil
}
