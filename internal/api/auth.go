package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/teamflow/internal/model"
)

// Login exchanges credentials for a token pair. The token endpoint is an
// OAuth2 password flow and expects form-encoded data, not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (model.TokenPair, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var pair model.TokenPair
	if err := c.postForm(ctx, "/auth/login", form, &pair); err != nil {
		return model.TokenPair{}, fmt.Errorf("logging in as %q: %w", username, err)
	}
	if pair.AccessToken == "" {
		return model.TokenPair{}, fmt.Errorf("logging in as %q: empty access token in response", username)
	}
	return pair, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	var user model.User
	if err := c.post(ctx, "/auth/register", reg, &user); err != nil {
		return model.User{}, fmt.Errorf("registering %q: %w", reg.Username, err)
	}
	return user, nil
}

// Me returns the user owning the current access token.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var user model.User
	if err := c.get(ctx, "/auth/me", nil, &user); err != nil {
		return model.User{}, fmt.Errorf("getting current user: %w", err)
	}
	return user, nil
}

// Refresh trades a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var pair model.TokenPair
	if err := c.post(ctx, "/auth/refresh", body, &pair); err != nil {
		return model.TokenPair{}, fmt.Errorf("refreshing token: %w", err)
	}
	return pair, nil
}
