package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
)

// Login exchanges credentials for a bearer token. It does not need a token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	env, err := c.do(ctx, call{
		op:     "auth.login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   models.LoginInput{Email: email, Password: password},
		public: true,
	}, nil)
	if err != nil {
		return nil, err
	}

	result := &models.LoginResult{Token: env.Token}
	if len(env.User) > 0 {
		if err := json.Unmarshal(env.User, &result.User); err != nil {
			return nil, &apperr.TransportError{Op: "auth.login", Err: fmt.Errorf("failed to decode user: %w", err)}
		}
	}
	if result.Token == "" && len(env.Data) > 0 {
		// Some deployments nest the login result under data.
		var nested models.LoginResult
		if err := json.Unmarshal(env.Data, &nested); err == nil {
			result = &nested
		}
	}
	if result.Token == "" {
		return nil, &apperr.TransportError{Op: "auth.login", Err: errors.New("response carried no token")}
	}
	return result, nil
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if _, err := c.do(ctx, call{op: "auth.me", method: http.MethodGet, path: "/auth/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
