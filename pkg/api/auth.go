package api

import (
	"context"
	"errors"
	"net/http"

	"courseadmin/pkg/user"
)

var errNoAccessToken = errors.New("backend returned no access token")

func (c *Client) Login(ctx context.Context, form user.LoginForm) (user.Tokens, error) {
	var tokens user.Tokens
	if err := c.do(ctx, c.public, http.MethodPost, "/auth/login", form, &tokens); err != nil {
		return user.Tokens{}, err
	}
	if tokens.AccessToken == "" {
		return user.Tokens{}, errNoAccessToken
	}
	return tokens, nil
}

func (c *Client) Register(ctx context.Context, form user.RegisterForm) (user.Tokens, error) {
	body := struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
		Role     int    `json:"role"`
	}{
		Email:    form.Email,
		Username: form.Username,
		Password: form.Password,
		Role:     user.RoleCode(form.Role),
	}

	var tokens user.Tokens
	if err := c.do(ctx, c.public, http.MethodPost, "/auth/register", body, &tokens); err != nil {
		return user.Tokens{}, err
	}
	if tokens.AccessToken == "" {
		return user.Tokens{}, errNoAccessToken
	}
	return tokens, nil
}
