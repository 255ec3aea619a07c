package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ManiEids/vef2hop2/domain"
	"github.com/ManiEids/vef2hop2/localstore"
	"github.com/ManiEids/vef2hop2/service"
)

// ErrBadCredentials is returned by Login for a wrong username or password.
var ErrBadCredentials = errors.New("wrong username or password")

// Login authenticates with an email or username and stores the token.
func (c *Client) Login(ctx context.Context, login, password string) (domain.Session, error) {
	creds := domain.Credentials{Login: login, Password: password}
	session, err := withFallback(ctx, c, "login",
		func(ctx context.Context) (domain.Session, error) {
			var s domain.Session
			err := c.fetch(ctx, http.MethodPost, "/users/login", creds, &s)
			return s, err
		},
		func(ctx context.Context, m *service.Service) (domain.Session, error) {
			return m.Login(ctx, creds)
		})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return domain.Session{}, fmt.Errorf("%w: %w", ErrBadCredentials, err)
		}
		return domain.Session{}, err
	}
	if err := localstore.SaveToken(ctx, c.Tokens, session.Token); err != nil {
		return domain.Session{}, fmt.Errorf("store token: %w", err)
	}
	return session, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	return withFallback(ctx, c, "register",
		func(ctx context.Context) (domain.User, error) {
			var u domain.User
			err := c.fetch(ctx, http.MethodPost, "/users/register", reg, &u)
			return u, err
		},
		func(ctx context.Context, m *service.Service) (domain.User, error) {
			return m.Register(ctx, reg)
		})
}

// Me returns the logged-in user.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	token, err := localstore.LoadToken(ctx, c.Tokens)
	if err != nil {
		return domain.User{}, err
	}
	if token == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	return withFallback(ctx, c, "me",
		func(ctx context.Context) (domain.User, error) {
			var u domain.User
			err := c.fetch(ctx, http.MethodGet, "/users/me", nil, &u)
			return u, err
		},
		func(ctx context.Context, m *service.Service) (domain.User, error) {
			return m.CurrentUser(ctx, token)
		})
}

// Logout forgets the stored token.
func (c *Client) Logout(ctx context.Context) error {
	return localstore.ClearToken(ctx, c.Tokens)
}
