package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ManiEids/vef2hop2/domain"
)

var errNoTokens = errors.New("token issuer not configured")

// Register creates a non-admin account. The username defaults to the email
// and is checked for uniqueness after defaulting, so no login is ambiguous.
func (s *Service) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	if err := domain.Validate(reg); err != nil {
		return domain.User{}, err
	}
	if reg.Username == "" {
		reg.Username = reg.Email
	}
	accounts, err := s.store.AllAccounts(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("register: %w", err)
	}
	for _, a := range accounts {
		if a.Email == reg.Email || a.Username == reg.Username {
			return domain.User{}, fmt.Errorf("user %s: %w", reg.Email, domain.ErrConflict)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.opts.PasswordCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("register: %w", err)
	}
	acc := domain.Account{
		User: domain.User{
			ID:       s.newID(),
			Username: reg.Username,
			Name:     reg.Name,
			Email:    reg.Email,
		},
		PasswordHash: string(hash),
	}
	if err := s.store.PutAccount(ctx, acc); err != nil {
		return domain.User{}, fmt.Errorf("register: %w", err)
	}
	s.logger.WithField("user", acc.ID).Info("user registered")
	return acc.User, nil
}

// Login checks credentials against email or username and issues a token.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if err := domain.Validate(creds); err != nil {
		return domain.Session{}, err
	}
	if s.tokens == nil {
		return domain.Session{}, errNoTokens
	}
	accounts, err := s.store.AllAccounts(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}
	for _, a := range accounts {
		if a.Email != creds.Login && a.Username != creds.Login {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(creds.Password)) != nil {
			break
		}
		token, err := s.tokens.Issue(a.User)
		if err != nil {
			return domain.Session{}, fmt.Errorf("login: %w", err)
		}
		return domain.Session{Token: token, User: a.User}, nil
	}
	return domain.Session{}, fmt.Errorf("%w: wrong username or password", domain.ErrUnauthorized)
}

// CurrentUser resolves the user a token was issued to.
func (s *Service) CurrentUser(_ context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	if s.tokens == nil {
		return domain.User{}, errNoTokens
	}
	u, err := s.tokens.Parse(token)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return u, nil
}
