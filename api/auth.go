package api

import (
	"fmt"

	"github.com/ManiEids/vef2hop2/auth"
	"github.com/ManiEids/vef2hop2/domain"
	"github.com/ManiEids/vef2hop2/service"
)

type tokenAuthenticator struct {
	tokens service.TokenIssuer
}

// NewAuthenticator checks bearer tokens with tokens.
func NewAuthenticator(tokens service.TokenIssuer) Authenticator {
	if tokens == nil {
		panic("api.NewAuthenticator: tokens is nil")
	}
	return tokenAuthenticator{tokens: tokens}
}

func (a tokenAuthenticator) UserFromAuthHeader(h string) (domain.User, error) {
	token, err := auth.BearerToken(h)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	u, err := a.tokens.Parse(token)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return u, nil
}
