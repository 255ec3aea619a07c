package auth

import (
	"errors"
	"strings"
)

var (
	ErrMissingAuthorization = errors.New("missing authorization header")
	ErrBadAuthorization     = errors.New("bad auth header")
)

const bearerPrefix = "Bearer "

// BearerToken extracts the JWT from an Authorization header value.
func BearerToken(header string) (string, error) {
	raw := strings.Trim(header, " ")
	if raw == "" {
		return "", ErrMissingAuthorization
	}
	if len(raw) <= len(bearerPrefix) || !strings.HasPrefix(raw, bearerPrefix) {
		return "", ErrBadAuthorization
	}
	token := raw[len(bearerPrefix):]
	if strings.Count(token, ".") != 2 {
		return "", ErrBadAuthorization
	}
	return token, nil
}
