// Package auth issues and verifies the session tokens carried in the
// Authorization header.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"github.com/ManiEids/vef2hop2/domain"
)

const (
	DefaultTTL          = 24 * time.Hour
	defaultJWKSCacheTTL = 15 * time.Minute
)

var (
	errIssueUnsupported = errors.New("tokens are verified against a JWKS and cannot be issued locally")
	errMissingSubject   = errors.New("missing sub")
)

type claims struct {
	jwt.RegisteredClaims
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Admin    bool   `json:"admin,omitempty"`
}

// Tokens signs HS256 session tokens, or verifies RS256 tokens against a
// remote JWKS when built with NewJWKSTokens.
type Tokens struct {
	Audience string
	Issuer   string
	TTL      time.Duration

	secret []byte
	jwks   *keyfunc.JWKS
	parser *jwt.Parser
	now    func() time.Time

	keyCache    sync.Map
	keyCacheTTL time.Duration
}

type cachedKey struct {
	key       any
	expiresAt time.Time
}

// NewTokens creates an HS256 issuer. ttl <= 0 uses DefaultTTL.
func NewTokens(secret []byte, ttl time.Duration, audience, issuer string) *Tokens {
	if len(secret) == 0 {
		panic("auth.NewTokens: secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{
		Audience: audience,
		Issuer:   issuer,
		TTL:      ttl,
		secret:   secret,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
		now:      time.Now,
	}
}

// NewJWKSTokens creates a verify-only instance backed by jwks.
func NewJWKSTokens(jwks *keyfunc.JWKS, audience, issuer string) *Tokens {
	if jwks == nil {
		panic("auth.NewJWKSTokens: jwks is nil")
	}
	return &Tokens{
		Audience:    audience,
		Issuer:      issuer,
		jwks:        jwks,
		parser:      jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
		now:         time.Now,
		keyCacheTTL: defaultJWKSCacheTTL,
	}
}

// Issue signs a token for u.
func (t *Tokens) Issue(u domain.User) (string, error) {
	if t.secret == nil {
		return "", errIssueUnsupported
	}
	now := t.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    t.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.TTL)),
		},
		Name:     u.Name,
		Email:    u.Email,
		Username: u.Username,
		Admin:    u.Admin,
	}
	if t.Audience != "" {
		c.Audience = jwt.ClaimStrings{t.Audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns the user it was issued to.
func (t *Tokens) Parse(token string) (domain.User, error) {
	var c claims
	_, err := t.parser.ParseWithClaims(token, &c, t.key)
	if err != nil {
		return domain.User{}, err
	}
	if t.Audience != "" && !c.VerifyAudience(t.Audience, true) {
		return domain.User{}, errors.New("invalid audience")
	}
	if t.Issuer != "" && !c.VerifyIssuer(t.Issuer, true) {
		return domain.User{}, errors.New("invalid issuer")
	}
	if c.Subject == "" {
		return domain.User{}, errMissingSubject
	}
	return domain.User{
		ID:       c.Subject,
		Username: c.Username,
		Name:     c.Name,
		Email:    c.Email,
		Admin:    c.Admin,
	}, nil
}

func (t *Tokens) key(token *jwt.Token) (any, error) {
	if t.secret != nil {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	}

	kid, _ := token.Header["kid"].(string)
	if kid != "" && t.keyCacheTTL > 0 {
		if cached, ok := t.keyCache.Load(kid); ok {
			entry := cached.(cachedKey)
			if t.now().Before(entry.expiresAt) {
				return entry.key, nil
			}
			t.keyCache.Delete(kid)
		}
	}
	key, err := t.jwks.Keyfunc(token)
	if err != nil {
		return nil, err
	}
	if kid != "" && t.keyCacheTTL > 0 {
		t.keyCache.Store(kid, cachedKey{key: key, expiresAt: t.now().Add(t.keyCacheTTL)})
	}
	return key, nil
}
