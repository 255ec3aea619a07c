// Package client calls the Verkefnalisti HTTP API and falls back to a local
// service when the API is unreachable or lacks the endpoint.
package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ManiEids/vef2hop2/domain"
	"github.com/ManiEids/vef2hop2/localstore"
	"github.com/ManiEids/vef2hop2/service"
)

const defaultTimeout = 15 * time.Second

var errNoBackend = errors.New("no API URL and no local fallback configured")

// Client is the data layer used by front ends.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Tokens stores the session token under localstore.TokenKey.
	Tokens localstore.KV
	// Mock serves requests when the API is unavailable. It may be nil.
	Mock   *service.Service
	Logger *log.Logger
}

// New creates a Client. baseURL may be empty, in which case every call is
// served by mock.
func New(baseURL string, tokens localstore.KV, mock *service.Service, logger *log.Logger) *Client {
	if tokens == nil {
		tokens = localstore.NewMemoryKV()
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: defaultTimeout},
		Tokens:  tokens,
		Mock:    mock,
		Logger:  logger,
	}
}

func shouldFallback(err error) bool {
	return errors.Is(err, ErrEndpointNotFound) || errors.Is(err, ErrNetwork)
}

// withFallback runs remote, or local against the mock service when remote
// cannot be reached.
func withFallback[T any](ctx context.Context, c *Client, op string, remote func(context.Context) (T, error), local func(context.Context, *service.Service) (T, error)) (T, error) {
	if c.BaseURL == "" {
		if c.Mock == nil {
			var zero T
			return zero, errNoBackend
		}
		return local(ctx, c.Mock)
	}
	v, err := remote(ctx)
	if err == nil || c.Mock == nil || !shouldFallback(err) {
		return v, err
	}
	c.Logger.WithError(err).WithField("op", op).Warn("API unavailable, using local data")
	return local(ctx, c.Mock)
}

// localActor resolves the stored token against the mock service. It returns
// nil when no valid token is stored.
func (c *Client) localActor(ctx context.Context, mock *service.Service) *domain.User {
	token, err := localstore.LoadToken(ctx, c.Tokens)
	if err != nil || token == "" {
		return nil
	}
	u, err := mock.CurrentUser(ctx, token)
	if err != nil {
		return nil
	}
	return &u
}
