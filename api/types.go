package api

import (
	"context"

	"github.com/ManiEids/vef2hop2/domain"
)

// Authenticator resolves the caller from an Authorization header value.
type Authenticator interface {
	UserFromAuthHeader(string) (domain.User, error)
}

// Deduper records idempotency keys so a retried create is not applied twice.
type Deduper interface {
	// Add records the key and returns true if it was newly added.
	Add(ctx context.Context, scope, key string) (bool, error)
	// Remove deletes a previously added key, used when the create fails.
	Remove(ctx context.Context, scope, key string) error
}
