package service

import (
	"context"

	"github.com/ManiEids/vef2hop2/domain"
)

// Store persists the record collections the services operate on. Remove
// methods return domain.ErrNotFound when the id is absent.
type Store interface {
	AllTasks(ctx context.Context) ([]domain.Task, error)
	PutTasks(ctx context.Context, tasks ...domain.Task) error
	RemoveTask(ctx context.Context, id string) error

	AllCategories(ctx context.Context) ([]domain.Category, error)
	PutCategory(ctx context.Context, c domain.Category) error
	RemoveCategory(ctx context.Context, id string) error

	AllTags(ctx context.Context) ([]domain.Tag, error)
	PutTag(ctx context.Context, t domain.Tag) error

	AllAccounts(ctx context.Context) ([]domain.Account, error)
	PutAccount(ctx context.Context, a domain.Account) error
}

// TokenIssuer signs and reads session tokens.
type TokenIssuer interface {
	Issue(u domain.User) (string, error)
	Parse(token string) (domain.User, error)
}
