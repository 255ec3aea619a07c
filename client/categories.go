package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ManiEids/vef2hop2/domain"
	"github.com/ManiEids/vef2hop2/service"
)

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return withFallback(ctx, c, "list categories",
		func(ctx context.Context) ([]domain.Category, error) {
			var cats []domain.Category
			err := c.fetch(ctx, http.MethodGet, "/categories", nil, &cats)
			return cats, err
		},
		func(ctx context.Context, m *service.Service) ([]domain.Category, error) {
			return m.ListCategories(ctx)
		})
}

func (c *Client) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	return withFallback(ctx, c, "get category",
		func(ctx context.Context) (domain.Category, error) {
			var cat domain.Category
			err := c.fetch(ctx, http.MethodGet, "/categories/"+url.PathEscape(id), nil, &cat)
			return cat, err
		},
		func(ctx context.Context, m *service.Service) (domain.Category, error) {
			return m.GetCategory(ctx, id)
		})
}

func (c *Client) CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, error) {
	return withFallback(ctx, c, "create category",
		func(ctx context.Context) (domain.Category, error) {
			var cat domain.Category
			err := c.fetch(ctx, http.MethodPost, "/categories", in, &cat)
			return cat, err
		},
		func(ctx context.Context, m *service.Service) (domain.Category, error) {
			return m.CreateCategory(ctx, c.localActor(ctx, m), in)
		})
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in domain.CategoryInput) (domain.Category, error) {
	return withFallback(ctx, c, "update category",
		func(ctx context.Context) (domain.Category, error) {
			var cat domain.Category
			err := c.fetch(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), in, &cat)
			return cat, err
		},
		func(ctx context.Context, m *service.Service) (domain.Category, error) {
			return m.UpdateCategory(ctx, c.localActor(ctx, m), id, in)
		})
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, err := withFallback(ctx, c, "delete category",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.fetch(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil)
		},
		func(ctx context.Context, m *service.Service) (struct{}, error) {
			return struct{}{}, m.DeleteCategory(ctx, c.localActor(ctx, m), id)
		})
	return err
}

func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return withFallback(ctx, c, "list tags",
		func(ctx context.Context) ([]domain.Tag, error) {
			var tags []domain.Tag
			err := c.fetch(ctx, http.MethodGet, "/tags", nil, &tags)
			return tags, err
		},
		func(ctx context.Context, m *service.Service) ([]domain.Tag, error) {
			return m.ListTags(ctx)
		})
}

func (c *Client) CreateTag(ctx context.Context, name string) (domain.Tag, error) {
	in := domain.TagInput{Name: name}
	return withFallback(ctx, c, "create tag",
		func(ctx context.Context) (domain.Tag, error) {
			var tag domain.Tag
			err := c.fetch(ctx, http.MethodPost, "/tags", in, &tag)
			return tag, err
		},
		func(ctx context.Context, m *service.Service) (domain.Tag, error) {
			return m.CreateTag(ctx, in)
		})
}
