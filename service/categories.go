package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManiEids/vef2hop2/domain"
)

// ListCategories returns all categories with their live task counts.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.store.AllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	tasks, err := s.store.AllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	counts := domain.CountTasks(tasks).Categories
	out := make([]domain.Category, len(cats))
	for i, c := range cats {
		c.TaskCount = counts[c.ID]
		out[i] = c
	}
	return out, nil
}

// GetCategory returns a category by id.
func (s *Service) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	cats, err := s.store.AllCategories(ctx)
	if err != nil {
		return domain.Category{}, fmt.Errorf("get category: %w", err)
	}
	for _, c := range cats {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Category{}, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
}

// CreateCategory adds a category. Only admins may create categories and
// names are unique regardless of case.
func (s *Service) CreateCategory(ctx context.Context, actor *domain.User, in domain.CategoryInput) (domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Category{}, err
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return domain.Category{}, fmt.Errorf("%w: name is required", domain.ErrInvalid)
	}
	if err := domain.Validate(in); err != nil {
		return domain.Category{}, err
	}
	cats, err := s.store.AllCategories(ctx)
	if err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	if nameTaken(cats, *in.Name, "") {
		return domain.Category{}, fmt.Errorf("category %q: %w", *in.Name, domain.ErrConflict)
	}
	c := domain.Category{ID: s.newID(), Name: strings.TrimSpace(*in.Name)}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if err := s.store.PutCategory(ctx, c); err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// UpdateCategory merges in over a stored category. Admin only.
func (s *Service) UpdateCategory(ctx context.Context, actor *domain.User, id string, in domain.CategoryInput) (domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Category{}, err
	}
	if err := domain.Validate(in); err != nil {
		return domain.Category{}, err
	}
	cats, err := s.store.AllCategories(ctx)
	if err != nil {
		return domain.Category{}, fmt.Errorf("update category: %w", err)
	}
	var (
		c     domain.Category
		found bool
	)
	for _, v := range cats {
		if v.ID == id {
			c, found = v, true
			break
		}
	}
	if !found {
		return domain.Category{}, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.Category{}, fmt.Errorf("%w: name must not be empty", domain.ErrInvalid)
		}
		if nameTaken(cats, name, id) {
			return domain.Category{}, fmt.Errorf("category %q: %w", name, domain.ErrConflict)
		}
		c.Name = name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if err := s.store.PutCategory(ctx, c); err != nil {
		return domain.Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category. Tasks keep their dangling reference.
func (s *Service) DeleteCategory(ctx context.Context, actor *domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.store.RemoveCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}

// ListTags returns the stored tags.
func (s *Service) ListTags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.store.AllTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// CreateTag adds a tag with a unique name.
func (s *Service) CreateTag(ctx context.Context, in domain.TagInput) (domain.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := domain.Validate(in); err != nil {
		return domain.Tag{}, err
	}
	tags, err := s.store.AllTags(ctx)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("create tag: %w", err)
	}
	for _, t := range tags {
		if strings.EqualFold(t.Name, in.Name) {
			return domain.Tag{}, fmt.Errorf("tag %q: %w", in.Name, domain.ErrConflict)
		}
	}
	t := domain.Tag{ID: s.newID(), Name: in.Name}
	if err := s.store.PutTag(ctx, t); err != nil {
		return domain.Tag{}, fmt.Errorf("create tag: %w", err)
	}
	return t, nil
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !actor.Admin {
		return domain.ErrForbidden
	}
	return nil
}

func nameTaken(cats []domain.Category, name, exceptID string) bool {
	for _, c := range cats {
		if c.ID != exceptID && strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
