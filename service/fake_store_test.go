package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ManiEids/vef2hop2/domain"
)

type fakeStore struct {
	tasks      []domain.Task
	categories []domain.Category
	tags       []domain.Tag
	accounts   []domain.Account

	putTasks int
	err      error
}

func (f *fakeStore) AllTasks(ctx context.Context) ([]domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Task(nil), f.tasks...), nil
}

func (f *fakeStore) PutTasks(ctx context.Context, tasks ...domain.Task) error {
	f.putTasks += len(tasks)
	for _, t := range tasks {
		replaced := false
		for i := range f.tasks {
			if f.tasks[i].ID == t.ID {
				f.tasks[i] = t
				replaced = true
			}
		}
		if !replaced {
			f.tasks = append(f.tasks, t)
		}
	}
	return nil
}

func (f *fakeStore) RemoveTask(ctx context.Context, id string) error {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeStore) AllCategories(ctx context.Context) ([]domain.Category, error) {
	return append([]domain.Category(nil), f.categories...), nil
}

func (f *fakeStore) PutCategory(ctx context.Context, c domain.Category) error {
	for i := range f.categories {
		if f.categories[i].ID == c.ID {
			f.categories[i] = c
			return nil
		}
	}
	f.categories = append(f.categories, c)
	return nil
}

func (f *fakeStore) RemoveCategory(ctx context.Context, id string) error {
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeStore) AllTags(ctx context.Context) ([]domain.Tag, error) {
	return append([]domain.Tag(nil), f.tags...), nil
}

func (f *fakeStore) PutTag(ctx context.Context, t domain.Tag) error {
	f.tags = append(f.tags, t)
	return nil
}

func (f *fakeStore) AllAccounts(ctx context.Context) ([]domain.Account, error) {
	return append([]domain.Account(nil), f.accounts...), nil
}

func (f *fakeStore) PutAccount(ctx context.Context, a domain.Account) error {
	f.accounts = append(f.accounts, a)
	return nil
}

// fakeTokens encodes the user id and admin flag in plain text.
type fakeTokens struct{}

func (fakeTokens) Issue(u domain.User) (string, error) {
	return fmt.Sprintf("%s|%t|%s", u.ID, u.Admin, u.Email), nil
}

func (fakeTokens) Parse(token string) (domain.User, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 {
		return domain.User{}, errors.New("malformed token")
	}
	return domain.User{ID: parts[0], Admin: parts[1] == "true", Email: parts[2]}, nil
}
