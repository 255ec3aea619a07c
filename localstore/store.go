package localstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/ManiEids/vef2hop2/domain"
)

// Keys of the stored collections.
const (
	UsersKey      = "verkefnalisti_users"
	TasksKey      = "verkefnalisti_tasks"
	CategoriesKey = "verkefnalisti_categories"
	TagsKey       = "verkefnalisti_tags"
)

// Store keeps every collection as a JSON array under its key. Writes load
// the whole collection, change it and write it back under a mutex, so a
// Store must be the only writer of its KV.
type Store struct {
	kv KV
	mu sync.Mutex
}

func NewStore(kv KV) *Store {
	if kv == nil {
		panic("localstore.NewStore: kv is nil")
	}
	return &Store{kv: kv}
}

// KV returns the underlying key/value store.
func (s *Store) KV() KV { return s.kv }

func load[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	data, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || len(data) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func save[T any](ctx context.Context, kv KV, key string, items []T) error {
	data, err := sonic.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// upsert replaces items with a matching id and appends the rest.
func upsert[T any](items []T, id func(T) string, updates ...T) []T {
	index := make(map[string]int, len(items))
	for i, v := range items {
		index[id(v)] = i
	}
	for _, u := range updates {
		if i, ok := index[id(u)]; ok {
			items[i] = u
			continue
		}
		index[id(u)] = len(items)
		items = append(items, u)
	}
	return items
}

func remove[T any](items []T, id func(T) string, target string) ([]T, bool) {
	for i, v := range items {
		if id(v) == target {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

func taskID(t domain.Task) string         { return t.ID }
func categoryID(c domain.Category) string { return c.ID }
func tagID(t domain.Tag) string           { return t.ID }
func accountID(a domain.Account) string   { return a.ID }

func (s *Store) AllTasks(ctx context.Context) ([]domain.Task, error) {
	return load[domain.Task](ctx, s.kv, TasksKey)
}

func (s *Store) PutTasks(ctx context.Context, tasks ...domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[domain.Task](ctx, s.kv, TasksKey)
	if err != nil {
		return err
	}
	return save(ctx, s.kv, TasksKey, upsert(all, taskID, tasks...))
}

func (s *Store) RemoveTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[domain.Task](ctx, s.kv, TasksKey)
	if err != nil {
		return err
	}
	all, ok := remove(all, taskID, id)
	if !ok {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return save(ctx, s.kv, TasksKey, all)
}

func (s *Store) AllCategories(ctx context.Context) ([]domain.Category, error) {
	return load[domain.Category](ctx, s.kv, CategoriesKey)
}

func (s *Store) PutCategory(ctx context.Context, c domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[domain.Category](ctx, s.kv, CategoriesKey)
	if err != nil {
		return err
	}
	c.TaskCount = 0
	return save(ctx, s.kv, CategoriesKey, upsert(all, categoryID, c))
}

func (s *Store) RemoveCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[domain.Category](ctx, s.kv, CategoriesKey)
	if err != nil {
		return err
	}
	all, ok := remove(all, categoryID, id)
	if !ok {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return save(ctx, s.kv, CategoriesKey, all)
}

func (s *Store) AllTags(ctx context.Context) ([]domain.Tag, error) {
	return load[domain.Tag](ctx, s.kv, TagsKey)
}

func (s *Store) PutTag(ctx context.Context, t domain.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[domain.Tag](ctx, s.kv, TagsKey)
	if err != nil {
		return err
	}
	return save(ctx, s.kv, TagsKey, upsert(all, tagID, t))
}

func (s *Store) AllAccounts(ctx context.Context) ([]domain.Account, error) {
	return load[domain.Account](ctx, s.kv, UsersKey)
}

func (s *Store) PutAccount(ctx context.Context, a domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[domain.Account](ctx, s.kv, UsersKey)
	if err != nil {
		return err
	}
	return save(ctx, s.kv, UsersKey, upsert(all, accountID, a))
}
