package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ManiEids/vef2hop2/domain"
	"github.com/ManiEids/vef2hop2/service"
)

func taskQueryString(q domain.TaskQuery) string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("category", q.CategoryID)
	set("tag", q.Tag)
	set("status", q.Status)
	set("sort", q.SortBy)
	set("order", q.SortOrder)
	if q.IncludeDeleted {
		v.Set("deleted", "true")
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// ListTasks returns one page of tasks.
func (c *Client) ListTasks(ctx context.Context, q domain.TaskQuery) (domain.TaskPage, error) {
	return withFallback(ctx, c, "list tasks",
		func(ctx context.Context) (domain.TaskPage, error) {
			var page domain.TaskPage
			err := c.fetch(ctx, http.MethodGet, "/tasks"+taskQueryString(q), nil, &page)
			return page, err
		},
		func(ctx context.Context, m *service.Service) (domain.TaskPage, error) {
			return m.ListTasks(ctx, q)
		})
}

func (c *Client) GetTask(ctx context.Context, id string) (domain.Task, error) {
	return withFallback(ctx, c, "get task",
		func(ctx context.Context) (domain.Task, error) {
			var t domain.Task
			err := c.fetch(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &t)
			return t, err
		},
		func(ctx context.Context, m *service.Service) (domain.Task, error) {
			return m.GetTask(ctx, id)
		})
}

// CreateTask creates a task. idempotencyKey may be empty.
func (c *Client) CreateTask(ctx context.Context, in domain.TaskInput, idempotencyKey string) (domain.Task, error) {
	return withFallback(ctx, c, "create task",
		func(ctx context.Context) (domain.Task, error) {
			var (
				t       domain.Task
				headers []string
			)
			if idempotencyKey != "" {
				headers = []string{"Idempotency-Key", idempotencyKey}
			}
			err := c.fetch(ctx, http.MethodPost, "/tasks", in, &t, headers...)
			return t, err
		},
		func(ctx context.Context, m *service.Service) (domain.Task, error) {
			return m.CreateTask(ctx, in)
		})
}

func (c *Client) UpdateTask(ctx context.Context, id string, in domain.TaskInput) (domain.Task, error) {
	return withFallback(ctx, c, "update task",
		func(ctx context.Context) (domain.Task, error) {
			var t domain.Task
			err := c.fetch(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), in, &t)
			return t, err
		},
		func(ctx context.Context, m *service.Service) (domain.Task, error) {
			return m.UpdateTask(ctx, id, in)
		})
}

func (c *Client) CompleteTask(ctx context.Context, id string) (domain.Task, error) {
	return withFallback(ctx, c, "complete task",
		func(ctx context.Context) (domain.Task, error) {
			var t domain.Task
			err := c.fetch(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/complete", nil, &t)
			return t, err
		},
		func(ctx context.Context, m *service.Service) (domain.Task, error) {
			return m.CompleteTask(ctx, id)
		})
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := withFallback(ctx, c, "delete task",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.fetch(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
		},
		func(ctx context.Context, m *service.Service) (struct{}, error) {
			return struct{}{}, m.DeleteTask(ctx, id)
		})
	return err
}

func (c *Client) TaskCounts(ctx context.Context) (domain.TaskCounts, error) {
	return withFallback(ctx, c, "task counts",
		func(ctx context.Context) (domain.TaskCounts, error) {
			var counts domain.TaskCounts
			err := c.fetch(ctx, http.MethodGet, "/tasks/counts", nil, &counts)
			return counts, err
		},
		func(ctx context.Context, m *service.Service) (domain.TaskCounts, error) {
			return m.TaskCounts(ctx)
		})
}

// SyncTasks sends tasks to be merged into the remote set and returns the
// merged result.
func (c *Client) SyncTasks(ctx context.Context, tasks []domain.Task) ([]domain.Task, error) {
	return withFallback(ctx, c, "sync tasks",
		func(ctx context.Context) ([]domain.Task, error) {
			var merged []domain.Task
			err := c.fetch(ctx, http.MethodPost, "/tasks/sync", tasks, &merged)
			return merged, err
		},
		func(ctx context.Context, m *service.Service) ([]domain.Task, error) {
			return m.SyncTasks(ctx, tasks)
		})
}
