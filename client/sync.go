package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ManiEids/vef2hop2/domain"
)

var errNoLocal = errors.New("no local store configured")

// RemoteTasks fetches every remote task, soft-deleted ones included, one
// page at a time. It never falls back.
func (c *Client) RemoteTasks(ctx context.Context) ([]domain.Task, error) {
	if c.BaseURL == "" {
		return nil, errNoBackend
	}
	var all []domain.Task
	q := domain.TaskQuery{Page: 1, Limit: domain.MaxPageSize, IncludeDeleted: true}
	for {
		var page domain.TaskPage
		if err := c.fetch(ctx, http.MethodGet, "/tasks"+taskQueryString(q), nil, &page); err != nil {
			return nil, fmt.Errorf("fetch remote tasks page %d: %w", q.Page, err)
		}
		all = append(all, page.Items...)
		if q.Page >= page.PageCount || len(page.Items) == 0 {
			return all, nil
		}
		q.Page++
	}
}

// SyncLocal pulls the remote tasks and merges them into the local store.
// A local record wins only when its modified clock is newer.
func (c *Client) SyncLocal(ctx context.Context) ([]domain.Task, error) {
	if c.Mock == nil {
		return nil, errNoLocal
	}
	remote, err := c.RemoteTasks(ctx)
	if err != nil {
		return nil, err
	}
	merged, err := c.Mock.SyncTasks(ctx, remote)
	if err != nil {
		return nil, err
	}
	c.Logger.WithField("remote", len(remote)).WithField("merged", len(merged)).Info("local tasks synced")
	return merged, nil
}

// PushLocal sends every local task to the API so it can merge them.
func (c *Client) PushLocal(ctx context.Context) ([]domain.Task, error) {
	if c.Mock == nil {
		return nil, errNoLocal
	}
	if c.BaseURL == "" {
		return nil, errNoBackend
	}
	local, err := c.Mock.AllTasks(ctx)
	if err != nil {
		return nil, err
	}
	var merged []domain.Task
	if err := c.fetch(ctx, http.MethodPost, "/tasks/sync", local, &merged); err != nil {
		return nil, err
	}
	return merged, nil
}
