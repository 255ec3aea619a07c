package service

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ManiEids/vef2hop2/domain"
)

// ListTasks returns one filtered, sorted page of tasks.
func (s *Service) ListTasks(ctx context.Context, q domain.TaskQuery) (domain.TaskPage, error) {
	q, err := q.Normalize()
	if err != nil {
		return domain.TaskPage{}, err
	}
	tasks, err := s.store.AllTasks(ctx)
	if err != nil {
		return domain.TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	return domain.QueryTasks(tasks, q), nil
}

// AllTasks returns every stored task, including soft-deleted ones.
func (s *Service) AllTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.store.AllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task by id. Soft-deleted tasks are not found.
func (s *Service) GetTask(ctx context.Context, id string) (domain.Task, error) {
	tasks, err := s.store.AllTasks(ctx)
	if err != nil {
		return domain.Task{}, fmt.Errorf("get task: %w", err)
	}
	t, ok := findTask(tasks, id)
	if !ok || t.Deleted {
		return domain.Task{}, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

// CreateTask stores a new task. Priority defaults to normal and the category
// name is resolved from the category id when that category exists.
func (s *Service) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return domain.Task{}, fmt.Errorf("%w: title is required", domain.ErrInvalid)
	}
	if err := domain.Validate(in); err != nil {
		return domain.Task{}, err
	}
	now := s.now().UTC()
	t := domain.Task{
		ID:        s.newID(),
		Priority:  domain.PriorityNormal,
		Tags:      []string{},
		CreatedAt: now,
		Modified:  now.UnixMilli(),
	}
	in.Apply(&t)
	if t.CategoryID != "" {
		name, err := s.categoryName(ctx, t.CategoryID)
		if err != nil {
			return domain.Task{}, err
		}
		t.CategoryName = name
	}
	if err := s.store.PutTasks(ctx, t); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.logger.WithField("task", t.ID).Debug("task created")
	return t, nil
}

// UpdateTask merges in over the stored task. A category id that does not
// resolve keeps the previous category name.
func (s *Service) UpdateTask(ctx context.Context, id string, in domain.TaskInput) (domain.Task, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Task{}, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return domain.Task{}, fmt.Errorf("%w: title must not be empty", domain.ErrInvalid)
	}
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	in.Apply(&t)
	if in.CategoryID != nil {
		if *in.CategoryID == "" {
			t.CategoryName = ""
		} else {
			name, err := s.categoryName(ctx, *in.CategoryID)
			if err != nil {
				return domain.Task{}, err
			}
			if name != "" {
				t.CategoryName = name
			}
		}
	}
	t.Touch(s.now())
	if err := s.store.PutTasks(ctx, t); err != nil {
		return domain.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	return t, nil
}

// CompleteTask marks a task as completed.
func (s *Service) CompleteTask(ctx context.Context, id string) (domain.Task, error) {
	done := true
	return s.UpdateTask(ctx, id, domain.TaskInput{Completed: &done})
}

// DeleteTask removes a task, or flags it deleted when soft delete is on.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if !s.opts.SoftDelete {
		if err := s.store.RemoveTask(ctx, id); err != nil {
			return fmt.Errorf("delete task %s: %w", id, err)
		}
		return nil
	}
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}
	t.Deleted = true
	t.Touch(s.now())
	if err := s.store.PutTasks(ctx, t); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// SyncTasks merges source into the stored tasks by modification time and
// returns the merged set. Only records taken from source are written.
func (s *Service) SyncTasks(ctx context.Context, source []domain.Task) ([]domain.Task, error) {
	for _, t := range source {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: task without id", domain.ErrInvalid)
		}
	}
	local, err := s.store.AllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync tasks: %w", err)
	}
	merged := domain.MergeTasks(local, source)

	stored := make(map[string]int64, len(local))
	for _, t := range local {
		stored[t.ID] = t.Modified
	}
	incoming := make(map[string]bool, len(source))
	for _, t := range source {
		incoming[t.ID] = true
	}
	// A merged record came from the source unless the stored copy is
	// strictly newer; ties go to the source and must be written too.
	changed := make([]domain.Task, 0)
	for _, t := range merged {
		if !incoming[t.ID] {
			continue
		}
		if m, ok := stored[t.ID]; !ok || m <= t.Modified {
			changed = append(changed, t)
		}
	}
	if len(changed) > 0 {
		if err := s.store.PutTasks(ctx, changed...); err != nil {
			return nil, fmt.Errorf("sync tasks: %w", err)
		}
	}
	s.logger.WithFields(log.Fields{"incoming": len(source), "written": len(changed)}).Debug("tasks synced")
	return merged, nil
}

// TaskCounts tallies tasks for navigation.
func (s *Service) TaskCounts(ctx context.Context) (domain.TaskCounts, error) {
	tasks, err := s.store.AllTasks(ctx)
	if err != nil {
		return domain.TaskCounts{}, fmt.Errorf("count tasks: %w", err)
	}
	return domain.CountTasks(tasks), nil
}

func (s *Service) categoryName(ctx context.Context, id string) (string, error) {
	cats, err := s.store.AllCategories(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve category: %w", err)
	}
	for _, c := range cats {
		if c.ID == id {
			return c.Name, nil
		}
	}
	return "", nil
}

func findTask(tasks []domain.Task, id string) (domain.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}
