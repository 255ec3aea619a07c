package domain

import (
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Completion filters.
const (
	StatusAll       = "all"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Sort keys and orders.
const (
	SortCreated  = "created"
	SortTitle    = "title"
	SortDue      = "due"
	SortPriority = "priority"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// TaskQuery selects a page of tasks.
type TaskQuery struct {
	Page           int
	Limit          int
	CategoryID     string
	Tag            string
	Status         string
	SortBy         string
	SortOrder      string
	IncludeDeleted bool
}

// Normalize fills defaults and rejects unknown filter or sort values.
func (q TaskQuery) Normalize() (TaskQuery, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	switch q.Status {
	case "":
		q.Status = StatusAll
	case StatusAll, StatusActive, StatusCompleted:
	default:
		return q, fmt.Errorf("%w: unknown status %q", ErrInvalid, q.Status)
	}
	q.SortBy = strings.ToLower(strings.TrimSpace(q.SortBy))
	switch q.SortBy {
	case "":
		q.SortBy = SortCreated
	case SortCreated, SortTitle, SortDue, SortPriority:
	default:
		return q, fmt.Errorf("%w: unknown sort %q", ErrInvalid, q.SortBy)
	}
	q.SortOrder = strings.ToLower(strings.TrimSpace(q.SortOrder))
	switch q.SortOrder {
	case "":
		q.SortOrder = OrderAsc
	case OrderAsc, OrderDesc:
	default:
		return q, fmt.Errorf("%w: unknown order %q", ErrInvalid, q.SortOrder)
	}
	return q, nil
}

// Matches reports whether t passes the query's filters.
func (q TaskQuery) Matches(t Task) bool {
	if t.Deleted && !q.IncludeDeleted {
		return false
	}
	switch q.Status {
	case StatusActive:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}
	if q.CategoryID != "" && t.CategoryID != q.CategoryID {
		return false
	}
	if q.Tag != "" && !t.HasTag(q.Tag) {
		return false
	}
	return true
}

// FilterTasks returns the tasks matching q in their original order.
func FilterTasks(tasks []Task, q TaskQuery) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortTasks orders tasks in place. Ties keep their relative order.
func SortTasks(tasks []Task, by, order string) {
	less := func(a, b Task) int {
		switch by {
		case SortTitle:
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortDue:
			return compareDue(a.DueDate, b.DueDate)
		case SortPriority:
			if pa, pb := effectivePriority(a), effectivePriority(b); pa != pb {
				if pa < pb {
					return -1
				}
				return 1
			}
			return compareDue(a.DueDate, b.DueDate)
		default:
			switch {
			case a.CreatedAt.Before(b.CreatedAt):
				return -1
			case a.CreatedAt.After(b.CreatedAt):
				return 1
			}
			return 0
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		c := less(tasks[i], tasks[j])
		if order == OrderDesc {
			return c > 0
		}
		return c < 0
	})
}

// compareDue orders ISO dates; tasks without a due date sort last.
func compareDue(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return strings.Compare(a, b)
}

func effectivePriority(t Task) int {
	if t.Priority == 0 {
		return PriorityNormal
	}
	return t.Priority
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Items       []Task `json:"items"`
	Count       int    `json:"count"`
	PageCount   int    `json:"pageCount"`
	CurrentPage int    `json:"currentPage"`
}

// Paginate slices tasks into the requested 1-based page. Pages past the end
// are empty but still report the full count.
func Paginate(tasks []Task, page, limit int) TaskPage {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	count := len(tasks)
	pages := count / limit
	if count%limit != 0 {
		pages++
	}
	result := TaskPage{
		Items:       []Task{},
		Count:       count,
		PageCount:   pages,
		CurrentPage: page,
	}
	// Compare before multiplying so huge page numbers cannot overflow.
	if page > pages {
		return result
	}
	start := (page - 1) * limit
	end := min(start+limit, count)
	result.Items = make([]Task, end-start)
	copy(result.Items, tasks[start:end])
	return result
}

// QueryTasks filters, sorts and paginates tasks for q. q must be normalized.
func QueryTasks(tasks []Task, q TaskQuery) TaskPage {
	filtered := FilterTasks(tasks, q)
	SortTasks(filtered, q.SortBy, q.SortOrder)
	return Paginate(filtered, q.Page, q.Limit)
}
