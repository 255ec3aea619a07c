package domain

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func sampleTasks() []Task {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []Task{
		{ID: "1", Title: "Læra JavaScript", Priority: 2, CreatedAt: base},
		{ID: "2", Title: "byggja verkefni", Priority: 1, DueDate: "2025-03-20", CategoryID: "3", Tags: []string{"Fundur"}, CreatedAt: base.Add(time.Minute)},
		{ID: "3", Title: "Elda mat", Priority: 3, DueDate: "2025-03-13", CategoryID: "5", Tags: []string{"Lágt forgangsstig"}, Completed: true, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "4", Title: "Annað", Priority: 1, DueDate: "2025-03-14", CategoryID: "3", Tags: []string{"Bíður", "Fundur"}, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "5", Title: "Eytt", CategoryID: "3", Deleted: true, CreatedAt: base.Add(4 * time.Minute)},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	q, err := TaskQuery{}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if q.Page != 1 || q.Limit != DefaultPageSize || q.Status != StatusAll || q.SortBy != SortCreated || q.SortOrder != OrderAsc {
		t.Fatalf("unexpected defaults: %+v", q)
	}

	q, err = TaskQuery{Limit: 1000}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if q.Limit != MaxPageSize {
		t.Fatalf("expected limit capped at %d, got %d", MaxPageSize, q.Limit)
	}
}

func TestNormalizeRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name string
		q    TaskQuery
	}{
		{name: "status", q: TaskQuery{Status: "pending"}},
		{name: "sort", q: TaskQuery{SortBy: "color"}},
		{name: "order", q: TaskQuery{SortOrder: "up"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.q.Normalize(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestFilterTasks(t *testing.T) {
	tests := []struct {
		name string
		q    TaskQuery
		want []string
	}{
		{name: "all hides deleted", q: TaskQuery{Status: StatusAll}, want: []string{"1", "2", "3", "4"}},
		{name: "include deleted", q: TaskQuery{Status: StatusAll, IncludeDeleted: true}, want: []string{"1", "2", "3", "4", "5"}},
		{name: "active", q: TaskQuery{Status: StatusActive}, want: []string{"1", "2", "4"}},
		{name: "completed", q: TaskQuery{Status: StatusCompleted}, want: []string{"3"}},
		{name: "category", q: TaskQuery{CategoryID: "3"}, want: []string{"2", "4"}},
		{name: "tag", q: TaskQuery{Tag: "Fundur"}, want: []string{"2", "4"}},
		{name: "category and tag", q: TaskQuery{CategoryID: "3", Tag: "Bíður"}, want: []string{"4"}},
		{name: "no match", q: TaskQuery{Tag: "Mikilvægt"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterTasks(sampleTasks(), tt.q))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterTasks = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortTasks(t *testing.T) {
	tests := []struct {
		name  string
		by    string
		order string
		want  []string
	}{
		{name: "created asc", by: SortCreated, order: OrderAsc, want: []string{"1", "2", "3", "4", "5"}},
		{name: "created desc", by: SortCreated, order: OrderDesc, want: []string{"5", "4", "3", "2", "1"}},
		{name: "title ignores case", by: SortTitle, order: OrderAsc, want: []string{"4", "2", "3", "5", "1"}},
		{name: "due missing last", by: SortDue, order: OrderAsc, want: []string{"3", "4", "2", "1", "5"}},
		{name: "priority then due", by: SortPriority, order: OrderAsc, want: []string{"4", "2", "1", "5", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := sampleTasks()
			SortTasks(tasks, tt.by, tt.order)
			if got := ids(tasks); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("SortTasks(%s, %s) = %v, want %v", tt.by, tt.order, got, tt.want)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	tasks := make([]Task, 23)
	for i := range tasks {
		tasks[i].ID = string(rune('a' + i))
	}

	tests := []struct {
		name      string
		page      int
		limit     int
		wantItems int
		wantFirst string
		wantPages int
	}{
		{name: "first page", page: 1, limit: 10, wantItems: 10, wantFirst: "a", wantPages: 3},
		{name: "last partial page", page: 3, limit: 10, wantItems: 3, wantFirst: "u", wantPages: 3},
		{name: "past the end", page: 4, limit: 10, wantItems: 0, wantPages: 3},
		{name: "zero page defaults", page: 0, limit: 5, wantItems: 5, wantFirst: "a", wantPages: 5},
		{name: "single page", page: 1, limit: 50, wantItems: 23, wantFirst: "a", wantPages: 1},
		{name: "huge page", page: math.MaxInt / 50, limit: 100, wantItems: 0, wantPages: 1},
		{name: "max page", page: math.MaxInt, limit: 10, wantItems: 0, wantPages: 3},
		{name: "huge limit", page: 2, limit: math.MaxInt, wantItems: 0, wantPages: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tasks, tt.page, tt.limit)
			if len(p.Items) != tt.wantItems {
				t.Fatalf("items = %d, want %d", len(p.Items), tt.wantItems)
			}
			if p.Count != len(tasks) {
				t.Fatalf("count = %d, want %d", p.Count, len(tasks))
			}
			if p.PageCount != tt.wantPages {
				t.Fatalf("pageCount = %d, want %d", p.PageCount, tt.wantPages)
			}
			if tt.wantItems > 0 && p.Items[0].ID != tt.wantFirst {
				t.Fatalf("first item = %s, want %s", p.Items[0].ID, tt.wantFirst)
			}
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(nil, 1, 10)
	if p.Items == nil || len(p.Items) != 0 || p.Count != 0 || p.PageCount != 0 || p.CurrentPage != 1 {
		t.Fatalf("unexpected empty page: %#v", p)
	}
}

func TestQueryTasks(t *testing.T) {
	q, err := TaskQuery{CategoryID: "3", SortBy: SortDue, Limit: 1, Page: 2}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	p := QueryTasks(sampleTasks(), q)
	if p.Count != 2 || p.PageCount != 2 || len(p.Items) != 1 || p.Items[0].ID != "2" {
		t.Fatalf("unexpected page: %#v", p)
	}
}
