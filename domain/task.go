package domain

import "time"

// Task is a single to-do record.
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Completed    bool       `json:"completed"`
	Priority     int        `json:"priority,omitempty"`
	DueDate      string     `json:"due_date,omitempty"`
	CategoryID   string     `json:"category_id,omitempty"`
	CategoryName string     `json:"category_name,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	// Modified is the unix millisecond clock used when merging record sets.
	Modified int64 `json:"modified"`
	Deleted  bool  `json:"deleted,omitempty"`
}

// Priorities used by the task form. Lower is more urgent.
const (
	PriorityHigh   = 1
	PriorityNormal = 2
	PriorityLow    = 3
)

// TaskInput carries the fields of a create or update request. Nil fields are
// left untouched on update.
type TaskInput struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Completed   *bool    `json:"completed,omitempty"`
	Priority    *int     `json:"priority,omitempty" validate:"omitempty,min=1,max=3"`
	DueDate     *string  `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CategoryID  *string  `json:"category_id,omitempty" validate:"omitempty,max=64"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url"`
}

// Apply copies the set fields of in onto t.
func (in TaskInput) Apply(t *Task) {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.DueDate != nil {
		t.DueDate = *in.DueDate
	}
	if in.CategoryID != nil {
		t.CategoryID = *in.CategoryID
	}
	if in.Tags != nil {
		t.Tags = append([]string(nil), in.Tags...)
	}
	if in.ImageURL != nil {
		t.ImageURL = *in.ImageURL
	}
}

// HasTag reports whether the task carries the given tag name.
func (t Task) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}

// Touch stamps the update time and merge clock.
func (t *Task) Touch(now time.Time) {
	ts := now.UTC()
	t.UpdatedAt = &ts
	t.Modified = ts.UnixMilli()
}
