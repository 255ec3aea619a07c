package domain

// Category is a named grouping for tasks.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TaskCount   int    `json:"task_count,omitempty"`
}

// CategoryInput carries the fields of a category create or update request.
type CategoryInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// Tag is a free-form label. Tasks reference tags by name.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TagInput carries a new tag name.
type TagInput struct {
	Name string `json:"name" validate:"required,max=50"`
}
