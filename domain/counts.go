package domain

// TaskCounts summarises non-deleted tasks for navigation.
type TaskCounts struct {
	Active     int            `json:"active"`
	Completed  int            `json:"completed"`
	Categories map[string]int `json:"categories"`
	Tags       map[string]int `json:"tags"`
}

// CountTasks tallies tasks by completion, category id and tag.
func CountTasks(tasks []Task) TaskCounts {
	c := TaskCounts{Categories: map[string]int{}, Tags: map[string]int{}}
	for _, t := range tasks {
		if t.Deleted {
			continue
		}
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
		if t.CategoryID != "" {
			c.Categories[t.CategoryID]++
		}
		for _, tag := range t.Tags {
			c.Tags[tag]++
		}
	}
	return c
}

// UniqueTags lists the tag names used by non-deleted tasks in first-seen order.
func UniqueTags(tasks []Task) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, t := range tasks {
		if t.Deleted {
			continue
		}
		for _, tag := range t.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
