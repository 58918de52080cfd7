package model

import "strings"

// TodoSubTask is a checklist entry belonging to a TodoTask.
type TodoSubTask struct {
	ID      int64  `json:"id" db:"_id"`
	TaskID  int64  `json:"task_id" db:"todo_task_id"`
	Title   string `json:"title" db:"title"`
	Done    bool   `json:"done" db:"done"`
	InTrash bool   `json:"in_trash" db:"in_trash"`
}

// Matches reports whether the title contains query (case-insensitive).
func (s *TodoSubTask) Matches(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Title), strings.ToLower(query))
}
