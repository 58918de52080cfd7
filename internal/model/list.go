package model

import "strings"

// TodoList is a named collection of tasks.
type TodoList struct {
	ID   int64  `json:"id" db:"_id"`
	Name string `json:"name" db:"name"`

	// Tasks is populated by queries that load a list together with its
	// non-trashed tasks.
	Tasks []TodoTask `json:"tasks,omitempty" db:"-"`
}

// DoneCount returns how many of the loaded tasks are done.
func (l *TodoList) DoneCount() int {
	n := 0
	for _, t := range l.Tasks {
		if t.Done {
			n++
		}
	}
	return n
}

// NextDeadline returns the earliest deadline among the list's open tasks,
// or 0 if none of them has one.
func (l *TodoList) NextDeadline() int64 {
	var next int64
	for _, t := range l.Tasks {
		if t.Done || !t.HasDeadline() {
			continue
		}
		if next == 0 || t.Deadline < next {
			next = t.Deadline
		}
	}
	return next
}

// DeadlineState aggregates the tasks' states: any overdue task makes the
// whole list overdue, otherwise any task due soon makes it due soon.
func (l *TodoList) DeadlineState(now, defaultReminder int64) DeadlineState {
	dueSoon := false
	for i := range l.Tasks {
		switch l.Tasks[i].DeadlineState(now, defaultReminder) {
		case DeadlineOverdue:
			return DeadlineOverdue
		case DeadlineDueSoon:
			dueSoon = true
		}
	}
	if dueSoon {
		return DeadlineDueSoon
	}
	return DeadlineNone
}

// Matches reports whether the list name, or with recursive set any of its
// tasks, contains query (case-insensitive). An empty query always matches.
func (l *TodoList) Matches(query string, recursive bool) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(l.Name), q) {
		return true
	}
	if recursive {
		for i := range l.Tasks {
			if l.Tasks[i].Matches(q, true) {
				return true
			}
		}
	}
	return false
}
