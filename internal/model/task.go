package model

import (
	"fmt"
	"strings"
)

// Priority orders tasks for display; lower values sort first.
type Priority int

const (
	PriorityHigh   Priority = 0
	PriorityMedium Priority = 1
	PriorityLow    Priority = 2
)

// PriorityFromInt maps a stored value back to a Priority. Unknown values
// fall back to PriorityMedium.
func PriorityFromInt(v int) Priority {
	switch p := Priority(v); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	default:
		return PriorityMedium
	}
}

// ParsePriority parses "high", "medium" or "low".
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h":
		return PriorityHigh, nil
	case "medium", "m", "":
		return PriorityMedium, nil
	case "low", "l":
		return PriorityLow, nil
	default:
		return PriorityMedium, fmt.Errorf("unknown priority %q", s)
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityLow:
		return "low"
	default:
		return "medium"
	}
}

// DeadlineState classifies a task relative to its deadline.
type DeadlineState int

const (
	DeadlineNone DeadlineState = iota
	DeadlineDueSoon
	DeadlineOverdue
)

// TodoTask is a single task belonging to a TodoList.
//
// Deadline and ReminderTime are absolute Unix timestamps in seconds;
// zero means unset.
type TodoTask struct {
	ID           int64    `json:"id" db:"_id"`
	ListID       int64    `json:"list_id" db:"todo_list_id"`
	ListPosition int      `json:"list_position" db:"position_in_todo_list"`
	Name         string   `json:"name" db:"name"`
	Description  string   `json:"description" db:"description"`
	Priority     Priority `json:"priority" db:"priority"`
	Deadline     int64    `json:"deadline,omitempty" db:"deadline"`
	Done         bool     `json:"done" db:"done"`
	Progress     int      `json:"progress" db:"progress"`
	ReminderTime int64    `json:"reminder_time,omitempty" db:"deadline_warning_time"`
	InTrash      bool     `json:"in_trash" db:"in_trash"`

	// ListName is filled in when the task is loaded through its list.
	ListName string `json:"list_name,omitempty" db:"-"`

	SubTasks []TodoSubTask `json:"subtasks,omitempty" db:"-"`
}

// HasDeadline reports whether a deadline is set.
func (t *TodoTask) HasDeadline() bool {
	return t.Deadline > 0
}

// ValidReminder reports whether reminder may be used with the task's
// deadline: a reminder after the deadline is rejected.
func (t *TodoTask) ValidReminder(reminder int64) bool {
	return !(t.Deadline > 0 && reminder > t.Deadline)
}

// SetAllSubTasksDone marks every loaded subtask done or undone.
func (t *TodoTask) SetAllSubTasksDone(done bool) {
	for i := range t.SubTasks {
		t.SubTasks[i].Done = done
	}
}

// SyncDoneWithSubTasks sets Done to whether all subtasks are done and
// reports whether the value changed. A task without subtasks counts as
// done by this rule.
func (t *TodoTask) SyncDoneWithSubTasks() bool {
	all := true
	for _, st := range t.SubTasks {
		if !st.Done {
			all = false
			break
		}
	}
	changed := all != t.Done
	t.Done = all
	return changed
}

// DeadlineState returns DeadlineOverdue once the deadline has passed and
// DeadlineDueSoon inside the reminder window before it. The window is
// Deadline-ReminderTime when a reminder is set, defaultReminder seconds
// otherwise.
func (t *TodoTask) DeadlineState(now, defaultReminder int64) DeadlineState {
	if t.Done || !t.HasDeadline() {
		return DeadlineNone
	}
	window := defaultReminder
	if t.ReminderTime > 0 {
		window = t.Deadline - t.ReminderTime
	}
	if now >= t.Deadline-window && t.Deadline > now {
		return DeadlineDueSoon
	}
	if t.Deadline < now {
		return DeadlineOverdue
	}
	return DeadlineNone
}

// Matches reports whether the name or description, or with recursive set
// any subtask title, contains query (case-insensitive).
func (t *TodoTask) Matches(query string, recursive bool) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	if recursive {
		for i := range t.SubTasks {
			if t.SubTasks[i].Matches(q) {
				return true
			}
		}
	}
	return false
}
