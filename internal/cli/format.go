package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
)

// TimestampLayout is used for deadlines and reminders on input and output.
const TimestampLayout = "2006-01-02 15:04"

// FormatTimestamp renders Unix seconds in local time, or "-" when unset.
func FormatTimestamp(unix int64) string {
	if unix <= 0 {
		return "-"
	}
	return time.Unix(unix, 0).Local().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout, a plain date (midnight local
// time) or raw Unix seconds. An empty string yields 0.
func ParseTimestamp(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	for _, layout := range []string{TimestampLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.Unix(), nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return n, nil
	}
	return 0, fmt.Errorf("invalid time %q (want %q, a date, or Unix seconds)", s, TimestampLayout)
}

// Checkbox renders a done marker.
func Checkbox(done bool) string {
	if done {
		return theme.DoneStyle(true).Render("[x]")
	}
	return theme.DoneStyle(false).Render("[ ]")
}

// Priority renders a colored priority label.
func Priority(p model.Priority) string {
	return theme.PriorityStyle(p).Render(p.String())
}

// Deadline renders a task's deadline colored by its state at now.
func Deadline(t *model.TodoTask, now, defaultReminder int64) string {
	if !t.HasDeadline() {
		return "-"
	}
	return theme.DeadlineStyle(t.DeadlineState(now, defaultReminder)).Render(FormatTimestamp(t.Deadline))
}

// Progress renders "n/m" done subtasks, or the stored percentage when the
// task has none.
func Progress(t *model.TodoTask) string {
	if len(t.SubTasks) == 0 {
		return fmt.Sprintf("%d%%", t.Progress)
	}
	done := 0
	for _, st := range t.SubTasks {
		if st.Done {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(t.SubTasks))
}
