package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/model"
)

func TestRenderTableAlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"ID", "Name"},
		Rows: [][]string{
			{"1", "Groceries"},
			{"---"},
			{"12", Checkbox(true)},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != width {
			t.Errorf("line %d width %d, want %d: %q", i, w, width, line)
		}
	}
	if !strings.Contains(out, "Groceries") {
		t.Error("expected cell content in output")
	}
}

func TestRenderTableEmpty(t *testing.T) {
	if out := RenderTable(Table{}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local).Unix()
	got, err := ParseTimestamp("2026-03-01 09:30")
	if err != nil || got != want {
		t.Fatalf("ParseTimestamp = %d, %v; want %d", got, err, want)
	}

	day, err := ParseTimestamp("2026-03-01")
	if err != nil || day != time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local).Unix() {
		t.Fatalf("date-only parse = %d, %v", day, err)
	}

	raw, err := ParseTimestamp("1700000000")
	if err != nil || raw != 1700000000 {
		t.Fatalf("unix parse = %d, %v", raw, err)
	}

	if v, err := ParseTimestamp(""); err != nil || v != 0 {
		t.Fatalf("empty parse = %d, %v", v, err)
	}
	if _, err := ParseTimestamp("tomorrow"); err == nil {
		t.Fatal("expected error for free text")
	}
}

func TestFormatTimestampUnset(t *testing.T) {
	if got := FormatTimestamp(0); got != "-" {
		t.Fatalf("FormatTimestamp(0) = %q", got)
	}
}

func TestProgress(t *testing.T) {
	task := &model.TodoTask{Progress: 40}
	if got := Progress(task); got != "40%" {
		t.Errorf("Progress without subtasks = %q", got)
	}
	task.SubTasks = []model.TodoSubTask{{Done: true}, {}, {Done: true}}
	if got := Progress(task); got != "2/3" {
		t.Errorf("Progress with subtasks = %q", got)
	}
}
