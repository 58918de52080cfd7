package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/todolist/internal/cli"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/theme"
)

// taskFlags holds the editable task fields shared by add and edit.
type taskFlags struct {
	name        string
	description string
	priority    string
	deadline    string
	remind      string
	progress    int
	position    int
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "medium", "Priority: high, medium or low")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "Deadline ("+cli.TimestampLayout+", a date, or Unix seconds)")
	cmd.Flags().StringVar(&f.remind, "remind", "", "Reminder time, not after the deadline")
	cmd.Flags().IntVar(&f.progress, "progress", 0, "Progress in percent")
	cmd.Flags().IntVar(&f.position, "position", 0, "Position in the list (0 appends)")
}

// apply copies the flags the user set onto task.
func (f *taskFlags) apply(cmd *cobra.Command, task *model.TodoTask) error {
	changed := cmd.Flags().Changed
	if f.name != "" {
		task.Name = f.name
	}
	if changed("desc") {
		task.Description = f.description
	}
	if changed("priority") || task.ID == 0 {
		p, err := model.ParsePriority(f.priority)
		if err != nil {
			return err
		}
		task.Priority = p
	}
	if changed("deadline") {
		d, err := cli.ParseTimestamp(f.deadline)
		if err != nil {
			return err
		}
		task.Deadline = d
	}
	if changed("remind") {
		r, err := cli.ParseTimestamp(f.remind)
		if err != nil {
			return err
		}
		task.ReminderTime = r
	}
	if changed("progress") {
		task.Progress = f.progress
	}
	if changed("position") {
		task.ListPosition = f.position
	}
	return nil
}

func newTaskCmd(e *env) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage tasks",
	}

	taskCmd.AddCommand(
		newTaskAddCmd(e),
		newTaskLsCmd(e),
		&cobra.Command{
			Use:   "show ID",
			Short: "Show a task with its subtasks",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.runTaskShow(cmd, args[0])
			},
		},
		newTaskEditCmd(e),
		newTaskDoneCmd(e),
		&cobra.Command{
			Use:   "trash ID",
			Short: "Move a task to the bin",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.runByID(cmd, args[0], "Moved task %d to the bin\n",
					func(ctx context.Context, s *store.SQLiteStore, id int64) error { return s.TrashTask(ctx, id) })
			},
		},
		&cobra.Command{
			Use:   "recover ID",
			Short: "Take a task and its subtasks out of the bin",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.runByID(cmd, args[0], "Recovered task %d\n",
					func(ctx context.Context, s *store.SQLiteStore, id int64) error { return s.RecoverTask(ctx, id) })
			},
		},
		&cobra.Command{
			Use:   "rm ID",
			Short: "Delete a task and its subtasks for good",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.runTaskRm(cmd, args[0])
			},
		},
	)
	return taskCmd
}

func newTaskAddCmd(e *env) *cobra.Command {
	var (
		listID int64
		flags  taskFlags
	)
	c := &cobra.Command{
		Use:   "add NAME...",
		Short: "Add a task to a list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.name = joinArgs(args)
			return e.runTaskAdd(cmd, listID, &flags)
		},
	}
	c.Flags().Int64VarP(&listID, "list", "l", 0, "List ID")
	_ = c.MarkFlagRequired("list")
	flags.register(c)
	return c
}

func (e *env) runTaskAdd(cmd *cobra.Command, listID int64, flags *taskFlags) error {
	task := model.TodoTask{ListID: listID}
	if err := flags.apply(cmd, &task); err != nil {
		return err
	}

	s, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}
	id, err := s.CreateTask(cmd.Context(), task)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s\n", id, task.Name)
	return nil
}

func newTaskEditCmd(e *env) *cobra.Command {
	var flags taskFlags
	c := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runTaskEdit(cmd, args[0], &flags)
		},
	}
	c.Flags().StringVarP(&flags.name, "name", "n", "", "New name")
	flags.register(c)
	return c
}

func (e *env) runTaskEdit(cmd *cobra.Command, rawID string, flags *taskFlags) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	s, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}

	task, err := s.GetTaskByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, task); err != nil {
		return err
	}
	if err := s.UpdateTask(cmd.Context(), *task); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d: %s\n", id, task.Name)
	return nil
}

func newTaskLsCmd(e *env) *cobra.Command {
	var (
		listID    int64
		query     string
		recursive bool
		open      bool
	)
	c := &cobra.Command{
		Use:   "ls",
		Short: "Show tasks that are not in the bin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.runTaskLs(cmd, listID, query, recursive, open)
		},
	}
	c.Flags().Int64VarP(&listID, "list", "l", 0, "Only tasks of this list")
	c.Flags().StringVarP(&query, "query", "q", "", "Only tasks whose name or description contains this text")
	c.Flags().BoolVarP(&recursive, "recursive", "r", false, "Also match subtask titles")
	c.Flags().BoolVar(&open, "open", false, "Hide finished tasks")
	return c
}

func (e *env) runTaskLs(cmd *cobra.Command, listID int64, query string, recursive, open bool) error {
	ctx := cmd.Context()
	s, err := e.openStore(ctx)
	if err != nil {
		return err
	}

	tasks, err := s.GetTasks(ctx)
	if err != nil {
		return err
	}
	names, err := listNames(ctx, s)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	var rows [][]string
	for i := range tasks {
		t := &tasks[i]
		if listID != 0 && t.ListID != listID {
			continue
		}
		if open && t.Done {
			continue
		}
		if !t.Matches(query, recursive) {
			continue
		}
		rows = append(rows, taskRow(t, names[t.ListID], now))
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, theme.MutedStyle.Render("No tasks"))
		return nil
	}
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "Tasks",
		Headers: []string{"ID", "", "Name", "List", "Priority", "Deadline", "Progress"},
		Rows:    rows,
	}))
	return nil
}

func taskRow(t *model.TodoTask, listName string, now int64) []string {
	return []string{
		fmt.Sprint(t.ID),
		cli.Checkbox(t.Done),
		t.Name,
		listLabel(t.ListID, listName),
		cli.Priority(t.Priority),
		cli.Deadline(t, now, defaultReminder),
		cli.Progress(t),
	}
}

// listLabel falls back to the ID for tasks whose list was deleted.
func listLabel(id int64, name string) string {
	if name == "" {
		return theme.MutedStyle.Render(fmt.Sprintf("#%d", id))
	}
	return name
}

// listNames maps list IDs to names. Tasks of deleted lists have no entry.
func listNames(ctx context.Context, s *store.SQLiteStore) (map[int64]string, error) {
	lists, err := s.GetLists(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(lists))
	for _, l := range lists {
		names[l.ID] = l.Name
	}
	return names, nil
}

func (e *env) runTaskShow(cmd *cobra.Command, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	s, err := e.openStore(ctx)
	if err != nil {
		return err
	}

	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return err
	}
	names, err := listNames(ctx, s)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	now := time.Now().Unix()
	title := task.Name
	if task.InTrash {
		title += " " + theme.WarnStyle.Render("(in bin)")
	}
	fmt.Fprintln(out, cli.RenderTitle(title))
	fmt.Fprintf(out, "  List:        %s\n", listLabel(task.ListID, names[task.ListID]))
	fmt.Fprintf(out, "  Done:        %s\n", cli.Checkbox(task.Done))
	fmt.Fprintf(out, "  Priority:    %s\n", cli.Priority(task.Priority))
	fmt.Fprintf(out, "  Deadline:    %s\n", cli.Deadline(task, now, defaultReminder))
	fmt.Fprintf(out, "  Reminder:    %s\n", cli.FormatTimestamp(task.ReminderTime))
	fmt.Fprintf(out, "  Progress:    %s\n", cli.Progress(task))
	if task.Description != "" {
		fmt.Fprintf(out, "\n  %s\n", task.Description)
	}

	if len(task.SubTasks) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(task.SubTasks))
	for _, st := range task.SubTasks {
		label := st.Title
		if st.InTrash {
			label = theme.MutedStyle.Render(label + " (in bin)")
		}
		rows = append(rows, []string{fmt.Sprint(st.ID), cli.Checkbox(st.Done), label})
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"ID", "", "Subtask"},
		Rows:    rows,
	}))
	return nil
}

func newTaskDoneCmd(e *env) *cobra.Command {
	var undo bool
	c := &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task and all of its subtasks done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := "Marked task %d done\n"
			if undo {
				msg = "Marked task %d open\n"
			}
			return e.runByID(cmd, args[0], msg,
				func(ctx context.Context, s *store.SQLiteStore, id int64) error {
					return s.SetTaskDone(ctx, id, !undo)
				})
		},
	}
	c.Flags().BoolVar(&undo, "undo", false, "Mark open instead")
	return c
}

func (e *env) runTaskRm(cmd *cobra.Command, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	s, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}

	task, err := s.GetTaskByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	ok, err := e.confirm(fmt.Sprintf("Delete task %q?", task.Name), "The task and its subtasks cannot be recovered.")
	if err != nil || !ok {
		return err
	}

	if err := s.DeleteTask(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d: %s\n", id, task.Name)
	return nil
}

// runByID parses the ID, runs fn and prints msg with the ID.
func (e *env) runByID(
	cmd *cobra.Command,
	rawID, msg string,
	fn func(ctx context.Context, s *store.SQLiteStore, id int64) error,
) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	s, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}
	if err := fn(cmd.Context(), s, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), msg, id)
	return nil
}
