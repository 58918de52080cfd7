package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/cli"
	"github.com/nhle/todolist/internal/theme"
)

func newRemindCmd(e *env) *cobra.Command {
	var (
		at   string
		skip []int64
	)
	c := &cobra.Command{
		Use:   "remind",
		Short: "Show tasks whose reminder time has been reached, and the next one due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now().Unix()
			if at != "" {
				var err error
				if now, err = cli.ParseTimestamp(at); err != nil {
					return err
				}
			}
			return e.runRemind(cmd, now, skip)
		},
	}
	c.Flags().StringVar(&at, "at", "", "Evaluate reminders at this time instead of now")
	c.Flags().Int64SliceVar(&skip, "skip", nil, "Task IDs to leave out")
	return c
}

func (e *env) runRemind(cmd *cobra.Command, now int64, skip []int64) error {
	ctx := cmd.Context()
	s, err := e.openStore(ctx)
	if err != nil {
		return err
	}

	tasks, err := s.GetTasksToRemind(ctx, now, skip)
	if err != nil {
		return err
	}
	e.log.Debug("reminders evaluated",
		zap.Int64("now", now),
		zap.Int("tasks", len(tasks)),
		zap.Int64s("skipped", skip),
	)

	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, theme.MutedStyle.Render("Nothing to remind"))
		return nil
	}

	rows := make([][]string, 0, len(tasks)+1)
	for i := range tasks {
		t := &tasks[i]
		when := theme.WarnStyle.Render("due")
		if t.ReminderTime > now {
			if len(rows) > 0 {
				rows = append(rows, []string{"---"})
			}
			when = "next"
		}
		rows = append(rows, []string{
			fmt.Sprint(t.ID),
			t.Name,
			cli.FormatTimestamp(t.ReminderTime),
			cli.Deadline(t, now, defaultReminder),
			when,
		})
	}
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "Reminders",
		Headers: []string{"ID", "Task", "Reminder", "Deadline", ""},
		Rows:    rows,
	}))
	return nil
}
