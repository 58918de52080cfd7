package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/todolist/internal/cli"
	"github.com/nhle/todolist/internal/theme"
)

func newBinCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "bin",
		Short: "Show the tasks in the bin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.runBin(cmd)
		},
	}
}

func (e *env) runBin(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := e.openStore(ctx)
	if err != nil {
		return err
	}

	tasks, err := s.GetBin(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, theme.MutedStyle.Render("The bin is empty"))
		return nil
	}
	names, err := listNames(ctx, s)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rows := make([][]string, 0, len(tasks))
	for i := range tasks {
		rows = append(rows, taskRow(&tasks[i], names[tasks[i].ListID], now))
	}
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "Bin",
		Headers: []string{"ID", "", "Name", "List", "Priority", "Deadline", "Progress"},
		Rows:    rows,
	}))
	fmt.Fprintln(out, theme.DimStyle.Render("Use `todolist task recover ID` to restore a task."))
	return nil
}
