package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/todolist/internal/cli"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
)

func newListCmd(e *env) *cobra.Command {
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"lists"},
		Short:   "Manage todo lists",
	}

	var (
		query     string
		recursive bool
	)
	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "Show all lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.runListLs(cmd, query, recursive)
		},
	}
	lsCmd.Flags().StringVarP(&query, "query", "q", "", "Only lists whose name contains this text")
	lsCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Also match task names and descriptions")

	listCmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME...",
			Short: "Create a list",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.runListAdd(cmd, joinArgs(args))
			},
		},
		lsCmd,
		&cobra.Command{
			Use:   "rename ID NAME...",
			Short: "Rename a list",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.runListRename(cmd, args[0], joinArgs(args[1:]))
			},
		},
		&cobra.Command{
			Use:   "rm ID",
			Short: "Delete a list; its tasks move to the bin",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.runListRm(cmd, args[0])
			},
		},
	)
	return listCmd
}

func (e *env) runListAdd(cmd *cobra.Command, name string) error {
	s, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}
	id, err := s.CreateList(cmd.Context(), model.TodoList{Name: name})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created list %d: %s\n", id, name)
	return nil
}

func (e *env) runListLs(cmd *cobra.Command, query string, recursive bool) error {
	s, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}
	lists, err := s.GetLists(cmd.Context())
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	var rows [][]string
	for i := range lists {
		l := &lists[i]
		if !l.Matches(query, recursive) {
			continue
		}
		next := "-"
		if d := l.NextDeadline(); d > 0 {
			next = theme.DeadlineStyle(l.DeadlineState(now, defaultReminder)).Render(cli.FormatTimestamp(d))
		}
		rows = append(rows, []string{
			fmt.Sprint(l.ID),
			l.Name,
			fmt.Sprintf("%d/%d", l.DoneCount(), len(l.Tasks)),
			next,
		})
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, theme.MutedStyle.Render("No lists"))
		return nil
	}
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "Lists",
		Headers: []string{"ID", "Name", "Done", "Next deadline"},
		Rows:    rows,
	}))
	return nil
}

func (e *env) runListRename(cmd *cobra.Command, rawID, name string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	s, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}

	list, err := s.GetListByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	old := list.Name
	list.Name = name
	if err := s.UpdateList(cmd.Context(), *list); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed list %d: %s -> %s\n", id, old, name)
	return nil
}

func (e *env) runListRm(cmd *cobra.Command, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	s, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}

	list, err := s.GetListByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	ok, err := e.confirm(fmt.Sprintf("Delete list %q?", list.Name), "Its tasks move to the bin.")
	if err != nil || !ok {
		return err
	}

	if err := s.DeleteList(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted list %d: %s\n", id, list.Name)
	return nil
}
