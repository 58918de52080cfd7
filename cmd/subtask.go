package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
)

func newSubTaskCmd(e *env) *cobra.Command {
	subCmd := &cobra.Command{
		Use:     "subtask",
		Aliases: []string{"sub"},
		Short:   "Manage the subtasks of a task",
	}

	var taskID int64
	addCmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a subtask to a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runSubTaskAdd(cmd, taskID, joinArgs(args))
		},
	}
	addCmd.Flags().Int64VarP(&taskID, "task", "t", 0, "Task ID")
	_ = addCmd.MarkFlagRequired("task")

	var undo bool
	doneCmd := &cobra.Command{
		Use:   "done ID",
		Short: "Mark a subtask done; the task is done once all subtasks are",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := "Marked subtask %d done\n"
			if undo {
				msg = "Marked subtask %d open\n"
			}
			return e.runByID(cmd, args[0], msg,
				func(ctx context.Context, s *store.SQLiteStore, id int64) error {
					return s.SetSubTaskDone(ctx, id, !undo)
				})
		},
	}
	doneCmd.Flags().BoolVar(&undo, "undo", false, "Mark open instead")

	subCmd.AddCommand(
		addCmd,
		doneCmd,
		&cobra.Command{
			Use:   "rename ID TITLE...",
			Short: "Change the title of a subtask",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.runSubTaskRename(cmd, args[0], joinArgs(args[1:]))
			},
		},
		&cobra.Command{
			Use:   "trash ID",
			Short: "Move a subtask to the bin",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.runByID(cmd, args[0], "Moved subtask %d to the bin\n",
					func(ctx context.Context, s *store.SQLiteStore, id int64) error { return s.TrashSubTask(ctx, id) })
			},
		},
		&cobra.Command{
			Use:   "recover ID",
			Short: "Take a subtask out of the bin",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.runByID(cmd, args[0], "Recovered subtask %d\n",
					func(ctx context.Context, s *store.SQLiteStore, id int64) error { return s.RecoverSubTask(ctx, id) })
			},
		},
		&cobra.Command{
			Use:   "rm ID",
			Short: "Delete a subtask for good",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.runByID(cmd, args[0], "Deleted subtask %d\n",
					func(ctx context.Context, s *store.SQLiteStore, id int64) error { return s.DeleteSubTask(ctx, id) })
			},
		},
	)
	return subCmd
}

func (e *env) runSubTaskAdd(cmd *cobra.Command, taskID int64, title string) error {
	s, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}
	id, err := s.CreateSubTask(cmd.Context(), model.TodoSubTask{TaskID: taskID, Title: title})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created subtask %d: %s\n", id, title)
	return nil
}

func (e *env) runSubTaskRename(cmd *cobra.Command, rawID, title string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	s, err := e.openStore(cmd.Context())
	if err != nil {
		return err
	}

	sub, err := s.GetSubTaskByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	sub.Title = title
	if err := s.UpdateSubTask(cmd.Context(), *sub); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed subtask %d: %s\n", id, title)
	return nil
}
