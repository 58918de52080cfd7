package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/todolist/internal/model"
)

// ErrReminderAfterDeadline is returned when a task's reminder time lies
// after its deadline.
var ErrReminderAfterDeadline = errors.New("reminder time must not be after the deadline")

// taskColumns reads unset timestamps as 0.
const taskColumns = `_id, todo_list_id, position_in_todo_list, name, description, priority,
	COALESCE(deadline, 0) AS deadline, done, progress,
	COALESCE(deadline_warning_time, 0) AS deadline_warning_time, in_trash`

func validateTask(task *model.TodoTask) error {
	if strings.TrimSpace(task.Name) == "" {
		return ErrEmptyName
	}
	if !task.ValidReminder(task.ReminderTime) {
		return ErrReminderAfterDeadline
	}
	task.Priority = model.PriorityFromInt(int(task.Priority))
	if task.Progress < 0 {
		task.Progress = 0
	} else if task.Progress > 100 {
		task.Progress = 100
	}
	return nil
}

// CreateTask inserts a task into an existing list and returns its ID. A
// zero ListPosition appends the task to the end of the list.
func (s *SQLiteStore) CreateTask(ctx context.Context, task model.TodoTask) (int64, error) {
	if err := validateTask(&task); err != nil {
		return 0, fmt.Errorf("creating task: %w", err)
	}

	var id int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var lists int
		if err := tx.GetContext(ctx, &lists,
			"SELECT COUNT(*) FROM todo_list WHERE _id = ?", task.ListID); err != nil {
			return fmt.Errorf("checking list %d: %w", task.ListID, err)
		}
		if lists == 0 {
			return fmt.Errorf("list %d: %w", task.ListID, ErrNotFound)
		}

		if task.ListPosition == 0 {
			var maxPos int
			if err := tx.GetContext(ctx, &maxPos,
				"SELECT COALESCE(MAX(position_in_todo_list), 0) FROM todo_task WHERE todo_list_id = ?",
				task.ListID); err != nil {
				return fmt.Errorf("getting max list position: %w", err)
			}
			task.ListPosition = maxPos + 1
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO todo_task (
				todo_list_id, position_in_todo_list, name, description,
				priority, deadline, done, progress,
				deadline_warning_time, in_trash
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ListID, task.ListPosition, task.Name, task.Description,
			int(task.Priority), nullIfZero(task.Deadline), boolToInt(task.Done), task.Progress,
			nullIfZero(task.ReminderTime), boolToInt(task.InTrash),
		)
		if err != nil {
			return fmt.Errorf("creating task: %w", err)
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateTask writes every column of an existing task. Subtasks are not
// touched.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.TodoTask) error {
	if err := validateTask(&task); err != nil {
		return fmt.Errorf("updating task %d: %w", task.ID, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE todo_task SET
			todo_list_id = ?, position_in_todo_list = ?, name = ?, description = ?,
			priority = ?, deadline = ?, done = ?, progress = ?,
			deadline_warning_time = ?, in_trash = ?
		WHERE _id = ?`,
		task.ListID, task.ListPosition, task.Name, task.Description,
		int(task.Priority), nullIfZero(task.Deadline), boolToInt(task.Done), task.Progress,
		nullIfZero(task.ReminderTime), boolToInt(task.InTrash),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", task.ID, err)
	}
	return expectRow(result, "task", task.ID)
}

// GetTaskByID retrieves a task, trashed or not, with all of its subtasks.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id int64) (*model.TodoTask, error) {
	var task model.TodoTask
	err := s.db.GetContext(ctx, &task,
		"SELECT "+taskColumns+" FROM todo_task WHERE _id = ?", id)
	if err != nil {
		return nil, notFound(err, "task", id)
	}

	task.SubTasks, err = subTasksFor(ctx, s.db, id, true)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTasks retrieves every task that is not in the trash, each with its
// non-trashed subtasks.
func (s *SQLiteStore) GetTasks(ctx context.Context) ([]model.TodoTask, error) {
	return s.queryTasksWithSubTasks(ctx, "in_trash = 0", false)
}

// GetBin retrieves the trashed tasks with all of their subtasks.
func (s *SQLiteStore) GetBin(ctx context.Context) ([]model.TodoTask, error) {
	return s.queryTasksWithSubTasks(ctx, "in_trash > 0", true)
}

func (s *SQLiteStore) queryTasksWithSubTasks(
	ctx context.Context,
	where string,
	trashedSubTasks bool,
) ([]model.TodoTask, error) {
	var tasks []model.TodoTask
	err := s.db.SelectContext(ctx, &tasks,
		"SELECT "+taskColumns+" FROM todo_task WHERE "+where+" ORDER BY todo_list_id, position_in_todo_list, _id")
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}

	for i := range tasks {
		tasks[i].SubTasks, err = subTasksFor(ctx, s.db, tasks[i].ID, trashedSubTasks)
		if err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// SetTaskDone marks a task and all of its subtasks done or undone.
func (s *SQLiteStore) SetTaskDone(ctx context.Context, id int64, done bool) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE todo_task SET done = ? WHERE _id = ?", boolToInt(done), id)
		if err != nil {
			return fmt.Errorf("marking task %d: %w", id, err)
		}
		if err := expectRow(result, "task", id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE todo_subtask SET done = ? WHERE todo_task_id = ?", boolToInt(done), id,
		); err != nil {
			return fmt.Errorf("marking subtasks of task %d: %w", id, err)
		}
		return nil
	})
}

// DeleteTask removes a task's subtasks and then the task itself.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM todo_subtask WHERE todo_task_id = ?", id); err != nil {
			return fmt.Errorf("deleting subtasks of task %d: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM todo_task WHERE _id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting task %d: %w", id, err)
		}
		return expectRow(result, "task", id)
	})
}

// TrashTask moves a task and its subtasks to the bin.
func (s *SQLiteStore) TrashTask(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE todo_task SET in_trash = 1 WHERE _id = ?", id)
		if err != nil {
			return fmt.Errorf("trashing task %d: %w", id, err)
		}
		if err := expectRow(result, "task", id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE todo_subtask SET in_trash = 1 WHERE todo_task_id = ?", id,
		); err != nil {
			return fmt.Errorf("trashing subtasks of task %d: %w", id, err)
		}
		return nil
	})
}

// RecoverTask takes a task and its subtasks out of the bin.
func (s *SQLiteStore) RecoverTask(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE todo_task SET in_trash = 0 WHERE _id = ?", id)
		if err != nil {
			return fmt.Errorf("recovering task %d: %w", id, err)
		}
		if err := expectRow(result, "task", id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE todo_subtask SET in_trash = 0 WHERE todo_task_id = ?", id,
		); err != nil {
			return fmt.Errorf("recovering subtasks of task %d: %w", id, err)
		}
		return nil
	})
}
