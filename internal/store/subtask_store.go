package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/todolist/internal/model"
)

const subTaskColumns = `_id, todo_task_id, title, COALESCE(done, 0) AS done, in_trash`

// CreateSubTask inserts a subtask under an existing task and returns its ID.
func (s *SQLiteStore) CreateSubTask(ctx context.Context, sub model.TodoSubTask) (int64, error) {
	if strings.TrimSpace(sub.Title) == "" {
		return 0, fmt.Errorf("creating subtask: %w", ErrEmptyName)
	}

	var id int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var tasks int
		if err := tx.GetContext(ctx, &tasks,
			"SELECT COUNT(*) FROM todo_task WHERE _id = ?", sub.TaskID); err != nil {
			return fmt.Errorf("checking task %d: %w", sub.TaskID, err)
		}
		if tasks == 0 {
			return fmt.Errorf("task %d: %w", sub.TaskID, ErrNotFound)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO todo_subtask (todo_task_id, title, done, in_trash)
			VALUES (?, ?, ?, ?)`,
			sub.TaskID, sub.Title, boolToInt(sub.Done), boolToInt(sub.InTrash),
		)
		if err != nil {
			return fmt.Errorf("creating subtask: %w", err)
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetSubTaskByID retrieves a subtask, trashed or not.
func (s *SQLiteStore) GetSubTaskByID(ctx context.Context, id int64) (*model.TodoSubTask, error) {
	var sub model.TodoSubTask
	err := s.db.GetContext(ctx, &sub,
		"SELECT "+subTaskColumns+" FROM todo_subtask WHERE _id = ?", id)
	if err != nil {
		return nil, notFound(err, "subtask", id)
	}
	return &sub, nil
}

// UpdateSubTask writes the title, done and trash flags of a subtask.
func (s *SQLiteStore) UpdateSubTask(ctx context.Context, sub model.TodoSubTask) error {
	if strings.TrimSpace(sub.Title) == "" {
		return fmt.Errorf("updating subtask %d: %w", sub.ID, ErrEmptyName)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE todo_subtask SET title = ?, done = ?, in_trash = ?
		WHERE _id = ?`,
		sub.Title, boolToInt(sub.Done), boolToInt(sub.InTrash), sub.ID,
	)
	if err != nil {
		return fmt.Errorf("updating subtask %d: %w", sub.ID, err)
	}
	return expectRow(result, "subtask", sub.ID)
}

// SetSubTaskDone marks a subtask and then sets its task done exactly when
// all of the task's non-trashed subtasks are done. A trashed subtask, or a
// task left without non-trashed subtasks, does not change the task.
func (s *SQLiteStore) SetSubTaskDone(ctx context.Context, id int64, done bool) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var ref struct {
			TaskID  int64 `db:"todo_task_id"`
			InTrash bool  `db:"in_trash"`
		}
		if err := tx.GetContext(ctx, &ref,
			"SELECT todo_task_id, in_trash FROM todo_subtask WHERE _id = ?", id); err != nil {
			return notFound(err, "subtask", id)
		}
		taskID := ref.TaskID

		if _, err := tx.ExecContext(ctx,
			"UPDATE todo_subtask SET done = ? WHERE _id = ?", boolToInt(done), id); err != nil {
			return fmt.Errorf("marking subtask %d: %w", id, err)
		}

		if ref.InTrash {
			return nil
		}

		task := model.TodoTask{ID: taskID}
		var err error
		task.SubTasks, err = subTasksFor(ctx, tx, taskID, false)
		if err != nil {
			return err
		}
		if len(task.SubTasks) == 0 {
			return nil
		}
		if err := tx.GetContext(ctx, &task.Done,
			"SELECT done FROM todo_task WHERE _id = ?", taskID); err != nil {
			return notFound(err, "task", taskID)
		}
		if !task.SyncDoneWithSubTasks() {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE todo_task SET done = ? WHERE _id = ?", boolToInt(task.Done), taskID); err != nil {
			return fmt.Errorf("marking task %d: %w", taskID, err)
		}
		return nil
	})
}

// DeleteSubTask removes a subtask.
func (s *SQLiteStore) DeleteSubTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM todo_subtask WHERE _id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting subtask %d: %w", id, err)
	}
	return expectRow(result, "subtask", id)
}

// TrashSubTask moves a subtask to the bin.
func (s *SQLiteStore) TrashSubTask(ctx context.Context, id int64) error {
	return s.setSubTaskTrash(ctx, id, true)
}

// RecoverSubTask takes a subtask out of the bin.
func (s *SQLiteStore) RecoverSubTask(ctx context.Context, id int64) error {
	return s.setSubTaskTrash(ctx, id, false)
}

func (s *SQLiteStore) setSubTaskTrash(ctx context.Context, id int64, trash bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE todo_subtask SET in_trash = ? WHERE _id = ?", boolToInt(trash), id)
	if err != nil {
		return fmt.Errorf("updating trash flag of subtask %d: %w", id, err)
	}
	return expectRow(result, "subtask", id)
}

func subTasksFor(
	ctx context.Context,
	q sqlx.QueryerContext,
	taskID int64,
	includeTrashed bool,
) ([]model.TodoSubTask, error) {
	query := "SELECT " + subTaskColumns + " FROM todo_subtask WHERE todo_task_id = ?"
	if !includeTrashed {
		query += " AND in_trash = 0"
	}
	query += " ORDER BY _id"

	var subs []model.TodoSubTask
	if err := sqlx.SelectContext(ctx, q, &subs, query, taskID); err != nil {
		return nil, fmt.Errorf("querying subtasks of task %d: %w", taskID, err)
	}
	return subs, nil
}
