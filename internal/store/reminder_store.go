package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/todolist/internal/model"
)

// GetNextDueTask returns the open, non-trashed task whose reminder time is
// the nearest one after now, or nil if there is none.
func (s *SQLiteStore) GetNextDueTask(ctx context.Context, now int64) (*model.TodoTask, error) {
	var task model.TodoTask
	err := s.db.GetContext(ctx, &task, `
		SELECT `+taskColumns+` FROM todo_task
		WHERE done = 0 AND in_trash = 0
			AND deadline_warning_time > 0
			AND deadline_warning_time > ?
		ORDER BY deadline_warning_time - ?
		LIMIT 1`, now, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying next due task: %w", err)
	}
	return &task, nil
}

// GetTasksToRemind returns the open, non-trashed tasks whose reminder time
// has been reached, skipping lockedIDs (tasks the user was just notified
// about), followed by the next due task if there is one.
func (s *SQLiteStore) GetTasksToRemind(
	ctx context.Context,
	now int64,
	lockedIDs []int64,
) ([]model.TodoTask, error) {
	query := `
		SELECT ` + taskColumns + ` FROM todo_task
		WHERE done = 0 AND in_trash = 0
			AND deadline_warning_time > 0
			AND deadline_warning_time <= ?`
	args := []any{now}

	if len(lockedIDs) > 0 {
		var (
			in     string
			inArgs []any
			err    error
		)
		in, inArgs, err = sqlx.In(" AND _id NOT IN (?)", lockedIDs)
		if err != nil {
			return nil, fmt.Errorf("building locked id filter: %w", err)
		}
		query += in
		args = append(args, inArgs...)
	}
	query += " ORDER BY deadline_warning_time, _id"

	var tasks []model.TodoTask
	if err := s.db.SelectContext(ctx, &tasks, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying tasks to remind: %w", err)
	}

	next, err := s.GetNextDueTask(ctx, now)
	if err != nil {
		return nil, err
	}
	if next != nil {
		tasks = append(tasks, *next)
	}
	return tasks, nil
}
