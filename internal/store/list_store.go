package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/todolist/internal/model"
)

// CreateList inserts a new list and returns its ID.
func (s *SQLiteStore) CreateList(ctx context.Context, list model.TodoList) (int64, error) {
	if strings.TrimSpace(list.Name) == "" {
		return 0, fmt.Errorf("creating list: %w", ErrEmptyName)
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO todo_list (name) VALUES (?)", list.Name)
	if err != nil {
		return 0, fmt.Errorf("creating list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading new list id: %w", err)
	}
	return id, nil
}

// UpdateList renames an existing list.
func (s *SQLiteStore) UpdateList(ctx context.Context, list model.TodoList) error {
	if strings.TrimSpace(list.Name) == "" {
		return fmt.Errorf("updating list %d: %w", list.ID, ErrEmptyName)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE todo_list SET name = ? WHERE _id = ?", list.Name, list.ID)
	if err != nil {
		return fmt.Errorf("updating list %d: %w", list.ID, err)
	}
	return expectRow(result, "list", list.ID)
}

// GetListByID retrieves a list with its non-trashed tasks.
func (s *SQLiteStore) GetListByID(ctx context.Context, id int64) (*model.TodoList, error) {
	var list model.TodoList
	err := s.db.GetContext(ctx, &list,
		"SELECT _id, name FROM todo_list WHERE _id = ?", id)
	if err != nil {
		return nil, notFound(err, "list", id)
	}

	list.Tasks, err = tasksForList(ctx, s.db, list.ID, list.Name)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetLists retrieves every list with its non-trashed tasks, and each task
// with its non-trashed subtasks.
func (s *SQLiteStore) GetLists(ctx context.Context) ([]model.TodoList, error) {
	var lists []model.TodoList
	if err := s.db.SelectContext(ctx, &lists,
		"SELECT _id, name FROM todo_list ORDER BY _id"); err != nil {
		return nil, fmt.Errorf("querying lists: %w", err)
	}

	for i := range lists {
		tasks, err := tasksForList(ctx, s.db, lists[i].ID, lists[i].Name)
		if err != nil {
			return nil, err
		}
		lists[i].Tasks = tasks
	}
	return lists, nil
}

// DeleteList moves the list's tasks and their subtasks to the trash and
// removes the list.
// The trashed tasks keep their list ID and stay recoverable from the bin.
func (s *SQLiteStore) DeleteList(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE todo_subtask SET in_trash = 1
			WHERE todo_task_id IN (SELECT _id FROM todo_task WHERE todo_list_id = ?)`, id,
		); err != nil {
			return fmt.Errorf("trashing subtasks of list %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE todo_task SET in_trash = 1 WHERE todo_list_id = ? AND in_trash = 0", id,
		); err != nil {
			return fmt.Errorf("trashing tasks of list %d: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM todo_list WHERE _id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting list %d: %w", id, err)
		}
		return expectRow(result, "list", id)
	})
}

func tasksForList(
	ctx context.Context,
	q sqlx.QueryerContext,
	listID int64,
	listName string,
) ([]model.TodoTask, error) {
	var tasks []model.TodoTask
	err := sqlx.SelectContext(ctx, q, &tasks, `
		SELECT `+taskColumns+` FROM todo_task
		WHERE todo_list_id = ? AND in_trash = 0
		ORDER BY position_in_todo_list, _id`, listID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks of list %d: %w", listID, err)
	}

	for i := range tasks {
		tasks[i].ListName = listName
		tasks[i].SubTasks, err = subTasksFor(ctx, q, tasks[i].ID, false)
		if err != nil {
			return nil, err
		}
	}
	return tasks, nil
}
