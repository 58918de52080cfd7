package store

import (
	"context"
	"errors"

	"github.com/nhle/todolist/internal/model"
)

var (
	// ErrNotFound is returned when a list, task or subtask does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyName is returned when a list, task or subtask has a blank name.
	ErrEmptyName = errors.New("name must not be empty")
)

// Store defines the persistence interface for todo lists, their tasks and
// the tasks' subtasks.
type Store interface {
	// === Lists ===

	CreateList(ctx context.Context, list model.TodoList) (int64, error)
	UpdateList(ctx context.Context, list model.TodoList) error
	GetListByID(ctx context.Context, id int64) (*model.TodoList, error)
	GetLists(ctx context.Context) ([]model.TodoList, error)
	DeleteList(ctx context.Context, id int64) error

	// === Tasks ===

	CreateTask(ctx context.Context, task model.TodoTask) (int64, error)
	UpdateTask(ctx context.Context, task model.TodoTask) error
	GetTaskByID(ctx context.Context, id int64) (*model.TodoTask, error)
	GetTasks(ctx context.Context) ([]model.TodoTask, error)
	SetTaskDone(ctx context.Context, id int64, done bool) error
	DeleteTask(ctx context.Context, id int64) error

	// === Trash ===

	TrashTask(ctx context.Context, id int64) error
	RecoverTask(ctx context.Context, id int64) error
	GetBin(ctx context.Context) ([]model.TodoTask, error)

	// === Subtasks ===

	CreateSubTask(ctx context.Context, sub model.TodoSubTask) (int64, error)
	UpdateSubTask(ctx context.Context, sub model.TodoSubTask) error
	GetSubTaskByID(ctx context.Context, id int64) (*model.TodoSubTask, error)
	SetSubTaskDone(ctx context.Context, id int64, done bool) error
	DeleteSubTask(ctx context.Context, id int64) error
	TrashSubTask(ctx context.Context, id int64) error
	RecoverSubTask(ctx context.Context, id int64) error

	// === Reminders ===

	GetNextDueTask(ctx context.Context, now int64) (*model.TodoTask, error)
	GetTasksToRemind(ctx context.Context, now int64, lockedIDs []int64) ([]model.TodoTask, error)
}
