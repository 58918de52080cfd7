package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/testutil"
)

func TestListCRUD(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.NewTestStore(t)

	if _, err := s.CreateList(ctx, model.TodoList{Name: "  "}); !errors.Is(err, store.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	id, err := s.CreateList(ctx, model.TodoList{Name: "Work"})
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if err := s.UpdateList(ctx, model.TodoList{ID: id, Name: "Office"}); err != nil {
		t.Fatalf("update list: %v", err)
	}

	got, err := s.GetListByID(ctx, id)
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if got.Name != "Office" {
		t.Fatalf("name = %q, want Office", got.Name)
	}

	if err := s.UpdateList(ctx, model.TodoList{ID: 999, Name: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetListByID(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetListsLoadsTasksAndSubTasks(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.NewTestStore(t)

	listID, _ := s.CreateList(ctx, model.TodoList{Name: "Trip"})
	first, err := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "Pack", Priority: model.PriorityHigh})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	second, err := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "Book hotel"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := s.CreateSubTask(ctx, model.TodoSubTask{TaskID: first, Title: "Socks"}); err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	trashedSub, _ := s.CreateSubTask(ctx, model.TodoSubTask{TaskID: first, Title: "Umbrella"})
	if err := s.TrashSubTask(ctx, trashedSub); err != nil {
		t.Fatalf("trash subtask: %v", err)
	}
	if err := s.TrashTask(ctx, second); err != nil {
		t.Fatalf("trash task: %v", err)
	}

	lists, err := s.GetLists(ctx)
	if err != nil {
		t.Fatalf("get lists: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("expected 1 list, got %d", len(lists))
	}
	tasks := lists[0].Tasks
	if len(tasks) != 1 || tasks[0].ID != first {
		t.Fatalf("tasks = %+v, want only task %d", tasks, first)
	}
	if tasks[0].ListName != "Trip" || tasks[0].ListPosition != 1 {
		t.Fatalf("task = %+v", tasks[0])
	}
	if len(tasks[0].SubTasks) != 1 || tasks[0].SubTasks[0].Title != "Socks" {
		t.Fatalf("subtasks = %+v, want only Socks", tasks[0].SubTasks)
	}
}

func TestCreateTaskDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.NewTestStore(t)

	if _, err := s.CreateTask(ctx, model.TodoTask{ListID: 42, Name: "orphan"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing list, got %v", err)
	}

	listID, _ := s.CreateList(ctx, model.TodoList{Name: "L"})
	if _, err := s.CreateTask(ctx, model.TodoTask{ListID: listID}); !errors.Is(err, store.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	_, err := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "late", Deadline: 100, ReminderTime: 200})
	if !errors.Is(err, store.ErrReminderAfterDeadline) {
		t.Fatalf("expected ErrReminderAfterDeadline, got %v", err)
	}

	id, err := s.CreateTask(ctx, model.TodoTask{
		ListID: listID, Name: "pay rent", Priority: 7, Progress: 150,
		Deadline: 1000, ReminderTime: 900,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Priority != model.PriorityMedium || task.Progress != 100 {
		t.Fatalf("priority=%v progress=%d, want medium/100", task.Priority, task.Progress)
	}
	if task.Deadline != 1000 || task.ReminderTime != 900 {
		t.Fatalf("deadline=%d reminder=%d", task.Deadline, task.ReminderTime)
	}

	next, _ := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "second"})
	nextTask, _ := s.GetTaskByID(ctx, next)
	if nextTask.ListPosition != 2 || nextTask.Deadline != 0 {
		t.Fatalf("second task = %+v", nextTask)
	}
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.NewTestStore(t)
	listID, _ := s.CreateList(ctx, model.TodoList{Name: "L"})
	id, _ := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "draft"})

	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	task.Name = "final"
	task.Description = "ship it"
	task.Priority = model.PriorityLow
	task.Done = true
	if err := s.UpdateTask(ctx, *task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	got, _ := s.GetTaskByID(ctx, id)
	if got.Name != "final" || got.Description != "ship it" || got.Priority != model.PriorityLow || !got.Done {
		t.Fatalf("task after update = %+v", got)
	}

	if err := s.UpdateTask(ctx, model.TodoTask{ID: 404, Name: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteListTrashesTasks(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.NewTestStore(t)

	listID, _ := s.CreateList(ctx, model.TodoList{Name: "Old"})
	taskID, _ := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "leftover"})
	subID, _ := s.CreateSubTask(ctx, model.TodoSubTask{TaskID: taskID, Title: "part"})

	if err := s.DeleteList(ctx, listID); err != nil {
		t.Fatalf("delete list: %v", err)
	}
	sub, err := s.GetSubTaskByID(ctx, subID)
	if err != nil {
		t.Fatalf("get subtask: %v", err)
	}
	if !sub.InTrash {
		t.Fatal("subtask of a deleted list must be in the trash")
	}
	if _, err := s.GetListByID(ctx, listID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected list gone, got %v", err)
	}

	bin, err := s.GetBin(ctx)
	if err != nil {
		t.Fatalf("get bin: %v", err)
	}
	if len(bin) != 1 || bin[0].ID != taskID || !bin[0].InTrash {
		t.Fatalf("bin = %+v, want trashed task %d", bin, taskID)
	}

	if err := s.DeleteList(ctx, listID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTrashAndRecoverTask(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.NewTestStore(t)

	listID, _ := s.CreateList(ctx, model.TodoList{Name: "L"})
	taskID, _ := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "t"})
	subID, _ := s.CreateSubTask(ctx, model.TodoSubTask{TaskID: taskID, Title: "s"})

	if err := s.TrashTask(ctx, taskID); err != nil {
		t.Fatalf("trash task: %v", err)
	}
	sub, err := s.GetSubTaskByID(ctx, subID)
	if err != nil {
		t.Fatalf("get subtask: %v", err)
	}
	if !sub.InTrash {
		t.Fatal("trashing a task must trash its subtasks")
	}

	tasks, _ := s.GetTasks(ctx)
	if len(tasks) != 0 {
		t.Fatalf("expected no active tasks, got %d", len(tasks))
	}
	bin, _ := s.GetBin(ctx)
	if len(bin) != 1 || len(bin[0].SubTasks) != 1 {
		t.Fatalf("bin = %+v, want one task with its trashed subtask", bin)
	}

	if err := s.RecoverTask(ctx, taskID); err != nil {
		t.Fatalf("recover task: %v", err)
	}
	tasks, _ = s.GetTasks(ctx)
	if len(tasks) != 1 || len(tasks[0].SubTasks) != 1 {
		t.Fatalf("tasks after recover = %+v", tasks)
	}
	if sub, _ := s.GetSubTaskByID(ctx, subID); sub == nil || sub.InTrash {
		t.Fatalf("subtask after recover = %+v, want out of the trash", sub)
	}

	if err := s.TrashTask(ctx, 777); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.RecoverSubTask(ctx, 777); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTaskRemovesSubTasks(t *testing.T) {
	ctx := context.Background()
	s, h := testutil.NewTestStore(t)

	listID, _ := s.CreateList(ctx, model.TodoList{Name: "L"})
	taskID, _ := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "t"})
	s.CreateSubTask(ctx, model.TodoSubTask{TaskID: taskID, Title: "a"})
	s.CreateSubTask(ctx, model.TodoSubTask{TaskID: taskID, Title: "b"})

	if err := s.DeleteTask(ctx, taskID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	db, _ := h.DB(ctx)
	if n := countRows(t, db, store.TodoSubTaskTable.Name); n != 0 {
		t.Fatalf("%d subtasks left, want 0", n)
	}
	if _, err := s.GetTaskByID(ctx, taskID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubTaskDoneSyncsTask(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.NewTestStore(t)

	listID, _ := s.CreateList(ctx, model.TodoList{Name: "L"})
	taskID, _ := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "t"})
	a, _ := s.CreateSubTask(ctx, model.TodoSubTask{TaskID: taskID, Title: "a"})
	b, _ := s.CreateSubTask(ctx, model.TodoSubTask{TaskID: taskID, Title: "b"})

	if err := s.SetSubTaskDone(ctx, a, true); err != nil {
		t.Fatalf("done a: %v", err)
	}
	task, _ := s.GetTaskByID(ctx, taskID)
	if task.Done {
		t.Fatal("task should stay open while b is open")
	}

	if err := s.SetSubTaskDone(ctx, b, true); err != nil {
		t.Fatalf("done b: %v", err)
	}
	task, _ = s.GetTaskByID(ctx, taskID)
	if !task.Done {
		t.Fatal("task should be done once all subtasks are done")
	}

	if err := s.SetSubTaskDone(ctx, a, false); err != nil {
		t.Fatalf("undo a: %v", err)
	}
	task, _ = s.GetTaskByID(ctx, taskID)
	if task.Done {
		t.Fatal("task should reopen when a subtask reopens")
	}

	if err := s.SetSubTaskDone(ctx, 999, true); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTrashedSubTaskDoneLeavesTask(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.NewTestStore(t)

	listID, _ := s.CreateList(ctx, model.TodoList{Name: "L"})
	taskID, _ := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "t"})
	subID, _ := s.CreateSubTask(ctx, model.TodoSubTask{TaskID: taskID, Title: "only"})
	if err := s.TrashSubTask(ctx, subID); err != nil {
		t.Fatalf("trash subtask: %v", err)
	}

	if err := s.SetSubTaskDone(ctx, subID, false); err != nil {
		t.Fatalf("mark trashed subtask open: %v", err)
	}
	task, _ := s.GetTaskByID(ctx, taskID)
	if task.Done {
		t.Fatal("reopening a trashed subtask must not mark its task done")
	}

	if err := s.SetSubTaskDone(ctx, subID, true); err != nil {
		t.Fatalf("mark trashed subtask done: %v", err)
	}
	task, _ = s.GetTaskByID(ctx, taskID)
	if task.Done {
		t.Fatal("a trashed subtask must not change its task")
	}
	if !task.SubTasks[0].Done {
		t.Fatalf("subtask = %+v, want done", task.SubTasks[0])
	}
}

func TestSetTaskDoneMarksSubTasks(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.NewTestStore(t)

	listID, _ := s.CreateList(ctx, model.TodoList{Name: "L"})
	taskID, _ := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "t"})
	s.CreateSubTask(ctx, model.TodoSubTask{TaskID: taskID, Title: "a"})

	if err := s.SetTaskDone(ctx, taskID, true); err != nil {
		t.Fatalf("set done: %v", err)
	}
	task, _ := s.GetTaskByID(ctx, taskID)
	if !task.Done || !task.SubTasks[0].Done {
		t.Fatalf("task = %+v, want task and subtask done", task)
	}

	if err := s.SetTaskDone(ctx, 5, true); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAndDeleteSubTask(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.NewTestStore(t)

	listID, _ := s.CreateList(ctx, model.TodoList{Name: "L"})
	taskID, _ := s.CreateTask(ctx, model.TodoTask{ListID: listID, Name: "t"})
	if _, err := s.CreateSubTask(ctx, model.TodoSubTask{TaskID: 99, Title: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing task, got %v", err)
	}
	subID, _ := s.CreateSubTask(ctx, model.TodoSubTask{TaskID: taskID, Title: "old"})

	if err := s.UpdateSubTask(ctx, model.TodoSubTask{ID: subID, TaskID: taskID, Title: ""}); !errors.Is(err, store.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := s.UpdateSubTask(ctx, model.TodoSubTask{ID: subID, TaskID: taskID, Title: "new", Done: true}); err != nil {
		t.Fatalf("update subtask: %v", err)
	}
	sub, err := s.GetSubTaskByID(ctx, subID)
	if err != nil {
		t.Fatalf("get subtask: %v", err)
	}
	if sub.Title != "new" || !sub.Done || sub.TaskID != taskID {
		t.Fatalf("subtask = %+v", sub)
	}

	if err := s.DeleteSubTask(ctx, subID); err != nil {
		t.Fatalf("delete subtask: %v", err)
	}
	if err := s.DeleteSubTask(ctx, subID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetSubTaskByID(ctx, subID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestReminders(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.NewTestStore(t)
	listID, _ := s.CreateList(ctx, model.TodoList{Name: "L"})

	const now = 10_000
	mk := func(name string, reminder int64, done bool) int64 {
		t.Helper()
		id, err := s.CreateTask(ctx, model.TodoTask{
			ListID: listID, Name: name, ReminderTime: reminder, Done: done,
		})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		return id
	}
	due := mk("due", now-100, false)
	locked := mk("locked", now-50, false)
	mk("finished", now-10, true)
	soon := mk("soon", now+60, false)
	mk("later", now+3600, false)
	mk("no reminder", 0, false)

	next, err := s.GetNextDueTask(ctx, now)
	if err != nil {
		t.Fatalf("next due: %v", err)
	}
	if next == nil || next.ID != soon {
		t.Fatalf("next due = %+v, want task %d", next, soon)
	}

	tasks, err := s.GetTasksToRemind(ctx, now, []int64{locked})
	if err != nil {
		t.Fatalf("tasks to remind: %v", err)
	}
	var ids []int64
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	if len(ids) != 2 || ids[0] != due || ids[1] != soon {
		t.Fatalf("remind ids = %v, want [%d %d]", ids, due, soon)
	}

	tasks, err = s.GetTasksToRemind(ctx, now, nil)
	if err != nil {
		t.Fatalf("tasks to remind without locks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks without locks, got %d", len(tasks))
	}

	none, err := s.GetNextDueTask(ctx, now+1_000_000)
	if err != nil || none != nil {
		t.Fatalf("expected no next task, got %+v, %v", none, err)
	}
}
