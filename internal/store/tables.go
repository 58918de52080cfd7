package store

// Table pairs a table name with the statement that creates it.
type Table struct {
	Name   string
	Create string
}

// TodoListTable holds the named lists.
var TodoListTable = Table{
	Name: "todo_list",
	Create: `
CREATE TABLE IF NOT EXISTS todo_list (
	_id  INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);`,
}

// TodoTaskTable holds tasks. deadline and deadline_warning_time are Unix
// seconds; NULL means unset.
var TodoTaskTable = Table{
	Name: "todo_task",
	Create: `
CREATE TABLE IF NOT EXISTS todo_task (
	_id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	todo_list_id          INTEGER NOT NULL,
	position_in_todo_list INTEGER NOT NULL,
	name                  TEXT NOT NULL,
	description           TEXT NOT NULL,
	priority              INTEGER NOT NULL DEFAULT 0,
	deadline              DATETIME DEFAULT NULL,
	done                  INTEGER NOT NULL DEFAULT 0,
	progress              INTEGER NOT NULL DEFAULT 0,
	num_subtasks          INTEGER NOT NULL DEFAULT 0,
	deadline_warning_time NUMERIC NULL DEFAULT NULL,
	in_trash              INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (todo_list_id) REFERENCES todo_list(_id)
);`,
}

// TodoSubTaskTable holds the checklist entries of a task.
var TodoSubTaskTable = Table{
	Name: "todo_subtask",
	Create: `
CREATE TABLE IF NOT EXISTS todo_subtask (
	_id          INTEGER PRIMARY KEY AUTOINCREMENT,
	todo_task_id INTEGER NOT NULL,
	title        TEXT NOT NULL,
	done         INTEGER,
	in_trash     INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (todo_task_id) REFERENCES todo_task(_id)
);`,
}

// Tables lists every table in creation order. Tasks reference lists and
// subtasks reference tasks, so the order must not change.
var Tables = []Table{TodoListTable, TodoTaskTable, TodoSubTaskTable}

// TableNames returns the names of Tables in creation order.
func TableNames() []string {
	names := make([]string, len(Tables))
	for i, t := range Tables {
		names[i] = t.Name
	}
	return names
}
