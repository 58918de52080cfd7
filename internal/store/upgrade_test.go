package store

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
)

func TestExecuteScriptSplitsOnTrailingSemicolon(t *testing.T) {
	ctx := context.Background()
	h := NewHelper(":memory:")
	defer h.Close()
	db, err := h.DB(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	script := `ALTER TABLE todo_list
	ADD COLUMN color TEXT NOT NULL DEFAULT '';
INSERT INTO todo_list (name, color) VALUES ('a;b', 'red');  
INSERT INTO todo_list (name) VALUES ('unterminated')`

	n, err := executeScript(ctx, db, strings.NewReader(script))
	if err != nil {
		t.Fatalf("executeScript: %v", err)
	}
	if n != 2 {
		t.Fatalf("executed %d statements, want 2", n)
	}

	var names []string
	if err := db.Select(&names, "SELECT name FROM todo_list"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(names) != 1 || names[0] != "a;b" {
		t.Fatalf("names = %v, want [a;b]", names)
	}
}

func TestScriptUpgraderRunsEachStep(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"from_1_to_2.sql": {Data: []byte("ALTER TABLE todo_list ADD COLUMN color TEXT;\n")},
		// from_2_to_3.sql is missing and skipped.
		"from_3_to_4.sql": {Data: []byte("CREATE TABLE todo_tag (\n\t_id INTEGER PRIMARY KEY,\n\tname TEXT\n);\n")},
	}

	h := NewHelper(":memory:", WithUpgrader(ScriptUpgrader{FS: fsys}))
	defer h.Close()
	if _, err := h.DB(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := h.DB(ctx); err != nil {
		t.Fatalf("second DB call: %v", err)
	}

	db, _ := h.DB(ctx)
	if _, err := db.Exec("INSERT INTO todo_list (name) VALUES ('keep')"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := h.Migrate(ctx, 4); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tables, err := h.ExistingTables(ctx)
	if err != nil {
		t.Fatalf("tables: %v", err)
	}
	if strings.Join(tables, ",") != "todo_list,todo_subtask,todo_tag,todo_task" {
		t.Fatalf("tables = %v", tables)
	}

	var color *string
	if err := db.Get(&color, "SELECT color FROM todo_list WHERE name = 'keep'"); err != nil {
		t.Fatalf("row should survive script upgrade: %v", err)
	}

	v, err := h.Version(ctx)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 4 {
		t.Fatalf("version = %d, want 4", v)
	}
}

func TestScriptUpgraderDowngradeRunsNothing(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"from_1_to_2.sql": {Data: []byte("DROP TABLE todo_list;\n")},
	}
	h := NewHelper(":memory:", WithVersion(2), WithUpgrader(ScriptUpgrader{FS: fsys}))
	defer h.Close()

	if err := h.Migrate(ctx, 1); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	tables, err := h.ExistingTables(ctx)
	if err != nil {
		t.Fatalf("tables: %v", err)
	}
	if len(tables) != 3 {
		t.Fatalf("tables = %v, want the three todo tables", tables)
	}
}

func TestScriptUpgraderReportsFailingStatement(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"from_1_to_2.sql": {Data: []byte("INSERT INTO missing_table VALUES (1);\n")},
	}
	h := NewHelper(":memory:", WithUpgrader(ScriptUpgrader{FS: fsys}))
	defer h.Close()

	err := h.Migrate(ctx, 2)
	if err == nil {
		t.Fatal("expected error from failing script")
	}
	if !IsMissingTable(err) {
		t.Fatalf("expected no such table error, got %v", err)
	}
	if !strings.Contains(err.Error(), "from_1_to_2.sql") {
		t.Fatalf("error should name the script: %v", err)
	}

	// The failed migration rolled back, so the version is unchanged.
	v, err := h.Version(ctx)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != DatabaseVersion {
		t.Fatalf("version = %d, want %d", v, DatabaseVersion)
	}
}

func TestScriptName(t *testing.T) {
	if got := ScriptName(1); got != "from_1_to_2.sql" {
		t.Fatalf("ScriptName(1) = %q", got)
	}
}

func TestMigrateStartsFromStoredVersion(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		// Must not run: the file is already past version 1.
		"from_1_to_2.sql": {Data: []byte("INSERT INTO missing_table VALUES (1);\n")},
		"from_2_to_3.sql": {Data: []byte("ALTER TABLE todo_task ADD COLUMN tag TEXT;\n")},
	}
	h := NewHelper(":memory:", WithVersion(2), WithUpgrader(ScriptUpgrader{FS: fsys}))
	defer h.Close()

	if err := h.Migrate(ctx, 3); err != nil {
		t.Fatalf("migrate from stored version 2: %v", err)
	}

	db, _ := h.DB(ctx)
	var tags []string
	if err := db.Select(&tags, "SELECT COALESCE(tag, '') FROM todo_task"); err != nil {
		t.Fatalf("step from_2_to_3 did not run: %v", err)
	}
	if v, _ := h.Version(ctx); v != 3 {
		t.Fatalf("version = %d, want 3", v)
	}
}

func TestIsMissingTable(t *testing.T) {
	h := NewHelper(":memory:")
	defer h.Close()
	db, err := h.DB(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = db.Exec("SELECT * FROM no_table_here")
	if !IsMissingTable(err) {
		t.Fatalf("IsMissingTable(%v) = false", err)
	}
	if IsMissingTable(nil) {
		t.Fatal("IsMissingTable(nil) = true")
	}
	_, err = db.Exec("SELEC 1")
	if IsMissingTable(err) {
		t.Fatalf("syntax error %v reported as missing table", err)
	}
}
