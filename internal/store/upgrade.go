package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"go.uber.org/zap"
)

// Upgrader moves the schema from one version to another inside the
// transaction the Helper opened for it.
type Upgrader interface {
	Upgrade(ctx context.Context, exec Execer, oldVersion, newVersion int) error
}

// ResetUpgrader deletes every row from the list, task and subtask tables,
// in that order, and recreates the schema. Stored tasks are lost on every
// version change.
type ResetUpgrader struct{}

// Upgrade ignores both versions.
func (ResetUpgrader) Upgrade(ctx context.Context, exec Execer, _, _ int) error {
	if err := deleteAll(ctx, exec); err != nil {
		return err
	}
	return createAll(ctx, exec)
}

// ScriptUpgrader applies one script per version step, named
// from_<v>_to_<v+1>.sql, read from FS. A downgrade runs no steps.
type ScriptUpgrader struct {
	FS  fs.FS
	Log *zap.Logger
}

// ScriptName returns the file name of the step from v to v+1.
func ScriptName(v int) string {
	return fmt.Sprintf("from_%d_to_%d.sql", v, v+1)
}

// Upgrade runs each step from oldVersion up to newVersion. Missing
// scripts are skipped.
func (u ScriptUpgrader) Upgrade(ctx context.Context, exec Execer, oldVersion, newVersion int) error {
	log := u.Log
	if log == nil {
		log = zap.NewNop()
	}

	for v := oldVersion; v < newVersion; v++ {
		name := ScriptName(v)
		log.Debug("looking for migration file", zap.String("file", name))

		f, err := u.FS.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("migration file not found", zap.String("file", name))
			continue
		}
		if err != nil {
			return fmt.Errorf("opening %s: %w", name, err)
		}

		n, err := executeScript(ctx, exec, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("executing %s: %w", name, err)
		}
		log.Info("migration applied", zap.String("file", name), zap.Int("statements", n))
	}
	return nil
}

// executeScript executes the statements in r and returns how many ran.
// A statement ends on a line whose last non-blank character is ';'. Text
// after the last terminated statement is ignored.
func executeScript(ctx context.Context, exec Execer, r io.Reader) (int, error) {
	var (
		stmt strings.Builder
		n    int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		stmt.WriteString(line)
		stmt.WriteString("\n")
		if strings.HasSuffix(strings.TrimRight(line, " \t\r"), ";") {
			if _, err := exec.ExecContext(ctx, stmt.String()); err != nil {
				return n, fmt.Errorf("statement %d: %w", n+1, err)
			}
			n++
			stmt.Reset()
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("reading script: %w", err)
	}
	return n, nil
}
