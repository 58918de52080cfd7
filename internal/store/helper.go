package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nhle/todolist/internal/model"
)

// DatabaseName is the file name of the todo database.
const DatabaseName = model.DefaultDatabaseName

// DatabaseVersion is the schema version files are created at and
// upgraded or downgraded to when opened.
const DatabaseVersion = model.DefaultDatabaseVersion

// Execer is satisfied by *sqlx.DB and *sqlx.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Helper owns the todo database file. It opens the file on first use and
// runs the create, upgrade, downgrade and open callbacks depending on the
// schema version stored in the file.
type Helper struct {
	path     string
	version  int
	log      *zap.Logger
	upgrader Upgrader

	mu sync.Mutex
	db *sqlx.DB
}

// Option configures a Helper.
type Option func(*Helper)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(h *Helper) {
		if l != nil {
			h.log = l
		}
	}
}

// WithVersion overrides DatabaseVersion.
func WithVersion(v int) Option {
	return func(h *Helper) { h.version = v }
}

// WithUpgrader replaces the default ResetUpgrader.
func WithUpgrader(u Upgrader) Option {
	return func(h *Helper) {
		if u != nil {
			h.upgrader = u
		}
	}
}

// NewHelper returns a Helper for the database at path. Nothing is opened
// until DB is called. Pass ":memory:" for a private in-memory database.
func NewHelper(path string, opts ...Option) *Helper {
	h := &Helper{
		path:     path,
		version:  DatabaseVersion,
		log:      zap.NewNop(),
		upgrader: ResetUpgrader{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewHelperFromConfig builds a Helper from the database section of the
// application config, selecting the upgrade strategy it names.
func NewHelperFromConfig(cfg model.DatabaseConfig, log *zap.Logger) (*Helper, error) {
	opts := []Option{WithLogger(log), WithVersion(cfg.Version)}

	switch cfg.UpgradeStrategy {
	case "", model.UpgradeStrategyReset:
	case model.UpgradeStrategyScript:
		if cfg.MigrationsDir == "" {
			return nil, fmt.Errorf("script upgrades need a migrations directory")
		}
		opts = append(opts, WithUpgrader(ScriptUpgrader{
			FS:  os.DirFS(cfg.MigrationsDir),
			Log: log,
		}))
	default:
		return nil, fmt.Errorf("unknown upgrade strategy %q", cfg.UpgradeStrategy)
	}

	return NewHelper(cfg.Path(), opts...), nil
}

var (
	instanceOnce sync.Once
	instance     *Helper
)

// Instance returns the process-wide Helper. The first call constructs it
// from path and opts; later calls return the same Helper and ignore their
// arguments. Prefer passing a Helper built with NewHelper explicitly.
func Instance(path string, opts ...Option) *Helper {
	instanceOnce.Do(func() {
		instance = NewHelper(path, opts...)
	})
	return instance
}

// Path returns the database file path.
func (h *Helper) Path() string {
	return h.path
}

// TargetVersion returns the schema version the file is brought to on open.
func (h *Helper) TargetVersion() int {
	return h.version
}

// DB returns the shared handle, opening the database on the first call.
// After Close, the next call reopens it.
func (h *Helper) DB(ctx context.Context) (*sqlx.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db != nil {
		return h.db, nil
	}

	db, err := h.open(ctx)
	if err != nil {
		return nil, err
	}
	h.db = db
	return db, nil
}

// Close closes the underlying database connection if it is open.
func (h *Helper) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}

// Version returns the schema version stored in the file.
func (h *Helper) Version(ctx context.Context) (int, error) {
	db, err := h.DB(ctx)
	if err != nil {
		return 0, err
	}
	return userVersion(ctx, db)
}

// PeekVersion reads the version stored in the file without running any
// callback. A missing file or in-memory database reports 0.
func (h *Helper) PeekVersion(ctx context.Context) (int, error) {
	if h.isMemory() {
		return 0, nil
	}
	if _, err := os.Stat(h.path); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	db, err := sqlx.Open("sqlite", h.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return 0, fmt.Errorf("opening sqlite db: %w", err)
	}
	defer db.Close()
	return userVersion(ctx, db)
}

func (h *Helper) isMemory() bool {
	return h.path == ":memory:"
}

// dsn enables WAL for file databases and a busy timeout for both kinds.
// Foreign keys stay off: a deleted list keeps its trashed tasks.
func (h *Helper) dsn() string {
	dsn := h.path + "?_pragma=busy_timeout(5000)"
	if !h.isMemory() {
		dsn += "&_pragma=journal_mode(wal)"
	}
	return dsn
}

// open opens (or creates) the file and brings its schema to h.version.
func (h *Helper) open(ctx context.Context) (*sqlx.DB, error) {
	if !h.isMemory() {
		if dir := filepath.Dir(h.path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("creating database dir: %w", err)
			}
		}
	}

	db, err := sqlx.Open("sqlite", h.dsn())
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if h.isMemory() {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", h.path, err)
	}

	if err := h.prepare(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// prepare compares the stored version with the target and runs the
// matching callback in one transaction together with the version bump.
func (h *Helper) prepare(ctx context.Context, db *sqlx.DB) error {
	current, err := userVersion(ctx, db)
	if err != nil {
		return err
	}

	if current != h.version {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		switch {
		case current == 0:
			err = h.OnCreate(ctx, tx)
		case current < h.version:
			err = h.OnUpgrade(ctx, tx, current, h.version)
		default:
			err = h.OnDowngrade(ctx, tx, current, h.version)
		}
		if err != nil {
			return err
		}

		if err := setUserVersion(ctx, tx, h.version); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing schema v%d: %w", h.version, err)
		}
	}

	return h.OnOpen(ctx, db)
}

// OnCreate creates the list, task and subtask tables, in that order.
func (h *Helper) OnCreate(ctx context.Context, exec Execer) error {
	if err := createAll(ctx, exec); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	h.log.Info("onCreate finished", zap.String("path", h.path))
	return nil
}

// OnUpgrade hands the schema change to the configured Upgrader. The
// default ResetUpgrader deletes every row and recreates the tables
// regardless of the two versions.
func (h *Helper) OnUpgrade(ctx context.Context, exec Execer, oldVersion, newVersion int) error {
	h.log.Warn("updating tables",
		zap.Int("old_version", oldVersion),
		zap.Int("new_version", newVersion),
	)
	if err := h.upgrader.Upgrade(ctx, exec, oldVersion, newVersion); err != nil {
		return fmt.Errorf("upgrading schema v%d to v%d: %w", oldVersion, newVersion, err)
	}
	h.log.Info("onUpgrade finished")
	return nil
}

// OnDowngrade behaves exactly like OnUpgrade.
func (h *Helper) OnDowngrade(ctx context.Context, exec Execer, oldVersion, newVersion int) error {
	return h.OnUpgrade(ctx, exec, oldVersion, newVersion)
}

// OnOpen runs after every successful open. It does nothing.
func (h *Helper) OnOpen(ctx context.Context, exec Execer) error {
	return nil
}

// Migrate moves the open database to newVersion. It reads the stored
// version inside the transaction and runs OnDowngrade when newVersion is
// lower, OnUpgrade otherwise, then stores newVersion. The target version
// used by later opens is unchanged.
func (h *Helper) Migrate(ctx context.Context, newVersion int) error {
	return h.inTx(ctx, func(tx *sqlx.Tx) error {
		oldVersion, err := userVersion(ctx, tx)
		if err != nil {
			return err
		}
		if newVersion < oldVersion {
			err = h.OnDowngrade(ctx, tx, oldVersion, newVersion)
		} else {
			err = h.OnUpgrade(ctx, tx, oldVersion, newVersion)
		}
		if err != nil {
			return err
		}
		return setUserVersion(ctx, tx, newVersion)
	})
}

// CreateAll creates any of the three tables that are missing.
func (h *Helper) CreateAll(ctx context.Context) error {
	return h.inTx(ctx, func(tx *sqlx.Tx) error {
		return createAll(ctx, tx)
	})
}

// DeleteAll removes every row from the three tables.
func (h *Helper) DeleteAll(ctx context.Context) error {
	return h.inTx(ctx, func(tx *sqlx.Tx) error {
		return deleteAll(ctx, tx)
	})
}

// DropAll drops the three tables and resets the stored version to 0, so
// the next open recreates them.
func (h *Helper) DropAll(ctx context.Context) error {
	return h.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := dropAll(ctx, tx); err != nil {
			return err
		}
		return setUserVersion(ctx, tx, 0)
	})
}

// ExistingTables returns the names of the user tables in the file, sorted.
func (h *Helper) ExistingTables(ctx context.Context) ([]string, error) {
	db, err := h.DB(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	err = db.SelectContext(ctx, &names, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return names, nil
}

func (h *Helper) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	db, err := h.DB(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func createAll(ctx context.Context, exec Execer) error {
	for _, t := range Tables {
		if _, err := exec.ExecContext(ctx, t.Create); err != nil {
			return fmt.Errorf("creating %s: %w", t.Name, err)
		}
	}
	return nil
}

func deleteAll(ctx context.Context, exec Execer) error {
	for _, t := range Tables {
		if _, err := exec.ExecContext(ctx, "DELETE FROM "+t.Name); err != nil {
			return fmt.Errorf("clearing %s: %w", t.Name, err)
		}
	}
	return nil
}

// dropAll drops in reverse creation order.
func dropAll(ctx context.Context, exec Execer) error {
	for i := len(Tables) - 1; i >= 0; i-- {
		t := Tables[i]
		if _, err := exec.ExecContext(ctx, "DROP TABLE IF EXISTS "+t.Name); err != nil {
			return fmt.Errorf("dropping %s: %w", t.Name, err)
		}
	}
	return nil
}

func userVersion(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	var v int
	if err := sqlx.GetContext(ctx, q, &v, "PRAGMA user_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

func setUserVersion(ctx context.Context, exec Execer, v int) error {
	// PRAGMA does not accept bound parameters.
	if _, err := exec.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
		return fmt.Errorf("writing schema version %d: %w", v, err)
	}
	return nil
}

// IsMissingTable reports whether err is SQLite's "no such table" error.
// modernc reports it as a generic SQLITE_ERROR with no more specific code,
// so the message is the only thing to match on.
func IsMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
