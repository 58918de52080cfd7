// Package cmd implements the todolist CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/logging"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
)

// defaultReminder is how long before its deadline a task without an
// explicit reminder counts as due soon.
const defaultReminder = 24 * 60 * 60

// env carries the flags and the dependencies built from them. Commands
// receive it instead of reaching for package globals.
type env struct {
	configPath string
	dbPath     string
	logLevel   string
	yes        bool

	cfg    *model.AppConfig
	log    *zap.Logger
	helper *store.Helper
	store  *store.SQLiteStore
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:          "todolist",
		Short:        "Todo lists, tasks and subtasks in a local SQLite database",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return e.setup()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return e.teardown()
		},
	}

	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", model.DefaultConfigPath(), "Config file")
	root.PersistentFlags().StringVar(&e.dbPath, "db", "", "Database file (overrides database.dir and database.name)")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "Log level (overrides log.level)")
	root.PersistentFlags().BoolVarP(&e.yes, "yes", "y", false, "Do not ask for confirmation")

	root.AddCommand(
		newDBCmd(e),
		newListCmd(e),
		newTaskCmd(e),
		newSubTaskCmd(e),
		newBinCmd(e),
		newRemindCmd(e),
	)
	return root
}

// setup loads the config and wires the logger and database helper. The
// database itself is opened lazily by the commands that need it.
func (e *env) setup() error {
	cfg, err := model.LoadConfig(e.configPath)
	if err != nil {
		return err
	}
	if e.dbPath != "" {
		cfg.Database.Dir = ""
		cfg.Database.Name = e.dbPath
	}
	if e.logLevel != "" {
		cfg.Log.Level = e.logLevel
	}
	e.cfg = cfg

	e.log, err = logging.New(cfg.Log)
	if err != nil {
		return err
	}

	e.helper, err = store.NewHelperFromConfig(cfg.Database, e.log)
	if err != nil {
		return err
	}
	return nil
}

func (e *env) teardown() error {
	var err error
	if e.helper != nil {
		err = e.helper.Close()
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
	return err
}

// openStore opens the database, running the create, upgrade or downgrade
// callbacks if the file is not at the configured version.
func (e *env) openStore(ctx context.Context) (*store.SQLiteStore, error) {
	if e.store != nil {
		return e.store, nil
	}
	s, err := store.NewSQLiteStore(ctx, e.helper)
	if err != nil {
		return nil, err
	}
	e.store = s
	return s, nil
}

// confirm asks a yes/no question unless --yes was given.
func (e *env) confirm(title, description string) (bool, error) {
	if e.yes {
		return true, nil
	}

	ok := false
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirmation: %w", err)
	}
	return ok, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
