package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/todolist/internal/cli"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/theme"
)

func newDBCmd(e *env) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and manage the database file",
	}

	dbCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the stored and configured schema versions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.runDBStatus(cmd)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create the database or bring it to the configured version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.runDBInit(cmd)
			},
		},
		newDBMigrateCmd(e),
		&cobra.Command{
			Use:   "reset",
			Short: "Delete every list, task and subtask",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.runDBReset(cmd)
			},
		},
		&cobra.Command{
			Use:   "drop",
			Short: "Drop all tables; the next open recreates them",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.runDBDrop(cmd)
			},
		},
	)
	return dbCmd
}

func newDBMigrateCmd(e *env) *cobra.Command {
	var (
		to   int
		save bool
	)
	c := &cobra.Command{
		Use:   "migrate",
		Short: "Open the database at another schema version",
		Long: "Opens the database at the given version, running the upgrade or downgrade.\n" +
			"With the reset strategy every list, task and subtask is deleted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.runDBMigrate(cmd, to, save)
		},
	}
	c.Flags().IntVar(&to, "to", 0, "Target schema version")
	c.Flags().BoolVar(&save, "save", false, "Write the target version to the config file")
	_ = c.MarkFlagRequired("to")
	return c
}

func (e *env) runDBStatus(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	stored, err := e.helper.PeekVersion(ctx)
	if err != nil {
		return err
	}
	target := e.helper.TargetVersion()

	var pending string
	switch {
	case stored == target:
		pending = theme.SuccessStyle.Render("none")
	case stored == 0:
		pending = "create"
	case stored < target:
		pending = theme.WarnStyle.Render("upgrade")
	default:
		pending = theme.WarnStyle.Render("downgrade")
	}

	fmt.Fprintln(out, cli.RenderTitle("Database"))
	fmt.Fprintf(out, "  Path:            %s\n", e.helper.Path())
	fmt.Fprintf(out, "  Stored version:  %d\n", stored)
	fmt.Fprintf(out, "  Target version:  %d\n", target)
	fmt.Fprintf(out, "  Upgrade:         %s\n", e.cfg.Database.UpgradeStrategy)
	fmt.Fprintf(out, "  Pending:         %s\n", pending)

	// Opening a file that is not at the target version runs the callbacks.
	if stored != target {
		fmt.Fprintln(out)
		fmt.Fprintln(out, theme.DimStyle.Render("  Run `todolist db init` to open the database."))
		return nil
	}

	rows, err := e.tableRows(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Table", "Rows"},
		Rows:    rows,
	}))
	return nil
}

// tableRows counts the rows of each known table. A table that is missing
// from the file is reported instead of failing.
func (e *env) tableRows(ctx context.Context) ([][]string, error) {
	db, err := e.helper.DB(ctx)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, name := range store.TableNames() {
		var n int
		err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+name)
		switch {
		case store.IsMissingTable(err):
			rows = append(rows, []string{name, theme.WarnStyle.Render("missing")})
		case err != nil:
			return nil, fmt.Errorf("counting %s: %w", name, err)
		default:
			rows = append(rows, []string{name, fmt.Sprint(n)})
		}
	}
	return rows, nil
}

func (e *env) runDBInit(cmd *cobra.Command) error {
	ctx := cmd.Context()

	if ok, err := e.confirmDestructiveOpen(ctx, e.helper.TargetVersion()); err != nil || !ok {
		return err
	}

	version, err := e.helper.Version(ctx)
	if err != nil {
		return err
	}
	tables, err := e.helper.ExistingTables(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Database %s is at version %d (%d tables)\n",
		e.helper.Path(), version, len(tables))
	return nil
}

func (e *env) runDBMigrate(cmd *cobra.Command, to int, save bool) error {
	ctx := cmd.Context()
	if to < 1 {
		return fmt.Errorf("--to must be >= 1, got %d", to)
	}

	ok, err := e.confirmDestructiveOpen(ctx, to)
	if err != nil || !ok {
		return err
	}

	dbCfg := e.cfg.Database
	dbCfg.Version = to
	h, err := store.NewHelperFromConfig(dbCfg, e.log)
	if err != nil {
		return err
	}
	defer h.Close()

	version, err := h.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Database %s is at version %d\n", h.Path(), version)

	if !save {
		if to != e.cfg.Database.Version {
			fmt.Fprintln(cmd.OutOrStdout(), theme.WarnStyle.Render(fmt.Sprintf(
				"The config still names version %d; the next command moves the file back. Use --save to keep %d.",
				e.cfg.Database.Version, to)))
		}
		return nil
	}

	saved, err := model.LoadConfig(e.configPath)
	if err != nil {
		return err
	}
	saved.Database.Version = to
	if err := model.SaveConfig(e.configPath, saved); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved database.version=%d to %s\n", to, e.configPath)
	return nil
}

// confirmDestructiveOpen asks before opening the file at target would
// delete its data. Only the reset strategy loses rows.
func (e *env) confirmDestructiveOpen(ctx context.Context, target int) (bool, error) {
	stored, err := e.helper.PeekVersion(ctx)
	if err != nil {
		return false, err
	}
	if stored == 0 || stored == target || e.cfg.Database.UpgradeStrategy != model.UpgradeStrategyReset {
		return true, nil
	}

	return e.confirm(
		fmt.Sprintf("Move the database from version %d to %d?", stored, target),
		"Every list, task and subtask will be deleted.",
	)
}

func (e *env) runDBReset(cmd *cobra.Command) error {
	ok, err := e.confirm("Delete all data?", "Every list, task and subtask will be deleted.")
	if err != nil || !ok {
		return err
	}
	if err := e.helper.DeleteAll(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted all lists, tasks and subtasks")
	return nil
}

func (e *env) runDBDrop(cmd *cobra.Command) error {
	ok, err := e.confirm("Drop all tables?", "The tables are recreated empty the next time the database is opened.")
	if err != nil || !ok {
		return err
	}
	if err := e.helper.DropAll(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Dropped all tables")
	return nil
}
