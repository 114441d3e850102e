package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/infrastructure/config"
	"github.com/emiliopalmerini/abtest/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run libsql schema migrations",
	Long: `Run schema migrations for the turso store.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  abtest migrate      # Run all pending migrations
  abtest migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.DB == nil {
		return fmt.Errorf("migrations only apply to the %s store (ABTEST_STORE=%s)", config.StoreTurso, app.Config.Store)
	}

	runner, err := migrate.NewRunner(app.DB.DB, app.Log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	current, _, err := runner.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Current version: %d\n", current)

	if len(args) == 0 {
		applied, err := runner.Up(ctx)
		if err != nil {
			return err
		}
		if applied == 0 {
			fmt.Fprintln(out, "No migrations to run")
			return nil
		}
		fmt.Fprintf(out, "Migrated to version %d (%d migrations applied)\n", runner.Latest(), applied)
		return nil
	}

	target, err := strconv.Atoi(args[0])
	if err != nil || target < 0 {
		return fmt.Errorf("invalid version %q", args[0])
	}
	if target > runner.Latest() {
		return fmt.Errorf("version %d does not exist (latest is %d)", target, runner.Latest())
	}
	if err := runner.To(ctx, target); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated to version %d\n", target)
	return nil
}
