package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <experiment>",
	Short: "Print this profile's variant for an experiment",
	Long: `Print the variant for an experiment, assigning one on first use.

The percentage only matters for the first resolution; afterwards the stored
variant is returned no matter what is passed.

Examples:
  abtest resolve checkout-button
  abtest resolve hero-banner --percent 10`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Float64P("percent", "p", domain.DefaultAlternatePercentage, "Chance (0-100) of variant B on first assignment")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.RequireSchema(ctx); err != nil {
		return err
	}

	pct, err := percentFlag(cmd, app.Config.DefaultPercentage)
	if err != nil {
		return err
	}

	v := app.Assigner.Resolve(ctx, args[0], pct)
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}
