package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

var trackCmd = &cobra.Command{
	Use:   "track <experiment> <event>",
	Short: "Record an event tagged with the experiment's variant",
	Long: `Declare the experiment (assigning a variant if needed) and record an
event tagged with it. Payload keys named experiment, variant, event or
timestamp replace the built-in fields.

Examples:
  abtest track checkout-button clicked
  abtest track checkout-button purchased -d amount=19.99 -d items=3`,
	Args: cobra.ExactArgs(2),
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().Float64P("percent", "p", domain.DefaultAlternatePercentage, "Chance (0-100) of variant B on first assignment")
	trackCmd.Flags().StringArrayP("data", "d", nil, "Extra payload as key=value (repeatable)")
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	pairs, err := cmd.Flags().GetStringArray("data")
	if err != nil {
		return err
	}
	data, err := parseData(pairs)
	if err != nil {
		return err
	}

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

	test := app.Assigner.Declare(ctx, args[0], pct)
	test.Track(ctx, args[1], data)

	fmt.Fprintf(cmd.OutOrStdout(), "Tracked %s for %s (variant %s)\n", args[1], test.Name(), test.Variant())
	return nil
}
