package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var assignmentsCmd = &cobra.Command{
	Use:   "assignments",
	Short: "List stored assignments",
	Args:  cobra.NoArgs,
	RunE:  runAssignments,
}

func runAssignments(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.RequireSchema(ctx); err != nil {
		return err
	}

	lister, ok := app.Lister()
	if !ok {
		return fmt.Errorf("store %q cannot list assignments", app.Config.Store)
	}

	list, err := lister.List(ctx, app.Config.KeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to list assignments: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No assignments found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EXPERIMENT\tVARIANT")
	for _, a := range list {
		fmt.Fprintf(w, "%s\t%s\n", a.Experiment, a.Variant)
	}
	return w.Flush()
}
