package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "abtest",
	Short: "Sticky A/B variant assignment and event tracking",
	Long: `abtest assigns this profile to a variant of a named experiment, keeps
that assignment stable across runs, and records events tagged with it.

Assignments are stored under ABTEST_KEY_PREFIX in the configured store
(ABTEST_STORE=badger|turso|memory). Events go to the log and, when
ABTEST_OTEL_ENABLED is set, to an OTLP collector.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(assignmentsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(simulateCmd)
}
