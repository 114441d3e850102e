package cli

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/adapters/memory"
	"github.com/emiliopalmerini/abtest/internal/adapters/otel"
	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/experiment"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Dry-run many fresh assignments and report the split",
	Long: `Resolve many fresh experiment names against a throwaway in-memory store
and report how often variant B was drawn. Nothing is persisted or tracked.

Examples:
  abtest simulate -n 100000 -p 20
  abtest simulate --seed 42`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntP("count", "n", 10000, "Number of fresh experiments to resolve")
	simulateCmd.Flags().Float64P("percent", "p", domain.DefaultAlternatePercentage, "Chance (0-100) of variant B")
	simulateCmd.Flags().Uint64("seed", 0, "Random seed (0 picks one)")
}

// simulation summarises a dry run.
type simulation struct {
	Count      int
	Alternates int
	Mean       float64
	StdDev     float64
	Margin     float64
}

func simulate(ctx context.Context, count int, pct float64, random func() float64) (simulation, error) {
	a := experiment.New(memory.NewStore(), otel.NewNoOpSink(), experiment.WithRandom(random))

	draws := make(stats.Float64Data, count)
	alternates := 0
	for i := range draws {
		if a.Resolve(ctx, fmt.Sprintf("sim-%d", i), pct) == domain.AlternateVariant {
			draws[i] = 1
			alternates++
		}
	}

	mean, err := stats.Mean(draws)
	if err != nil {
		return simulation{}, err
	}
	sd, err := stats.StandardDeviation(draws)
	if err != nil {
		return simulation{}, err
	}

	return simulation{
		Count:      count,
		Alternates: alternates,
		Mean:       mean,
		StdDev:     sd,
		Margin:     1.96 * sd / math.Sqrt(float64(count)),
	}, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	pct, _ := cmd.Flags().GetFloat64("percent")
	seed, _ := cmd.Flags().GetUint64("seed")

	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	sim, err := simulate(context.Background(), count, pct, rng.Float64)
	if err != nil {
		return fmt.Errorf("failed to summarise draws: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Seed:       %d\n", seed)
	fmt.Fprintf(out, "Resolved:   %d\n", sim.Count)
	fmt.Fprintf(out, "Variant B:  %d (%.2f%%, expected %.2f%%)\n", sim.Alternates, sim.Mean*100, math.Max(0, math.Min(100, pct)))
	fmt.Fprintf(out, "Std dev:    %.4f\n", sim.StdDev)
	fmt.Fprintf(out, "95%% margin: ±%.2f%%\n", sim.Margin*100)
	return nil
}
