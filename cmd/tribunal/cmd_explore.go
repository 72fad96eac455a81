package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/candor-ai/go-tribunal/infrastructure/generation"
	"github.com/candor-ai/go-tribunal/internal/domain"
)

var (
	exploreVariations  int
	exploreTemperature float64
)

var exploreCmd = &cobra.Command{
	Use:   "explore <problem>",
	Short: "Explore a problem space with multiple position variations",
	Long: `Generates several position variations at spread temperatures, drops
near-duplicates, adjudicates each survivor, and prints a ranked report.`,
	Args: cobra.ExactArgs(1),
	RunE: runExplore,
}

func init() {
	exploreCmd.Flags().IntVar(&exploreVariations, "variations", 0, "number of variations (0 uses the configured default)")
	exploreCmd.Flags().Float64Var(&exploreTemperature, "temperature", 0.7, "base generation temperature")
}

func runExplore(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg := rt.cfg.Explore
	if exploreVariations > 0 {
		cfg.Variations = exploreVariations
	}

	report, err := rt.engine.Explore(cmd.Context(), domain.GenerationRequest{
		Problem:     args[0],
		Temperature: exploreTemperature,
	}, cfg, generation.Similarity)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "explored %d candidates: %d accepted, mean novelty %.2f\n",
		report.Generated, report.Accepted, report.MeanNovelty)
	return nil
}
