package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/candor-ai/go-tribunal/internal/domain"
)

var (
	generateDomains     []string
	generateConstraints []string
	generateTemperature float64
)

var generateCmd = &cobra.Command{
	Use:   "generate <problem>",
	Short: "Generate a position for a problem and adjudicate it",
	Long: `Generates a candidate position for the given problem, runs it through the
critique panel, and prints the finished session as JSON. A REVISE verdict
triggers regeneration with the critique folded in, up to the configured
iteration cap.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringSliceVar(&generateDomains, "domain", nil, "area of inquiry (repeatable)")
	generateCmd.Flags().StringSliceVar(&generateConstraints, "constraint", nil, "requirement the position must satisfy (repeatable)")
	generateCmd.Flags().Float64Var(&generateTemperature, "temperature", 0.7, "generation temperature (0.0-2.0)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.close()

	req := domain.GenerationRequest{
		Problem:     args[0],
		Constraints: generateConstraints,
		Temperature: generateTemperature,
	}
	for _, d := range generateDomains {
		req.Domains = append(req.Domains, domain.ProblemDomain(d))
	}

	session, err := rt.engine.Adjudicate(cmd.Context(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(session.Snapshot()); err != nil {
		return err
	}

	decision := session.Decision()
	fmt.Fprintf(os.Stderr, "verdict: %s (novelty %.2f, %d iterations)\n",
		decision.Outcome, decision.AverageNovelty, session.Iterations())
	return nil
}
