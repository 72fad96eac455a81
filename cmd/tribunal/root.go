package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	logJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "tribunal",
	Short: "Generate philosophical positions and adjudicate them by panel consensus",
	Long: `Tribunal generates candidate positions with an LLM, critiques each one
through a panel of role-specialized evaluators running in parallel, and
renders an ACCEPT, REJECT, or REVISE verdict under a fixed consensus rule.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Missing .env is fine; real deployments export variables directly.
		_ = godotenv.Load()
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tribunal.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.Version = version
}

func setupLogging() {
	var handler slog.Handler
	if logJSON {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
