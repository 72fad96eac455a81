package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/candor-ai/go-tribunal/infrastructure/generation"
	"github.com/candor-ai/go-tribunal/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tribunal HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer rt.close()

	server := api.NewServer(rt.engine, rt.store, rt.cfg,
		api.WithVersion(version),
		api.WithSimilarity(generation.Similarity),
	)
	return server.ListenAndServe(ctx)
}
