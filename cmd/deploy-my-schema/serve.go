package main

import (
	"context"

	"github.com/frusal/deploy-my-schema/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configured workspace store over HTTP",
	Long: `Exposes the backend configured in frusal.json as a workspace service, so that other
machines can use it through the "http" backend. Prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		opts := options(cmd)
		return withSignals(func(ctx context.Context) error {
			return cli.Serve(ctx, opts, addr)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
