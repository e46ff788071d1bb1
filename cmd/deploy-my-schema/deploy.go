package main

import (
	"context"

	"github.com/frusal/deploy-my-schema/internal/cli"
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Replace the marked schema and seed the product data",
	Args:  cobra.NoArgs,
	RunE:  runDeploy,
}

func runDeploy(cmd *cobra.Command, args []string) error {
	opts := options(cmd)
	return withSignals(func(ctx context.Context) error {
		return cli.RunDeploy(ctx, opts, nil)
	})
}

func init() {
	rootCmd.AddCommand(deployCmd)
}
