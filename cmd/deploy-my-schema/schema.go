package main

import (
	"context"

	"github.com/frusal/deploy-my-schema/internal/cli"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect workspace schemas",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show [workspace]",
	Short: "Print the user classes of a workspace",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) > 0 {
			name = args[0]
		}
		mermaid, _ := cmd.Flags().GetBool("mermaid")
		opts := options(cmd)
		return withSignals(func(ctx context.Context) error {
			return cli.ShowSchema(ctx, opts, name, mermaid)
		})
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaShowCmd)

	schemaShowCmd.Flags().Bool("mermaid", false, "Print a Mermaid class diagram instead of markdown")
}
