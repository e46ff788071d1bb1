package main

import (
	"fmt"
	"strings"

	"github.com/frusal/deploy-my-schema/internal/cli"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of deploy-my-schema",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "deploy-my-schema version %s\n", strings.TrimSpace(cli.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
