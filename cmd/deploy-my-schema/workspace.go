package main

import (
	"context"

	"github.com/frusal/deploy-my-schema/internal/cli"
	"github.com/spf13/cobra"
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Manage workspaces in the configured backend",
}

var workspaceInitCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a workspace owned by the logged in user",
	Long: `Creates a workspace with a System module and a Main user module. Without a name the
workspace from frusal.json is created. If nobody is logged in, --user creates a credential
with a random token first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) > 0 {
			name = args[0]
		}
		user, _ := cmd.Flags().GetString("user")
		opts := options(cmd)
		return withSignals(func(ctx context.Context) error {
			return cli.InitWorkspace(ctx, opts, name, user)
		})
	},
}

var workspaceListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List workspaces; the configured one is starred",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		return withSignals(func(ctx context.Context) error {
			return cli.ListWorkspaces(ctx, opts)
		})
	},
}

var workspaceRemoveCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove"},
	Short:   "Delete a workspace",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		return withSignals(func(ctx context.Context) error {
			return cli.DropWorkspace(ctx, opts, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceInitCmd, workspaceListCmd, workspaceRemoveCmd)

	workspaceInitCmd.Flags().String("user", "", "Create a credential for this user if none is stored")
}
