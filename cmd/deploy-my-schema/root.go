package main

import (
	"context"
	"fmt"
	"os"

	"github.com/frusal/deploy-my-schema/internal/cli"
	"github.com/frusal/deploy-my-schema/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deploy-my-schema",
	Short: "Deploys the Product/Order schema into a frusal workspace",
	Long: `deploy-my-schema replaces the classes and types it created earlier in the user module
of the workspace named in frusal.json, then seeds the Product class with sample rows.
Running it without a subcommand is the same as running "deploy".`,
	SilenceUsage: true,
	RunE:         runDeploy,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path of the frusal.json project file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.SilenceErrors = true
}

func options(cmd *cobra.Command) cli.Options {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	level, _ := cmd.Flags().GetString("log-level")
	return cli.Options{
		ConfigPath: configPath,
		Debug:      debug,
		LogLevel:   level,
		Out:        cmd.OutOrStdout(),
		Err:        cmd.ErrOrStderr(),
	}
}

// withSignals runs fn with a context that is cancelled on SIGINT or SIGTERM.
func withSignals(fn func(ctx context.Context) error) error {
	ctx, cancel := cli.WithSignals(context.Background())
	defer cancel()
	return fn(ctx)
}
