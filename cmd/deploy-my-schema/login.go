package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/frusal/deploy-my-schema/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the credential used to reach workspaces",
	Long: `Stores a user name and access token in the credential file named by frusal.json
(~/.frusal/credentials.yaml by default). The token is prompted for when --token is not given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		token, _ := cmd.Flags().GetString("token")
		if user == "" {
			return errors.New("--user is required")
		}
		if token == "" {
			var err error
			if token, err = readToken(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
				return err
			}
		}

		opts := options(cmd)
		return withSignals(func(ctx context.Context) error {
			return cli.Login(ctx, opts, user, token)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		return withSignals(func(ctx context.Context) error {
			return cli.Logout(ctx, opts)
		})
	},
}

// readToken prompts without echo on a terminal and reads one line otherwise.
func readToken(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", errors.New("empty token")
	}
	return token, nil
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)

	loginCmd.Flags().String("user", "", "User name")
	loginCmd.Flags().String("token", "", "Access token (prompted for when empty)")
}
