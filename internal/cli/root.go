/*
Package cli implements the messenger client commands.

Each invocation opens the local mirror, pulls the shared document (falling
back to the mirror when the server is unreachable), runs one operation on the
client core and pushes the result back.
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"messenger/internal/pkg/errs"
)

var (
	version = "dev"

	flagServer  string
	flagMirror  string
	flagVerbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "messenger",
	Short: "Terminal client for the shared-snapshot messenger",
	Long: `messenger talks to a snapshot server holding one shared document of users,
conversations, roles, country bans and ads. It keeps a local mirror so it
keeps working, read-only from everyone else's point of view, while the
server is unreachable.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var ce *errs.CustomError
		if errors.As(err, &ce) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", ce.Message)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "snapshot server URL (default $MESSENGER_SERVER or http://localhost:3000)")
	rootCmd.PersistentFlags().StringVar(&flagMirror, "mirror", "", "local mirror directory (default $MESSENGER_MIRROR or ~/.messenger/mirror)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging on stderr")
}

// withApp opens an App for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
