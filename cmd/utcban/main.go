// Package main provides the utcban CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/utcban/pkg/version"
)

// exitCodeFindings is returned when diagnostics were reported or files could not be checked.
const exitCodeFindings = 1

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	cfgFile string
	verbose bool
	quiet   bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "utcban",
		Short: "Find naive UTC datetime APIs in Python code",
		Long: `utcban reports uses of datetime.utcnow() and datetime.utcfromtimestamp(),
which return naive datetimes, in Python sources.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "config file (default is ./.utcban.yaml or $HOME/.utcban.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(checkCmd(flags))
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(treeCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(exitCodeFindings)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "utcban %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}

	return cmd
}
