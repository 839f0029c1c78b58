// Package main provides cardctl, an offline tool for checking how queries
// resolve against a card catalog file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0-dev"
	globalFile string
	globalDB   string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cardctl",
		Short:         "Inspect card catalog indices and resolve queries offline",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalFile, "file", "f", DefaultCardFile, "Card catalog TSV file")
	rootCmd.PersistentFlags().StringVar(&globalDB, "db", DefaultDBPath, "SQLite database holding the lookup miss log")

	rootCmd.AddCommand(
		newResolveCmd(),
		newKeysCmd(),
		newFetchCmd(),
		newMissesCmd(),
	)
	return rootCmd
}
