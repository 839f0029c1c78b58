package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codyseavey/card-linker/internal/services"
)

type resolveFlags struct {
	asJSON bool
}

func newResolveCmd() *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve <query>...",
		Short: "Resolve queries the way a chat trigger would",
		Long:  "Builds the indices from the catalog file and prints the candidates for each query.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), cmd.OutOrStdout(), globalFile, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Print resolutions as JSON")

	return cmd
}

func loadBundle(ctx context.Context, path string) (*services.IndexBundle, error) {
	source := &services.FileSource{Path: path}
	records, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return services.BuildIndex(records), nil
}

func runResolve(ctx context.Context, out io.Writer, path string, queries []string, flags resolveFlags) error {
	bundle, err := loadBundle(ctx, path)
	if err != nil {
		return err
	}

	if flags.asJSON {
		results := make([]services.Resolution, 0, len(queries))
		for _, q := range queries {
			results = append(results, bundle.Resolve(q))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, q := range queries {
		res := bundle.Resolve(q)
		fmt.Fprintf(out, "%s (key %q): %s\n", q, res.Key, res.Outcome())
		for _, c := range res.Candidates {
			fmt.Fprintf(out, "  %-10s %s\n", c.CollInfo, strings.TrimSpace(c.DisplayName))
		}
	}
	return nil
}
