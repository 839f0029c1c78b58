package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codyseavey/card-linker/internal/services"
)

type keysFlags struct {
	index  string
	prefix string
}

func newKeysCmd() *cobra.Command {
	var flags keysFlags

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the keys registered in an index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(cmd.Context(), cmd.OutOrStdout(), globalFile, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.index, "index", "i", string(services.IndexNickname), "Index to list (title, subtitle, fulltitle, nickname, persona, collinfo)")
	cmd.Flags().StringVarP(&flags.prefix, "prefix", "p", "", "Only list keys starting with this normalized prefix")

	return cmd
}

func parseIndexName(name string) (services.IndexName, error) {
	for _, n := range services.AllIndexNames() {
		if string(n) == strings.ToLower(name) {
			return n, nil
		}
	}
	valid := make([]string, 0, len(services.AllIndexNames()))
	for _, n := range services.AllIndexNames() {
		valid = append(valid, string(n))
	}
	return "", fmt.Errorf("invalid index %q, valid indices: %v", name, valid)
}

func runKeys(ctx context.Context, out io.Writer, path string, flags keysFlags) error {
	name, err := parseIndexName(flags.index)
	if err != nil {
		return err
	}

	bundle, err := loadBundle(ctx, path)
	if err != nil {
		return err
	}

	prefix := services.Scrub(flags.prefix)
	keys := bundle.Keys(name)
	sort.Strings(keys)
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		fmt.Fprintf(out, "%s\t%d\n", k, len(bundle.Lookup(name, k)))
	}
	return nil
}
