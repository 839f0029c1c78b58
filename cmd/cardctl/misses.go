package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codyseavey/card-linker/internal/database"
	"github.com/codyseavey/card-linker/internal/services"
)

func newMissesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "misses",
		Short: "List the queries that most often matched nothing",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reading the report never prunes it
			if err := database.Initialize(globalDB, 0); err != nil {
				return fmt.Errorf("opening database: %w", err)
			}

			result, err := services.NewMissLogService(database.GetDB()).TopMisses(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d distinct misses\n", result.TotalCount)
			for _, m := range result.Misses {
				fmt.Fprintf(out, "%6d  %-30s %s\n", m.Hits, m.Key, m.LastSeen.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultMissLimit, "Maximum number of misses to list")

	return cmd
}
