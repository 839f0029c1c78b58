package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codyseavey/card-linker/internal/services"
)

func newFetchCmd() *cobra.Command {
	var sheetID string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the catalog sheet into the card file",
		RunE: func(cmd *cobra.Command, args []string) error {
			source := services.NewSheetSource(sheetID, globalFile)
			records, err := source.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records\n", globalFile, len(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&sheetID, "sheet", "", "Google Sheet ID (required)")
	_ = cmd.MarkFlagRequired("sheet")

	return cmd
}
