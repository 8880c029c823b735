package main

import (
	"fmt"

	"github.com/Veraticus/glassline/internal/cli"
	"github.com/spf13/cobra"
)

func tableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "List rejection records",
		Long:  `List rejection records newest first. Records without a date are listed last.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			set, err := loadRecords(cmd.Context(), settings)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if set.Len() == 0 {
				fmt.Fprintln(out, cli.FormatWarning("No rejection records found."))
				return nil
			}

			limit, _ := cmd.Flags().GetInt("limit")
			cli.RenderRecords(out, set, limit)
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 0, "Maximum number of records to list (0: all)")

	return cmd
}
