package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/glassline/internal/cli"
	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/config"
	"github.com/Veraticus/glassline/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the rejection report workbook",
		Long: `Export an xlsx report with the AllData sheet, the chart tables and four
charts: weekly rejections, quantity by reason, by glass type and by department.`,
		RunE: runExport,
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default: report.output)")
	cmd.Flags().IntP("year", "y", 0, "Year of the weekly chart (default: latest year in the data)")
	cmd.Flags().StringP("quarter", "q", "", "Restrict the department chart to a quarter, e.g. 2024Q2")
	cmd.Flags().Int("type-top", 0, "Restrict the type chart to the N most frequent types (0: all types)")
	cmd.Flags().Bool("scope-year", false, "Restrict the reason chart to the selected year")

	_ = viper.BindPFlag("report.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("report.type_top", cmd.Flags().Lookup("type-top"))
	_ = viper.BindPFlag("report.scope_to_year", cmd.Flags().Lookup("scope-year"))

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	set, err := loadRecords(ctx, settings)
	if err != nil {
		return err
	}

	year, _ := cmd.Flags().GetInt("year")
	quarter, _ := cmd.Flags().GetString("quarter")
	opts := report.Options{
		Year:        year,
		Quarter:     quarter,
		TypeTopN:    settings.Report.TypeTop,
		ScopeToYear: settings.Report.ScopeToYear,
	}

	data, err := report.Export(set, opts)
	if err != nil {
		return common.NewUserError("Could not build the report", err)
	}

	output := settings.Report.Output
	if err := config.EnsureParentDir(output); err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	slog.Debug("report written", "path", output, "bytes", len(data), "records", set.Len())
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d records to %s", set.Len(), output)))
	return nil
}
