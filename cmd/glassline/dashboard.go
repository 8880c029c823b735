package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/glassline/internal/aggregate"
	"github.com/Veraticus/glassline/internal/cli"
	"github.com/Veraticus/glassline/internal/model"
	"github.com/Veraticus/glassline/internal/tui"
	"github.com/spf13/cobra"
)

type dashboardOptions struct {
	quarter     string
	year        int
	top         int
	interactive bool
}

func dashboardCmd() *cobra.Command {
	var opts dashboardOptions

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show rejection summaries",
		Long: `Show the rejection dashboard: weekly totals with quarter markers, quantity
by reason, by glass type (top N) and by department.

Use --interactive to browse the views in a full screen dashboard.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.year, "year", "y", 0, "Year to show (default: latest year in the data)")
	cmd.Flags().StringVarP(&opts.quarter, "quarter", "q", "", "Quarter for the department view, e.g. 2024Q2")
	cmd.Flags().IntVar(&opts.top, "top", aggregate.DefaultTopN, "Number of glass types to show")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Open the interactive dashboard")

	return cmd
}

func runDashboard(cmd *cobra.Command, opts dashboardOptions) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	set, err := loadRecords(ctx, settings)
	if err != nil {
		return err
	}

	if opts.interactive {
		return tui.Run(ctx, set, func(ctx context.Context) (model.RecordSet, error) {
			return loadRecords(ctx, settings)
		}, tui.Options{
			Title:   "Glassline Damage Report",
			Year:    opts.year,
			Quarter: opts.quarter,
			TopN:    opts.top,
		})
	}

	return printDashboard(cmd.OutOrStdout(), set, opts)
}

// printDashboard writes the four summary views.
func printDashboard(w io.Writer, set model.RecordSet, opts dashboardOptions) error {
	if set.Len() == 0 {
		_, err := fmt.Fprintln(w, cli.FormatWarning("No rejection records found."))
		return err
	}

	year := opts.year
	if year == 0 {
		year, _ = aggregate.LatestYear(set)
	}
	top := opts.top
	if top <= 0 {
		top = aggregate.DefaultTopN
	}

	fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("%s Glass rejections: %d records, %d pieces", cli.GlassIcon, set.Len(), set.TotalQty())))
	fmt.Fprintln(w)

	cli.RenderWeekly(w, year, aggregate.Weekly(set, year))
	fmt.Fprintln(w)

	cli.RenderGroups(w, fmt.Sprintf("Rejections by reason (%d)", year), "Reason", aggregate.ByReason(set, year))
	fmt.Fprintln(w)

	cli.RenderGroups(w, fmt.Sprintf("Top %d glass types (%d)", top, year), "Type", aggregate.ByType(set, year, top))
	fmt.Fprintln(w)

	deptTitle := "Rejections by department"
	var dept []aggregate.Group
	if opts.quarter != "" {
		deptTitle = fmt.Sprintf("%s (%s)", deptTitle, opts.quarter)
		dept = aggregate.ByDept(set, opts.quarter)
	} else {
		dept = aggregate.ByKey(set, aggregate.KeyDept)
	}
	cli.RenderGroups(w, deptTitle, "Dept.", dept)

	cli.RenderGroups(w, "Rejections by month", "Month", aggregate.Monthly(set))

	return nil
}
