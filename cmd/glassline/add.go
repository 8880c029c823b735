package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/glassline/internal/cli"
	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/config"
	"github.com/Veraticus/glassline/internal/entry"
	"github.com/Veraticus/glassline/internal/notify"
	"github.com/Veraticus/glassline/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a glass rejection",
		Long: `Record a new glass rejection.

The entry is validated, shaped into the configured schema and appended to the
target: Google Sheets, the local entry queue (sqlite) or a LiveData workbook.
Queued entries are sent to Google Sheets later with 'glassline push'.

Examples:
  glassline add --date 2024-03-05 --type Clear --reason Scratched --qty 2 --dept Cutting
  glassline add --interactive --target sqlite`,
		RunE: runAdd,
	}

	cmd.Flags().String("date", "", "Rejection date (YYYY-MM-DD, DD-MM-YYYY or DD/MM/YYYY; default: today)")
	cmd.Flags().String("size", "", "Glass size, e.g. 36x48")
	cmd.Flags().String("thickness", "", "Thickness in mm or a label such as 1/4")
	cmd.Flags().String("type", "", "Glass type")
	cmd.Flags().String("reason", "", "Rejection reason")
	cmd.Flags().Int("qty", 1, "Rejected quantity")
	cmd.Flags().String("vendor", "", "Vendor")
	cmd.Flags().String("so", "", "Sales order")
	cmd.Flags().String("dept", "", "Department")
	cmd.Flags().String("schema", "", "Row schema (sheets-v1, sheets-v2, livedata)")
	cmd.Flags().String("target", "", "Where to append the entry (sheets, sqlite, workbook)")
	cmd.Flags().Bool("notify", false, "Email the entry to notify.to after saving")
	cmd.Flags().BoolP("interactive", "i", false, "Prompt for each field")

	_ = viper.BindPFlag("entry.schema", cmd.Flags().Lookup("schema"))
	_ = viper.BindPFlag("entry.target", cmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("notify.enabled", cmd.Flags().Lookup("notify"))

	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	in, err := inputFromFlags(cmd.Flags(), time.Now())
	if err != nil {
		return err
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		fmt.Fprintln(out, cli.FormatTitle(cli.GlassIcon+" New glass rejection"))
		in, err = cli.NewForm(cmd.InOrStdin(), out).Fill(ctx, in)
		if err != nil {
			if errors.Is(err, cli.ErrInputCancelled) {
				fmt.Fprintln(out, cli.FormatWarning("Entry cancelled"))
				return nil
			}
			return err
		}
	}

	// Reject a bad form before opening any backend.
	if err := entry.Validate(in); err != nil {
		return common.NewUserError("Entry rejected", err)
	}

	appender, closeAppender, err := openAppender(ctx, settings)
	if err != nil {
		return err
	}
	defer closeAppender()

	var notifier entry.Notifier
	if viper.GetBool("notify.enabled") {
		notifier, err = newNotifier()
		if err != nil {
			return err
		}
	}

	result, err := entry.NewSubmitter(settings.Entry.Schema, appender, notifier, slog.Default()).Submit(ctx, in)
	if err != nil {
		return common.NewUserError("Could not save the entry to "+settings.Entry.Target, err)
	}

	cli.RenderFields(out, result.Row.Schema.Header(), result.Row.Strings())
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved to %s (%s)", settings.Entry.Target, result.Row.Schema.Name)))
	switch {
	case result.NotifyErr != nil:
		fmt.Fprintln(out, cli.FormatWarning("Notification not sent: "+result.NotifyErr.Error()))
	case result.Notified:
		fmt.Fprintln(out, cli.FormatInfo("Notification sent"))
	}
	return nil
}

// inputFromFlags builds the entry from command flags. An empty date means today.
func inputFromFlags(flags *pflag.FlagSet, now time.Time) (entry.Input, error) {
	str := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}

	in := entry.Input{
		Size:      str("size"),
		Thickness: str("thickness"),
		GlassType: str("type"),
		Reason:    str("reason"),
		Vendor:    str("vendor"),
		SO:        str("so"),
		Dept:      str("dept"),
	}
	in.Qty, _ = flags.GetInt("qty")

	if raw := str("date"); raw != "" {
		date, ok := cli.ParseFormDate(raw)
		if !ok {
			return entry.Input{}, common.NewUserError(fmt.Sprintf("Invalid date %q (use YYYY-MM-DD)", raw), common.ErrValidation)
		}
		in.Date = date
	} else {
		y, m, d := now.Date()
		in.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	return in, nil
}

// openAppender returns the storage selected by entry.target.
func openAppender(ctx context.Context, settings config.Settings) (entry.Appender, func(), error) {
	noop := func() {}

	switch settings.Entry.Target {
	case config.TargetSQLite:
		store, err := initStorage(ctx, settings.DatabasePath)
		if err != nil {
			return nil, noop, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close entry queue", "error", err)
			}
		}, nil

	case config.TargetWorkbook:
		if err := config.EnsureParentDir(settings.WorkbookPath); err != nil {
			return nil, noop, err
		}
		return storage.NewWorkbookAppender(settings.WorkbookPath), noop, nil

	default:
		client, err := newSheetsClient(ctx)
		if err != nil {
			return nil, noop, err
		}
		if _, err := client.EnsureSpreadsheet(ctx, settings.Entry.Schema.Header()); err != nil {
			return nil, noop, err
		}
		return client, noop, nil
	}
}

// newNotifier builds the SMTP notifier from notify.* settings.
func newNotifier() (entry.Notifier, error) {
	if !config.NotifyConfigured(viper.GetViper()) {
		return nil, common.NewUserError("Notifications need notify.smtp_host, notify.from and notify.to in the config", common.ErrMissingConfig)
	}
	cfg, err := config.LoadNotifyConfig(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid notification settings", err)
	}
	return notify.NewSMTPNotifier(cfg, slog.Default())
}
