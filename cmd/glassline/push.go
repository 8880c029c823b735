package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/glassline/internal/cli"
	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/entry"
	"github.com/Veraticus/glassline/internal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func pushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Send queued entries to Google Sheets",
		Long: `Append every entry queued in the local database (entry target sqlite) to the
Google Sheets worksheet. Each entry is marked as pushed once it is appended, so an
interrupted push can simply be run again.`,
		RunE: runPush,
	}

	cmd.Flags().Bool("dry-run", false, "Only report how many entries are pending")

	return cmd
}

// entryQueue is the part of the sqlite store that push drains.
type entryQueue interface {
	Pending(ctx context.Context) ([]storage.QueuedEntry, error)
	MarkPushed(ctx context.Context, ids ...int64) error
}

func runPush(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context(), settings.DatabasePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close entry queue", "error", err)
		}
	}()

	pending, err := store.CountPending(cmd.Context())
	if err != nil {
		return err
	}
	if pending == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No queued entries to push."))
		return nil
	}
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d entries waiting to be pushed.", pending)))
		return nil
	}

	client, err := newSheetsClient(cmd.Context())
	if err != nil {
		return err
	}
	if _, err := client.EnsureSpreadsheet(cmd.Context(), settings.Entry.Schema.Header()); err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(out, "Pushed entries are saved; run 'glassline push' again to continue.")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	pushed, err := pushEntries(ctx, store, client, newPushBar(out, pending))
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return common.NewUserError(fmt.Sprintf("Push stopped after %d of %d entries", pushed, pending), err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Pushed %d entries to Google Sheets", pushed)))
	return nil
}

// pushEntries appends each pending entry to dest in queue order and marks it pushed.
// It stops at the first failure and returns how many entries were pushed.
func pushEntries(ctx context.Context, queue entryQueue, dest entry.Appender, bar *progressbar.ProgressBar) (int, error) {
	entries, err := queue.Pending(ctx)
	if err != nil {
		return 0, err
	}

	pushed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return pushed, err
		}
		if err := dest.Append(ctx, e.Row); err != nil {
			return pushed, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		if err := queue.MarkPushed(ctx, e.ID); err != nil {
			return pushed, fmt.Errorf("entry %d appended but not marked: %w", e.ID, err)
		}
		pushed++

		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	return pushed, nil
}

func newPushBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Pushing entries...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
