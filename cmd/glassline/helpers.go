package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/config"
	"github.com/Veraticus/glassline/internal/model"
	"github.com/Veraticus/glassline/internal/sheets"
	"github.com/Veraticus/glassline/internal/source"
	"github.com/Veraticus/glassline/internal/storage"
	"github.com/spf13/viper"
)

// loadSettings resolves the global configuration.
func loadSettings() (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Settings{}, common.NewUserError("Invalid configuration", err)
	}
	return settings, nil
}

// initStorage opens the entry queue, creating and migrating the database as needed.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	if err := config.EnsureParentDir(dbPath); err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open entry queue: %w", err)
	}
	return store, nil
}

// newSheetsClient builds a Sheets client from the sheets.* configuration.
func newSheetsClient(ctx context.Context) (*sheets.Client, error) {
	cfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Google Sheets is not configured; run 'glassline auth sheets' or set sheets.service_account_path", err)
	}
	return sheets.NewClient(ctx, cfg, slog.Default())
}

// openSource returns the configured record source. The returned close function
// must be called once the records are loaded.
func openSource(ctx context.Context, settings config.Settings) (source.Source, func(), error) {
	noop := func() {}

	switch settings.Source.Kind {
	case source.KindSheets:
		client, err := newSheetsClient(ctx)
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil

	case source.KindSQLite:
		store, err := initStorage(ctx, settings.DatabasePath)
		if err != nil {
			return nil, noop, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close entry queue", "error", err)
			}
		}, nil

	default:
		src, err := source.Open(settings.Source.Kind, settings.Source.Path)
		if err != nil {
			return nil, noop, err
		}
		if wb, ok := src.(*source.WorkbookSource); ok {
			wb.Sheet = settings.Source.Sheet
		}
		return src, noop, nil
	}
}

// loadRecords reads and normalizes every record of the configured source.
func loadRecords(ctx context.Context, settings config.Settings) (model.RecordSet, error) {
	src, closeSource, err := openSource(ctx, settings)
	if err != nil {
		return model.RecordSet{}, err
	}
	defer closeSource()

	set, err := source.LoadRecords(ctx, src)
	if err != nil {
		return model.RecordSet{}, common.NewUserError("Could not read rejection records from "+src.Name(), err)
	}
	return set, nil
}

func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(home, ".config", "glassline", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0750); err != nil {
		return err
	}

	return viper.WriteConfigAs(configFile)
}

// openBrowser tries to open the URL in the default browser.
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start() //nolint:gosec
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start() //nolint:gosec
	case "darwin":
		err = exec.Command("open", url).Start() //nolint:gosec
	}
	if err != nil {
		slog.Debug("Failed to open browser", "error", err)
	}
}
