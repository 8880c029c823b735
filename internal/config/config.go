package config

import (
	"fmt"
	"strings"

	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/entry"
	"github.com/Veraticus/glassline/internal/report"
	"github.com/Veraticus/glassline/internal/source"
	"github.com/spf13/viper"
)

// Entry targets.
const (
	TargetSheets   = "sheets"
	TargetSQLite   = "sqlite"
	TargetWorkbook = "workbook"
)

// Defaults written by SetDefaults.
const (
	DefaultDatabasePath = "$HOME/.local/share/glassline/glassline.db"
	DefaultWorkbookPath = "LiveData.xlsx"
	DefaultReportPath   = report.DefaultFilename
)

// Settings is the resolved application configuration.
type Settings struct {
	Source       SourceSettings
	Entry        EntrySettings
	Report       ReportSettings
	DatabasePath string
	WorkbookPath string
}

// SourceSettings selects where records are read from.
type SourceSettings struct {
	Kind  source.Kind
	Path  string
	Sheet string
}

// EntrySettings selects how new records are shaped and where they go.
type EntrySettings struct {
	Schema entry.Schema
	Target string
}

// ReportSettings are export defaults.
type ReportSettings struct {
	Output      string
	TypeTop     int
	ScopeToYear bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.kind", string(source.KindWorkbook))
	v.SetDefault("source.path", DefaultWorkbookPath)
	v.SetDefault("entry.schema", entry.DefaultSchema)
	v.SetDefault("entry.target", TargetSheets)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("workbook.path", DefaultWorkbookPath)
	v.SetDefault("report.output", DefaultReportPath)
	v.SetDefault("report.type_top", 0)
	v.SetDefault("report.scope_to_year", false)
}

// Load resolves the settings held by v.
func Load(v *viper.Viper) (Settings, error) {
	kind, err := source.ParseKind(v.GetString("source.kind"))
	if err != nil {
		return Settings{}, err
	}

	schema, err := entry.LookupSchema(v.GetString("entry.schema"))
	if err != nil {
		return Settings{}, err
	}

	target, err := ParseTarget(v.GetString("entry.target"))
	if err != nil {
		return Settings{}, err
	}

	typeTop := v.GetInt("report.type_top")
	if typeTop < 0 {
		return Settings{}, fmt.Errorf("%w: report.type_top must not be negative", common.ErrInvalidConfig)
	}

	return Settings{
		Source: SourceSettings{
			Kind:  kind,
			Path:  ExpandPath(v.GetString("source.path")),
			Sheet: v.GetString("source.sheet"),
		},
		Entry: EntrySettings{
			Schema: schema,
			Target: target,
		},
		Report: ReportSettings{
			Output:      ExpandPath(v.GetString("report.output")),
			TypeTop:     typeTop,
			ScopeToYear: v.GetBool("report.scope_to_year"),
		},
		DatabasePath: ExpandPath(v.GetString("database.path")),
		WorkbookPath: ExpandPath(v.GetString("workbook.path")),
	}, nil
}

// ParseTarget validates an entry target name. Empty means sheets.
func ParseTarget(s string) (string, error) {
	switch t := strings.ToLower(strings.TrimSpace(s)); t {
	case "":
		return TargetSheets, nil
	case TargetSheets, TargetSQLite, TargetWorkbook:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown entry target %q (want sheets, sqlite or workbook)", common.ErrInvalidConfig, s)
	}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
