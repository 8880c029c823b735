package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/glassline/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// LoadFunc fetches records; Run adapts it to the reload key.
type LoadFunc func(ctx context.Context) (model.RecordSet, error)

// Run shows the dashboard until the user quits or ctx is canceled. load may be nil,
// which disables reloading.
func Run(ctx context.Context, set model.RecordSet, load LoadFunc, opts Options) error {
	if load != nil {
		opts.Loader = func() (model.RecordSet, error) {
			return load(ctx)
		}
	}

	p := tea.NewProgram(New(set, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
