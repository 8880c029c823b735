package notify

import (
	"context"
	"sync"

	"github.com/Veraticus/glassline/internal/entry"
)

// MockNotifier records notified rows.
type MockNotifier struct {
	NotifyFunc func(ctx context.Context, row entry.Row) error
	Rows       []entry.Row
	mu         sync.Mutex
}

// Notify records row and returns NotifyFunc's result.
func (m *MockNotifier) Notify(ctx context.Context, row entry.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Rows = append(m.Rows, row)
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, row)
	}
	return nil
}

// NotifiedRows returns a copy of the recorded rows.
func (m *MockNotifier) NotifiedRows() []entry.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]entry.Row, len(m.Rows))
	copy(rows, m.Rows)
	return rows
}
