package entry

import (
	"context"
	"sync"
)

// MockAppender records appended rows for tests.
type MockAppender struct {
	AppendFunc func(ctx context.Context, row Row) error
	Rows       []Row
	mu         sync.Mutex
}

// Append implements Appender.
func (m *MockAppender) Append(ctx context.Context, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendFunc != nil {
		if err := m.AppendFunc(ctx, row); err != nil {
			return err
		}
	}
	m.Rows = append(m.Rows, row)
	return nil
}

// AppendedRows returns a copy of the rows appended so far.
func (m *MockAppender) AppendedRows() []Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]Row, len(m.Rows))
	copy(rows, m.Rows)
	return rows
}
