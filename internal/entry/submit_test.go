package entry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Veraticus/glassline/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	err  error
	rows []Row
	mu   sync.Mutex
}

func (n *recordingNotifier) Notify(_ context.Context, row Row) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rows = append(n.rows, row)
	return n.err
}

func TestSubmitter_Submit(t *testing.T) {
	store := &MockAppender{}
	notifier := &recordingNotifier{}
	sub := NewSubmitter(SheetsV1, store, notifier, nil)

	result, err := sub.Submit(context.Background(), validInput())

	require.NoError(t, err)
	assert.True(t, result.Persisted)
	assert.True(t, result.Notified)
	assert.NoError(t, result.NotifyErr)
	require.Len(t, store.AppendedRows(), 1)
	assert.Equal(t, result.Row, store.AppendedRows()[0])
	assert.Len(t, notifier.rows, 1)
}

func TestSubmitter_ValidationBlocksPersistence(t *testing.T) {
	store := &MockAppender{}
	notifier := &recordingNotifier{}
	sub := NewSubmitter(SheetsV1, store, notifier, nil)

	in := validInput()
	in.Qty = 0
	_, err := sub.Submit(context.Background(), in)

	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, store.AppendedRows())
	assert.Empty(t, notifier.rows)
}

func TestSubmitter_PersistenceFailureKeepsRow(t *testing.T) {
	errSheet := errors.New("sheet unavailable")
	store := &MockAppender{AppendFunc: func(context.Context, Row) error { return errSheet }}
	notifier := &recordingNotifier{}
	sub := NewSubmitter(SheetsV1, store, notifier, nil)

	result, err := sub.Submit(context.Background(), validInput())

	assert.ErrorIs(t, err, common.ErrPersistence)
	assert.ErrorIs(t, err, errSheet)
	assert.False(t, result.Persisted)
	assert.Len(t, result.Row.Values, len(SheetsV1.Columns))
	assert.Empty(t, notifier.rows)
}

func TestSubmitter_NotificationFailureIsNotFatal(t *testing.T) {
	store := &MockAppender{}
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	sub := NewSubmitter(SheetsV1, store, notifier, nil)

	result, err := sub.Submit(context.Background(), validInput())

	require.NoError(t, err)
	assert.True(t, result.Persisted)
	assert.False(t, result.Notified)
	assert.ErrorIs(t, result.NotifyErr, common.ErrNotification)
	assert.Len(t, store.AppendedRows(), 1)
}

func TestSubmitter_NoStorage(t *testing.T) {
	sub := NewSubmitter(SheetsV1, nil, nil, nil)

	result, err := sub.Submit(context.Background(), validInput())

	assert.ErrorIs(t, err, common.ErrMissingConfig)
	assert.NotEmpty(t, result.Row.Values)
}
