package entry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/glassline/internal/common"
)

// Appender persists a shaped row, e.g. by appending it to a sheet.
type Appender interface {
	Append(ctx context.Context, row Row) error
}

// Notifier announces a persisted row, e.g. by email.
type Notifier interface {
	Notify(ctx context.Context, row Row) error
}

// SubmitResult reports the outcome of a submission. Row is always the shaped row, even
// when a later phase failed, so the caller can retry without re-shaping.
type SubmitResult struct {
	NotifyErr error
	Row       Row
	Persisted bool
	Notified  bool
}

// Submitter shapes entries, then persists and optionally notifies.
type Submitter struct {
	appender Appender
	notifier Notifier
	logger   *slog.Logger
	schema   Schema
}

// NewSubmitter creates a submitter. notifier may be nil.
func NewSubmitter(schema Schema, appender Appender, notifier Notifier, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		schema:   schema,
		appender: appender,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit validates and shapes the input, then hands the row to storage and the notifier.
// Validation errors stop before anything is persisted. A storage failure is returned as
// an error wrapping common.ErrPersistence. A notification failure after a successful
// append is not fatal: it is logged and reported in SubmitResult.NotifyErr.
func (s *Submitter) Submit(ctx context.Context, in Input) (SubmitResult, error) {
	row, err := Shape(in, s.schema)
	if err != nil {
		return SubmitResult{}, err
	}

	result := SubmitResult{Row: row}

	if s.appender == nil {
		return result, fmt.Errorf("%w: no storage configured", common.ErrMissingConfig)
	}
	if err := s.appender.Append(ctx, row); err != nil {
		return result, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	result.Persisted = true

	s.logger.Info("rejection record saved",
		"schema", s.schema.Name,
		"date", row.Value(ColDate),
		"reason", row.Value(ColReason),
		"qty", row.Value(ColQty))

	if s.notifier == nil {
		return result, nil
	}

	if err := s.notifier.Notify(ctx, row); err != nil {
		result.NotifyErr = fmt.Errorf("%w: %w", common.ErrNotification, err)
		s.logger.Warn("failed to send notification", "error", err)
		return result, nil
	}
	result.Notified = true

	return result, nil
}
