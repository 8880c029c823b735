package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/entry"
	"github.com/Veraticus/glassline/internal/model"
)

// QueuedEntry is a stored row awaiting (or past) a push to the shared sheet.
type QueuedEntry struct {
	CreatedAt time.Time
	PushedAt  *time.Time
	Row       entry.Row
	ID        int64
}

// Append stores a shaped row as pending.
func (s *SQLiteStorage) Append(ctx context.Context, row entry.Row) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(row.Values) == 0 {
		return fmt.Errorf("%w: row has no values", ErrInvalidEntry)
	}

	header, err := json.Marshal(row.Schema.Header())
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	values, err := json.Marshal(row.Values)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (schema_name, header, row_values, created_at) VALUES (?, ?, ?, ?)`,
		row.Schema.Name, string(header), string(values), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	id, _ := res.LastInsertId()
	s.logger.Debug("queued entry", "id", id, "schema", row.Schema.Name)
	return nil
}

// Pending returns entries not yet pushed, oldest first.
func (s *SQLiteStorage) Pending(ctx context.Context) ([]QueuedEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryEntries(ctx, `WHERE pushed_at IS NULL`)
}

// Entries returns every stored entry, oldest first.
func (s *SQLiteStorage) Entries(ctx context.Context) ([]QueuedEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryEntries(ctx, "")
}

// CountPending returns the number of entries not yet pushed.
func (s *SQLiteStorage) CountPending(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE pushed_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending entries: %w", err)
	}
	return n, nil
}

// MarkPushed records that the given entries reached the shared sheet. Unknown ids
// return common.ErrNotFound and nothing is changed.
func (s *SQLiteStorage) MarkPushed(ctx context.Context, ids ...int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateIDs(ids); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE entries SET pushed_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, now, id)
		if err != nil {
			return fmt.Errorf("failed to mark entry %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: entry %d", common.ErrNotFound, id)
		}
	}

	return tx.Commit()
}

// Load returns every stored entry keyed by its schema header, so the queue can be
// read like any other record source.
func (s *SQLiteStorage) Load(ctx context.Context) ([]model.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT header, row_values FROM entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.RawRecord
	for rows.Next() {
		var headerJSON, valuesJSON string
		if err := rows.Scan(&headerJSON, &valuesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		var header []string
		if err := json.Unmarshal([]byte(headerJSON), &header); err != nil {
			return nil, fmt.Errorf("failed to decode header: %w", err)
		}
		values, err := decodeValues(valuesJSON)
		if err != nil {
			return nil, err
		}

		rec := make(model.RawRecord, len(header))
		for i, name := range header {
			if i < len(values) {
				rec[name] = values[i]
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStorage) queryEntries(ctx context.Context, where string) ([]QueuedEntry, error) {
	query := strings.TrimSpace(`SELECT id, schema_name, row_values, created_at, pushed_at FROM entries ` + where + ` ORDER BY id`)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []QueuedEntry
	for rows.Next() {
		var (
			e          QueuedEntry
			schemaName string
			valuesJSON string
			pushedAt   sql.NullTime
		)
		if err := rows.Scan(&e.ID, &schemaName, &valuesJSON, &e.CreatedAt, &pushedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		schema, err := entry.LookupSchema(schemaName)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		values, err := decodeValues(valuesJSON)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		e.Row = entry.Row{Schema: schema, Values: values}
		if pushedAt.Valid {
			t := pushedAt.Time
			e.PushedAt = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// decodeValues restores a stored row. Whole JSON numbers come back as ints so a
// re-pushed numeric row matches the original.
func decodeValues(s string) ([]any, error) {
	var values []any
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	for i, v := range values {
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			values[i] = int(f)
		}
	}
	return values, nil
}
