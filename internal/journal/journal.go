// Package journal records dispatch outcomes to SQLite.
//
// The journal is an after-the-fact audit log, not a queue: dispatch stays
// synchronous and an entry is written only once a resolve cycle finishes.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one journaled dispatch cycle.
type Entry struct {
	ID         string
	UpdateID   int64
	Type       string
	ReceivedAt time.Time
	DurationMS int64
	PluginsRun int
	Killed     bool
	Error      *string
}

// Journal persists dispatch entries.
type Journal struct {
	db *sql.DB
}

// New creates a Journal over an opened database.
func New(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Record inserts one entry and returns its generated row id.
func (j *Journal) Record(ctx context.Context, e Entry) (string, error) {
	if e.Type == "" {
		return "", fmt.Errorf("entry type is empty")
	}

	id := uuid.NewString()
	receivedAt := e.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	killed := 0
	if e.Killed {
		killed = 1
	}

	_, err := j.db.ExecContext(ctx, `
INSERT INTO update_log(id, update_id, type, received_at, duration_ms, plugins_run, killed, error)
VALUES(?, ?, ?, ?, ?, ?, ?, ?);
`, id, e.UpdateID, e.Type, receivedAt.Format(time.RFC3339Nano), e.DurationMS, e.PluginsRun, killed, e.Error)
	if err != nil {
		return "", fmt.Errorf("record journal entry: %w", err)
	}
	return id, nil
}

// Recent returns the most recent entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx, `
SELECT id, update_id, type, received_at, duration_ms, plugins_run, killed, error
FROM update_log
ORDER BY received_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			receivedAt string
			killed     int
			errText    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UpdateID, &e.Type, &receivedAt, &e.DurationMS, &e.PluginsRun, &killed, &errText); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, receivedAt); err == nil {
			e.ReceivedAt = t
		}
		e.Killed = killed != 0
		if errText.Valid {
			e.Error = &errText.String
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return out, nil
}
