// Package history keeps a local SQLite log of recordings and their
// transcription outcomes.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rahulvramesh/vibeco/internal/controller"
)

type Status string

const (
	StatusRecorded  Status = "recorded"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Entry is one row of the history table.
type Entry struct {
	ID        string
	SessionID string
	Path      string
	Status    Status
	Model     string
	Language  string
	Duration  time.Duration
	Text      string
	RequestID string
	Error     string
	CreatedAt time.Time
}

type Store struct {
	db    *sql.DB
	keep  int
	clock func() time.Time
}

// Open creates or opens the database at path. keep bounds the number of rows
// retained by Prune; zero keeps everything.
func Open(ctx context.Context, path string, keep int) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, keep: keep, clock: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	if err := s.Prune(ctx); err != nil {
		log.Printf("History: prune on open failed: %v", err)
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS history (
    id TEXT PRIMARY KEY,
    session_id TEXT,
    path TEXT NOT NULL,
    status TEXT NOT NULL,
    model TEXT,
    language TEXT,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    text TEXT,
    request_id TEXT,
    error TEXT,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts e, filling in the ID and timestamp when unset.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history(id, session_id, path, status, model, language, duration_ms, text, request_id, error, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.Path, string(e.Status), e.Model, e.Language,
		e.Duration.Milliseconds(), e.Text, e.RequestID, e.Error,
		e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return Entry{}, fmt.Errorf("insert history entry: %w", err)
	}
	return e, nil
}

// List returns up to limit entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, path, status, model, language, duration_ms, text, request_id, error, created_at
		 FROM history ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status, created string
		var durationMS int64
		var session, model, language, text, requestID, errText sql.NullString
		if err := rows.Scan(&e.ID, &session, &e.Path, &status, &model, &language, &durationMS, &text, &requestID, &errText, &created); err != nil {
			return nil, err
		}
		e.SessionID = session.String
		e.Status = Status(status)
		e.Model = model.String
		e.Language = language.String
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.Text = text.String
		e.RequestID = requestID.String
		e.Error = errText.String
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes all but the newest keep entries.
func (s *Store) Prune(ctx context.Context) error {
	if s.keep <= 0 {
		return nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM history WHERE id NOT IN (
		     SELECT id FROM history ORDER BY created_at DESC, rowid DESC LIMIT ?
		 )`, s.keep)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("History: pruned %d entries", n)
	}
	return nil
}

// FromEvent converts a controller event into an entry. Only stops and
// transcription outcomes are recorded.
func FromEvent(ev controller.Event) (Entry, bool) {
	e := Entry{SessionID: ev.SessionID, Path: ev.Path, CreatedAt: ev.Time}
	switch ev.Type {
	case controller.RecordingStopped:
		e.Status = StatusRecorded
		e.Duration = ev.Duration
	case controller.TranscriptionCompleted:
		r := ev.Result
		e.Status = StatusCompleted
		e.Model = r.Model
		e.Language = r.Language
		e.Duration = time.Duration(r.Duration * float64(time.Second))
		e.Text = r.Text
		e.RequestID = r.RequestID
	case controller.TranscriptionFailed:
		e.Status = StatusFailed
		if ev.Err != nil {
			e.Error = ev.Err.Error()
		}
	default:
		return Entry{}, false
	}
	return e, true
}

// Record appends every relevant event until events closes or ctx ends.
func (s *Store) Record(ctx context.Context, events <-chan controller.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			e, ok := FromEvent(ev)
			if !ok {
				continue
			}
			// A cancelled ctx should not lose the final stop event.
			if _, err := s.Append(context.WithoutCancel(ctx), e); err != nil {
				log.Printf("History: %v", err)
				continue
			}
			if err := s.Prune(context.WithoutCancel(ctx)); err != nil {
				log.Printf("History: prune failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
