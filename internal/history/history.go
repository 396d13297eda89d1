// Package history keeps an append-only SQLite journal of sessions and the
// record mutations they performed. The journal is an observability aid for
// the history command and the TUI footer; it is never read back into the
// working set, and a journal failure degrades to a logged warning rather
// than failing the operation that triggered it.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"flowledger/internal/logging"
	"flowledger/internal/record"
)

// Operation names journaled by the UI and CLI.
const (
	OpLoad   = "load"
	OpAppend = "append"
	OpUpdate = "update"
	OpDelete = "delete"
	OpSave   = "save"
)

// Store manages the journal database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open creates or opens the journal at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, dbPath: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// initSchema creates the journal schema.
func (s *Store) initSchema() error {
	schema := `
	-- One row per program run
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		dataset_path TEXT NOT NULL
	);

	-- One row per successful mutation
	CREATE TABLE IF NOT EXISTS operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		op TEXT NOT NULL,
		position INTEGER,
		before_json TEXT,
		after_json TEXT,
		at DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);
	CREATE INDEX IF NOT EXISTS idx_operations_session ON operations(session_id);
	CREATE INDEX IF NOT EXISTS idx_operations_at ON operations(at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// Session is one journaling session; Record appends operations to it with a
// monotonic per-session sequence.
type Session struct {
	ID          string
	StartedAt   time.Time
	DatasetPath string

	store   *Store
	nextSeq int
}

// Begin inserts a session row and returns its handle.
func (s *Store) Begin(datasetPath string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:          uuid.New().String(),
		StartedAt:   time.Now().UTC(),
		DatasetPath: datasetPath,
		store:       s,
		nextSeq:     1,
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, started_at, dataset_path)
		VALUES (?, ?, ?)
	`, sess.ID, sess.StartedAt, sess.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to begin session: %w", err)
	}

	logging.History("session %s started (dataset: %s)", sess.ID, datasetPath)
	return sess, nil
}

// Record appends one operation row. Position is 1-based where applicable and
// zero otherwise; before/after may be nil when the operation has no old or
// new record state (load, delete, save).
func (sess *Session) Record(op string, position int, before, after *record.Record) error {
	sess.store.mu.Lock()
	defer sess.store.mu.Unlock()

	seq := sess.nextSeq
	sess.nextSeq++

	_, err := sess.store.db.Exec(`
		INSERT INTO operations (session_id, seq, op, position, before_json, after_json, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, seq, op, position, marshalRecord(before), marshalRecord(after), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record operation: %w", err)
	}

	logging.HistoryDebug("session %s: %s seq=%d position=%d", sess.ID, op, seq, position)
	return nil
}

// marshalRecord renders field state as stable JSON, or NULL for no state.
func marshalRecord(r *record.Record) interface{} {
	if r == nil {
		return nil
	}
	data, err := json.Marshal(map[string]string{
		"throughput":         r.Throughput,
		"available_capacity": r.AvailableCapacity,
	})
	if err != nil {
		return nil
	}
	return string(data)
}

// =============================================================================
// QUERIES
// =============================================================================

// Entry is one journaled operation joined with its session.
type Entry struct {
	SessionID   string
	DatasetPath string
	Seq         int
	Op          string
	Position    int
	Before      string
	After       string
	At          time.Time
}

// Recent returns the newest operations first, at most limit of them.
func (s *Store) Recent(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT o.session_id, s.dataset_path, o.seq, o.op, o.position,
			o.before_json, o.after_json, o.at
		FROM operations o
		JOIN sessions s ON s.id = o.session_id
		ORDER BY o.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var position sql.NullInt64
		var before, after sql.NullString
		if err := rows.Scan(&e.SessionID, &e.DatasetPath, &e.Seq, &e.Op,
			&position, &before, &after, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		if position.Valid {
			e.Position = int(position.Int64)
		}
		if before.Valid {
			e.Before = before.String
		}
		if after.Valid {
			e.After = after.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read operations: %w", err)
	}

	return entries, nil
}

// CountOperations returns how many operations the journal holds.
func (s *Store) CountOperations() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM operations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count operations: %w", err)
	}
	return count, nil
}
