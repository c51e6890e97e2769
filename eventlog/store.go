// Package eventlog persists compositor notifications (gestures, actions and
// view changes) to a SQLite database so sessions can be inspected after the
// server has stopped.
package eventlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/gesture"
	"github.com/ruapotato/Flick-sub004/shell"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    kind        TEXT NOT NULL,
    seq         INTEGER NOT NULL,
    time_ns     INTEGER NOT NULL,
    gesture     TEXT,
    edge        TEXT,
    x           REAL,
    y           REAL,
    progress    REAL,
    velocity    REAL,
    completed   INTEGER,
    is_long     INTEGER,
    distance    REAL,
    fingers     INTEGER,
    action      TEXT,
    view        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_time ON events(time_ns);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind, time_ns);
`

// Entry is one stored notification. Event is nil for action and view entries.
type Entry struct {
	ID     int64                       `json:"id"`
	Kind   compositor.NotificationKind `json:"kind"`
	Seq    uint64                      `json:"seq"`
	Time   time.Time                   `json:"time"`
	Event  *gesture.Event              `json:"event,omitempty"`
	Action gesture.Action              `json:"action,omitempty"`
	View   shell.View                  `json:"view"`
}

// FromNotification converts a notification to an entry. Frame and output
// notifications are not logged.
func FromNotification(n compositor.Notification) (Entry, bool) {
	switch n.Kind {
	case compositor.KindGesture, compositor.KindAction, compositor.KindView:
	default:
		return Entry{}, false
	}

	e := Entry{
		Kind:   n.Kind,
		Seq:    n.Seq,
		Time:   n.Time,
		Action: n.Action,
		View:   n.State.View,
	}
	if n.Event != nil {
		ev := *n.Event
		e.Event = &ev
	}
	return e, true
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Insert stores entries in one transaction
func (s *Store) Insert(entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO events (kind, seq, time_ns, gesture, edge, x, y, progress, velocity, completed, is_long, distance, fingers, action, view)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		var (
			typ, edge                          sql.NullString
			x, y, progress, velocity, distance sql.NullFloat64
			completed, isLong, fingers         sql.NullInt64
		)
		if ev := e.Event; ev != nil {
			typ = sql.NullString{String: ev.Type.String(), Valid: true}
			edge = sql.NullString{String: ev.Edge.String(), Valid: true}
			x = sql.NullFloat64{Float64: ev.Position.X, Valid: true}
			y = sql.NullFloat64{Float64: ev.Position.Y, Valid: true}
			progress = sql.NullFloat64{Float64: ev.Progress, Valid: true}
			velocity = sql.NullFloat64{Float64: ev.Velocity, Valid: true}
			distance = sql.NullFloat64{Float64: ev.Distance, Valid: true}
			completed = sql.NullInt64{Int64: int64(boolInt(ev.Completed)), Valid: true}
			isLong = sql.NullInt64{Int64: int64(boolInt(ev.IsLong)), Valid: true}
			fingers = sql.NullInt64{Int64: int64(ev.Fingers), Valid: true}
		}

		var action sql.NullString
		if e.Action != gesture.ActionNone {
			action = sql.NullString{String: e.Action.String(), Valid: true}
		}

		if _, err := stmt.Exec(string(e.Kind), int64(e.Seq), e.Time.UnixNano(),
			typ, edge, x, y, progress, velocity, completed, isLong, distance, fingers,
			action, e.View.String()); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Query selects stored entries
type Query struct {
	// Kind restricts the result to one notification kind when set
	Kind compositor.NotificationKind
	// Since skips entries older than this time when set
	Since time.Time
	// Limit caps the result, newest entries win. Zero means no limit.
	Limit int
}

// Recent returns matching entries, newest first
func (s *Store) Recent(q Query) ([]Entry, error) {
	sqlText := `
		SELECT id, kind, seq, time_ns, gesture, edge, x, y, progress, velocity, completed, is_long, distance, fingers, action, view
		FROM events WHERE 1 = 1`
	var args []interface{}

	if q.Kind != "" {
		sqlText += " AND kind = ?"
		args = append(args, string(q.Kind))
	}
	if !q.Since.IsZero() {
		sqlText += " AND time_ns >= ?"
		args = append(args, q.Since.UnixNano())
	}
	sqlText += " ORDER BY id DESC"
	if q.Limit > 0 {
		sqlText += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.Query(sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e                                  Entry
		kind, view                         string
		seq, timeNs                        int64
		typ, edge, action                  sql.NullString
		x, y, progress, velocity, distance sql.NullFloat64
		completed, isLong, fingers         sql.NullInt64
	)

	if err := rows.Scan(&e.ID, &kind, &seq, &timeNs, &typ, &edge, &x, &y, &progress, &velocity,
		&completed, &isLong, &distance, &fingers, &action, &view); err != nil {
		return Entry{}, fmt.Errorf("scan event: %w", err)
	}

	e.Kind = compositor.NotificationKind(kind)
	e.Seq = uint64(seq)
	e.Time = time.Unix(0, timeNs)

	v, err := shell.ParseView(view)
	if err != nil {
		return Entry{}, fmt.Errorf("event %d: %w", e.ID, err)
	}
	e.View = v

	if action.Valid {
		a, err := gesture.ParseAction(action.String)
		if err != nil {
			return Entry{}, fmt.Errorf("event %d: %w", e.ID, err)
		}
		e.Action = a
	}

	if typ.Valid {
		t, err := gesture.ParseType(typ.String)
		if err != nil {
			return Entry{}, fmt.Errorf("event %d: %w", e.ID, err)
		}
		ed, err := gesture.ParseEdge(edge.String)
		if err != nil {
			return Entry{}, fmt.Errorf("event %d: %w", e.ID, err)
		}
		e.Event = &gesture.Event{
			Type:      t,
			Position:  gesture.Point{X: x.Float64, Y: y.Float64},
			Edge:      ed,
			Progress:  progress.Float64,
			Velocity:  velocity.Float64,
			Completed: completed.Int64 != 0,
			IsLong:    isLong.Int64 != 0,
			Distance:  distance.Float64,
			Fingers:   int(fingers.Int64),
		}
	}

	return e, nil
}

// Count returns the number of stored entries
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Prune deletes entries older than before and returns how many were removed
func (s *Store) Prune(before time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM events WHERE time_ns < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
