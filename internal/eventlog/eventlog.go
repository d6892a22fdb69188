// Package eventlog appends durable progress events to the event_log
// table. Session state itself lives in the session store; the log is an
// audit trail for reporting and debugging learner progress.
package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types.
const (
	TypeLessonComplete = "lesson_complete"
	TypeVideoComplete  = "video_complete"
	TypeQuizAnalyzed   = "quiz_analyzed"
	TypeRemedialServed = "remedial_served"
	TypeSessionCleared = "session_cleared"
	TypeOverrideSet    = "override_set"
)

type Event struct {
	Seq       int64           `json:"seq"`
	SessionID string          `json:"session_id"`
	Type      string          `json:"type"`
	Subject   string          `json:"subject"`
	Subtopic  string          `json:"subtopic"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

// Repo appends and reads events. A nil *Repo is a no-op recorder so the
// handlers can run without a database.
type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo {
	if db == nil {
		return nil
	}
	return &Repo{db: db}
}

// Append writes one event. Nil receivers and marshal-safe payloads make
// this safe to call unconditionally from handlers.
func (r *Repo) Append(ctx context.Context, sessionID, typ, subject, subtopic string, data any) error {
	if r == nil {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("{}")
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (session_id, typ, subject, subtopic, data, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		sessionID, typ, subject, subtopic, string(payload), time.Now().Unix())
	return err
}

// Since returns up to limit events for a session after seq, oldest
// first.
func (r *Repo) Since(ctx context.Context, sessionID string, seq int64, limit int) ([]Event, error) {
	if r == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, session_id, typ, subject, subtopic, data, created_at
		 FROM event_log
		 WHERE session_id = $1 AND seq > $2
		 ORDER BY seq ASC
		 LIMIT $3`,
		sessionID, seq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var data string
		if err := rows.Scan(&e.Seq, &e.SessionID, &e.Type, &e.Subject, &e.Subtopic, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Data = json.RawMessage(data)
		events = append(events, e)
	}
	return events, rows.Err()
}
