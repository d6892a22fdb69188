package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLSessions hands out per-session Store handles backed by the
// session_kv table. Works against both supported drivers; the upsert
// uses ON CONFLICT, which sqlite and postgres share.
type SQLSessions struct {
	db *sql.DB
}

func NewSQLSessions(db *sql.DB) *SQLSessions {
	return &SQLSessions{db: db}
}

// Session returns the Store handle for one session id.
func (s *SQLSessions) Session(sessionID string) Store {
	return &sqlStore{db: s.db, sessionID: sessionID}
}

type sqlStore struct {
	db        *sql.DB
	sessionID string
}

func (s *sqlStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_kv WHERE session_id = $1 AND key = $2`,
		s.sessionID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("session get %q: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_kv (session_id, key, value, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, key)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		s.sessionID, key, string(value), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("session set %q: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Pop(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_kv WHERE session_id = $1 AND key = $2`,
		s.sessionID, key)
	if err != nil {
		return fmt.Errorf("session pop %q: %w", key, err)
	}
	return nil
}

// Keys filters on the Go side so the underscores in scoped keys stay
// literal; a LIKE pattern would treat them as single-char wildcards.
func (s *sqlStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM session_kv WHERE session_id = $1`,
		s.sessionID)
	if err != nil {
		return nil, fmt.Errorf("session keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, rows.Err()
}
