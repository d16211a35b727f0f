package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session outcomes.
const (
	OutcomeRunning = "running"
	OutcomeStopped = "stopped"
	OutcomeFailed  = "failed"
)

// SessionRecord is one entry of the session log. No gesture history is kept.
type SessionRecord struct {
	ID        string     `json:"id"`
	Mode      string     `json:"mode"`
	Deck      string     `json:"deck,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	Outcome   string     `json:"outcome"`
	Error     string     `json:"error,omitempty"`
	Frames    int64      `json:"frames"`
}

// SessionRepository records session lifecycles.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session log repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Begin inserts a running session.
func (r *SessionRepository) Begin(rec *SessionRecord) error {
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	rec.Outcome = OutcomeRunning
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, mode, deck, started_at, outcome) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Mode, rec.Deck, rec.StartedAt, rec.Outcome,
	)
	return err
}

// End marks a session finished with outcome, an optional error and the number
// of frames processed.
func (r *SessionRepository) End(id, outcome string, cause error, frames int64) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res, err := r.db.Exec(
		`UPDATE sessions SET stopped_at = ?, outcome = ?, error = ?, frames = ? WHERE id = ?`,
		time.Now(), outcome, msg, frames, id,
	)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// Get retrieves a session by its ID.
func (r *SessionRepository) Get(id string) (*SessionRecord, error) {
	rec, err := scanSession(r.db.QueryRow(
		`SELECT id, mode, deck, started_at, stopped_at, outcome, error, frames FROM sessions WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// List returns up to limit sessions, newest first. limit <= 0 means 50.
func (r *SessionRepository) List(limit int) ([]*SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT id, mode, deck, started_at, stopped_at, outcome, error, frames
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*SessionRecord{}
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CloseDangling marks sessions left running by a crashed process as failed.
func (r *SessionRepository) CloseDangling() (int64, error) {
	res, err := r.db.Exec(
		`UPDATE sessions SET outcome = ?, error = 'process exited', stopped_at = ? WHERE outcome = ?`,
		OutcomeFailed, time.Now(), OutcomeRunning,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (*SessionRecord, error) {
	rec := &SessionRecord{}
	var stopped sql.NullTime
	if err := s.Scan(&rec.ID, &rec.Mode, &rec.Deck, &rec.StartedAt, &stopped, &rec.Outcome, &rec.Error, &rec.Frames); err != nil {
		return nil, err
	}
	if stopped.Valid {
		t := stopped.Time
		rec.StoppedAt = &t
	}
	return rec, nil
}
