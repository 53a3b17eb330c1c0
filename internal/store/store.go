// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists research sessions in SQLite. Session state is
// written as a whole at stage boundaries; evidence claims additionally feed
// an FTS5 index so past sessions stay searchable.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintel/evidence-engine/pkg/types"
)

const dbFile = "sessions.db"

// Store manages the session SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the session database at cfg.Dir/sessions.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			status TEXT NOT NULL,
			stage TEXT NOT NULL,
			round INTEGER NOT NULL,
			state TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS evidence (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			session_id TEXT NOT NULL REFERENCES sessions(id),
			claim TEXT NOT NULL,
			category TEXT NOT NULL,
			verdict TEXT NOT NULL,
			reason TEXT,
			UNIQUE(session_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evidence_session ON evidence(session_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='evidence_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE evidence_fts USING fts5(claim, content=evidence, content_rowid=rowid)`,
			`CREATE TRIGGER evidence_ai AFTER INSERT ON evidence BEGIN
				INSERT INTO evidence_fts(rowid, claim) VALUES (new.rowid, new.claim);
			END`,
			`CREATE TRIGGER evidence_ad AFTER DELETE ON evidence BEGIN
				INSERT INTO evidence_fts(evidence_fts, rowid, claim) VALUES('delete', old.rowid, old.claim);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// Save upserts the full session state. The evidence rows for the session
// are rewritten so the FTS index tracks the latest validation verdicts.
func (s *Store) Save(ctx context.Context, session *types.ResearchSession) error {
	state, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, topic, status, stage, round, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			topic=excluded.topic, status=excluded.status, stage=excluded.stage,
			round=excluded.round, state=excluded.state, updated_at=excluded.updated_at`,
		session.ID, session.Intent.Topic, string(session.Status), string(session.Stage),
		session.Round, string(state),
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
		session.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM evidence WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("clearing old evidence: %w", err)
	}

	verdicts := make(map[string]types.ValidationResult, len(session.Validations))
	for _, v := range session.Validations {
		verdicts[v.EvidenceID] = v
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO evidence (id, session_id, claim, category, verdict, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range session.Evidence {
		v := verdicts[e.ID]
		if _, err := stmt.ExecContext(ctx, e.ID, session.ID, e.Claim, e.Category,
			string(v.Verdict), v.Reason); err != nil {
			return fmt.Errorf("inserting evidence %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// Load returns the full session state by ID.
func (s *Store) Load(ctx context.Context, id string) (*types.ResearchSession, error) {
	var state string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM sessions WHERE id = ?`, id).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	var session types.ResearchSession
	if err := json.Unmarshal([]byte(state), &session); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &session, nil
}

// SessionSummary is one row of the session list.
type SessionSummary struct {
	ID        string
	Topic     string
	Status    types.SessionStatus
	Stage     types.Stage
	Round     int
	UpdatedAt time.Time
}

// List returns session summaries, most recently updated first.
func (s *Store) List(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic, status, stage, round, updated_at FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var status, stage, updated string
		if err := rows.Scan(&sum.ID, &sum.Topic, &status, &stage, &sum.Round, &updated); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sum.Status = types.SessionStatus(status)
		sum.Stage = types.Stage(stage)
		if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			sum.UpdatedAt = t
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// EvidenceMatch is one FTS hit across stored sessions.
type EvidenceMatch struct {
	SessionID  string
	EvidenceID string
	Claim      string
	Category   string
	Verdict    types.Verdict
	Reason     string
}

// SearchEvidence runs an FTS5 match over stored evidence claims.
func (s *Store) SearchEvidence(ctx context.Context, query string, limit int) ([]EvidenceMatch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.session_id, e.id, e.claim, e.category, e.verdict, e.reason
		 FROM evidence_fts f
		 JOIN evidence e ON e.rowid = f.rowid
		 WHERE evidence_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching evidence: %w", err)
	}
	defer rows.Close()

	var out []EvidenceMatch
	for rows.Next() {
		var m EvidenceMatch
		var verdict string
		var reason sql.NullString
		if err := rows.Scan(&m.SessionID, &m.EvidenceID, &m.Claim, &m.Category, &verdict, &reason); err != nil {
			return nil, fmt.Errorf("scanning evidence row: %w", err)
		}
		m.Verdict = types.Verdict(verdict)
		m.Reason = reason.String
		out = append(out, m)
	}
	return out, rows.Err()
}
