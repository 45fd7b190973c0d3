package bank

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/meridianhr/assess-engine/internal/profile"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS items (
	item_id       TEXT PRIMARY KEY,
	item_type     TEXT NOT NULL,
	payload_json  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS archetypes (
	archetype_id  TEXT PRIMARY KEY,
	payload_json  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS norm_points (
	dimension     TEXT NOT NULL,
	raw_score     REAL NOT NULL,
	percentile    REAL NOT NULL,
	PRIMARY KEY (dimension, raw_score)
);

CREATE TABLE IF NOT EXISTS responses (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	respondent_id  TEXT NOT NULL,
	item_id        TEXT NOT NULL,
	item_type      TEXT NOT NULL,
	answer         TEXT NOT NULL,
	latency_ms     INTEGER NOT NULL,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_responses_respondent
	ON responses(respondent_id, id);

CREATE TABLE IF NOT EXISTS selection_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id     TEXT NOT NULL,
	round          INTEGER NOT NULL,
	phase          TEXT NOT NULL,
	decision_id    TEXT NOT NULL,
	item_ids       TEXT NOT NULL,
	source         TEXT NOT NULL,
	rationale      TEXT,
	reliability    TEXT,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_selection_log_session
	ON selection_log(session_id, round);
`
// #endregion schema

// #region store-struct
// Store holds the item bank, archetype catalogue, normative tables, and
// the append-only response history in SQLite. Items and archetypes are
// read-only from the engine's perspective; responses are append-only.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. the
// selection log).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region items
// PutItems replaces-or-inserts bank items in one transaction.
func (s *Store) PutItems(items []profile.Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, it := range items {
		payload, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("marshal item %s: %w", it.ID, err)
		}
		_, err = tx.Exec(
			`INSERT INTO items (item_id, item_type, payload_json) VALUES (?, ?, ?)
			 ON CONFLICT(item_id) DO UPDATE SET item_type = excluded.item_type, payload_json = excluded.payload_json`,
			it.ID, string(it.Type), string(payload),
		)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// Items returns the full item bank.
func (s *Store) Items() ([]profile.Item, error) {
	rows, err := s.db.Query(`SELECT payload_json FROM items ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []profile.Item
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		var it profile.Item
		if err := json.Unmarshal([]byte(payload), &it); err != nil {
			return nil, fmt.Errorf("unmarshal item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
// #endregion items

// #region archetypes
// PutArchetypes replaces-or-inserts archetype profiles in one transaction.
func (s *Store) PutArchetypes(archetypes []profile.ArchetypeProfile) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, a := range archetypes {
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal archetype %s: %w", a.ID, err)
		}
		_, err = tx.Exec(
			`INSERT INTO archetypes (archetype_id, payload_json) VALUES (?, ?)
			 ON CONFLICT(archetype_id) DO UPDATE SET payload_json = excluded.payload_json`,
			a.ID, string(payload),
		)
		if err != nil {
			return fmt.Errorf("insert archetype %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// Archetypes returns the full archetype catalogue.
func (s *Store) Archetypes() ([]profile.ArchetypeProfile, error) {
	rows, err := s.db.Query(`SELECT payload_json FROM archetypes ORDER BY archetype_id`)
	if err != nil {
		return nil, fmt.Errorf("list archetypes: %w", err)
	}
	defer rows.Close()

	var out []profile.ArchetypeProfile
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan archetype: %w", err)
		}
		var a profile.ArchetypeProfile
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("unmarshal archetype: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
// #endregion archetypes

// #region norms
// NormPoint is one calibration point of a dimension's normative curve.
type NormPoint struct {
	Dimension  profile.Dimension
	RawScore   float64
	Percentile float64
}

// PutNormPoints replaces-or-inserts normative calibration points.
func (s *Store) PutNormPoints(points []NormPoint) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range points {
		_, err = tx.Exec(
			`INSERT INTO norm_points (dimension, raw_score, percentile) VALUES (?, ?, ?)
			 ON CONFLICT(dimension, raw_score) DO UPDATE SET percentile = excluded.percentile`,
			string(p.Dimension), p.RawScore, p.Percentile,
		)
		if err != nil {
			return fmt.Errorf("insert norm point: %w", err)
		}
	}
	return tx.Commit()
}

// NormPoints returns all calibration points ordered by dimension and
// ascending raw score.
func (s *Store) NormPoints() ([]NormPoint, error) {
	rows, err := s.db.Query(
		`SELECT dimension, raw_score, percentile FROM norm_points ORDER BY dimension, raw_score`,
	)
	if err != nil {
		return nil, fmt.Errorf("list norm points: %w", err)
	}
	defer rows.Close()

	var out []NormPoint
	for rows.Next() {
		var p NormPoint
		var dim string
		if err := rows.Scan(&dim, &p.RawScore, &p.Percentile); err != nil {
			return nil, fmt.Errorf("scan norm point: %w", err)
		}
		p.Dimension = profile.Dimension(dim)
		out = append(out, p)
	}
	return out, rows.Err()
}
// #endregion norms

// #region responses
// AppendResponse records one answer for a respondent. History is
// append-only: nothing ever updates or deletes a row.
func (s *Store) AppendResponse(respondentID string, itemType profile.ItemType, rec profile.ResponseRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO responses (respondent_id, item_id, item_type, answer, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		respondentID, rec.ItemID, string(itemType), rec.Answer.Key(), rec.LatencyMS,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append response: %w", err)
	}
	return nil
}

// Responses returns one respondent's full ordered history.
func (s *Store) Responses(respondentID string) ([]profile.ResponseRecord, error) {
	rows, err := s.db.Query(
		`SELECT item_id, item_type, answer, latency_ms FROM responses
		 WHERE respondent_id = ? ORDER BY id`, respondentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var out []profile.ResponseRecord
	for rows.Next() {
		var rec profile.ResponseRecord
		var itemType, answer string
		if err := rows.Scan(&rec.ItemID, &itemType, &answer, &rec.LatencyMS); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		rec.Answer = profile.ResolveAnswer(profile.ItemType(itemType), answer)
		out = append(out, rec)
	}
	return out, rows.Err()
}
// #endregion responses
