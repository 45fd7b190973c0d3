package provlog

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE selection_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id  TEXT NOT NULL,
		round       INTEGER NOT NULL,
		phase       TEXT NOT NULL,
		decision_id TEXT NOT NULL,
		item_ids    TEXT NOT NULL,
		source      TEXT NOT NULL,
		rationale   TEXT,
		reliability TEXT,
		created_at  TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// #endregion helpers

// #region log-selection-tests
func TestLogSelection_Success(t *testing.T) {
	db := setupDB(t)

	entry := Entry{
		SessionID:   "sess-1",
		Round:       2,
		Phase:       "ADAPTIVE_ROUND",
		DecisionID:  "dec-1",
		ItemIDs:     []string{"q4", "q7", "q9"},
		Source:      "reasoning",
		Rationale:   "probe judgment uncertainty",
		Reliability: "high",
		CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogSelection(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM selection_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var itemIDs, source string
	db.QueryRow("SELECT item_ids, source FROM selection_log").Scan(&itemIDs, &source)
	if itemIDs != "q4,q7,q9" {
		t.Errorf("item_ids = %q", itemIDs)
	}
	if source != "reasoning" {
		t.Errorf("source = %q", source)
	}
}

func TestLogSelection_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)

	before := time.Now().UTC()
	err := LogSelection(db, Entry{
		SessionID: "sess-2", Round: 1, Phase: "SEEDING",
		DecisionID: "dec-2", ItemIDs: []string{"q1"}, Source: "seed",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM selection_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogSelection_EmptyOptionalFields(t *testing.T) {
	db := setupDB(t)

	err := LogSelection(db, Entry{
		SessionID: "sess-3", Round: 1, Phase: "SEEDING",
		DecisionID: "dec-3", ItemIDs: []string{"q1", "q2"}, Source: "seed",
		CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rationale, reliability sql.NullString
	db.QueryRow("SELECT rationale, reliability FROM selection_log").Scan(&rationale, &reliability)
	if rationale.Valid {
		t.Error("expected NULL rationale for empty string")
	}
	if reliability.Valid {
		t.Error("expected NULL reliability for empty string")
	}
}

func TestHistory_RoundOrder(t *testing.T) {
	db := setupDB(t)

	for _, e := range []Entry{
		{SessionID: "sess-4", Round: 3, Phase: "ADAPTIVE_ROUND", DecisionID: "d3", ItemIDs: []string{"q9"}, Source: "fallback"},
		{SessionID: "sess-4", Round: 1, Phase: "SEEDING", DecisionID: "d1", ItemIDs: []string{"q1", "q2"}, Source: "seed"},
		{SessionID: "sess-4", Round: 2, Phase: "ADAPTIVE_ROUND", DecisionID: "d2", ItemIDs: []string{"q5"}, Source: "reasoning"},
		{SessionID: "other", Round: 1, Phase: "SEEDING", DecisionID: "dx", ItemIDs: []string{"q1"}, Source: "seed"},
	} {
		if err := LogSelection(db, e); err != nil {
			t.Fatalf("LogSelection: %v", err)
		}
	}

	entries, err := History(db, "sess-4")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"d1", "d2", "d3"} {
		if entries[i].DecisionID != want {
			t.Errorf("entry %d = %q, want %q", i, entries[i].DecisionID, want)
		}
	}
	if len(entries[0].ItemIDs) != 2 || entries[0].ItemIDs[1] != "q2" {
		t.Errorf("item ids round-trip: %v", entries[0].ItemIDs)
	}
}

func TestLogSelection_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	err := LogSelection(db, Entry{
		SessionID: "sess-5", Round: 1, Phase: "SEEDING", DecisionID: "d1", Source: "seed",
	})
	if err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-selection-tests
