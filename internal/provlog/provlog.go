package provlog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// #region entry

// Entry is one round's selection decision as recorded for audit. Every
// administered batch gets a row, whichever path chose it, so a reviewer
// can reconstruct why each item was shown.
type Entry struct {
	SessionID   string
	Round       int
	Phase       string
	DecisionID  string
	ItemIDs     []string
	Source      string
	Rationale   string
	Reliability string
	CreatedAt   time.Time
}

// #endregion entry

// #region log-selection

// LogSelection writes a selection entry to the selection_log table.
func LogSelection(db *sql.DB, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO selection_log (session_id, round, phase, decision_id, item_ids, source, rationale, reliability, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.Round,
		entry.Phase,
		entry.DecisionID,
		strings.Join(entry.ItemIDs, ","),
		entry.Source,
		nullIfEmpty(entry.Rationale),
		nullIfEmpty(entry.Reliability),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log selection: %w", err)
	}
	return nil
}

// #endregion log-selection

// #region list

// History returns a session's selection entries in round order.
func History(db *sql.DB, sessionID string) ([]Entry, error) {
	rows, err := db.Query(
		`SELECT session_id, round, phase, decision_id, item_ids, source, rationale, reliability, created_at
		 FROM selection_log WHERE session_id = ? ORDER BY round, id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var itemIDs, createdStr string
		var rationale, reliability sql.NullString
		if err := rows.Scan(&e.SessionID, &e.Round, &e.Phase, &e.DecisionID, &itemIDs, &e.Source, &rationale, &reliability, &createdStr); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		if itemIDs != "" {
			e.ItemIDs = strings.Split(itemIDs, ",")
		}
		if rationale.Valid {
			e.Rationale = rationale.String
		}
		if reliability.Valid {
			e.Reliability = reliability.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion list

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
