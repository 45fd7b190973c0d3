package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/meridianhr/assess-engine/internal/bank"
	"github.com/meridianhr/assess-engine/internal/config"
	"github.com/meridianhr/assess-engine/internal/fusion"
	"github.com/meridianhr/assess-engine/internal/profile"
	"github.com/meridianhr/assess-engine/internal/provlog"
	"github.com/meridianhr/assess-engine/internal/validity"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to assess.db")
	session := flag.String("session", "", "show one session's selection log")
	respondent := flag.String("respondent", "", "show a respondent's fused profile")
	last := flag.Int("last", 20, "show N most recent sessions")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/assess.db [--session id | --respondent id] [--last N] [--json]")
		os.Exit(2)
	}

	store, err := bank.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *session != "":
		err = runSessionMode(store, *session, *jsonOut)
	case *respondent != "":
		err = runRespondentMode(store, *respondent, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type sessionRow struct {
	SessionID string `json:"session_id"`
	Rounds    int    `json:"rounds"`
	Items     int    `json:"items"`
	LastPhase string `json:"last_phase"`
	StartedAt string `json:"started_at"`
}

func runListMode(store *bank.Store, last int, jsonOut bool) error {
	rows, err := store.DB().Query(
		`SELECT session_id, COUNT(*) AS rounds,
		        SUM(LENGTH(item_ids) - LENGTH(REPLACE(item_ids, ',', '')) + 1) AS items,
		        MAX(phase), MIN(created_at)
		 FROM selection_log GROUP BY session_id ORDER BY MIN(created_at) DESC LIMIT ?`, last,
	)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []sessionRow
	for rows.Next() {
		var r sessionRow
		if err := rows.Scan(&r.SessionID, &r.Rounds, &r.Items, &r.LastPhase, &r.StartedAt); err != nil {
			return fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	if jsonOut {
		return printJSON(sessions)
	}
	fmt.Printf("%-38s  %6s  %5s  %-14s  %s\n", "Session", "Rounds", "Items", "Last Phase", "Started")
	for _, r := range sessions {
		fmt.Printf("%-38s  %6d  %5d  %-14s  %s\n", r.SessionID, r.Rounds, r.Items, r.LastPhase, r.StartedAt)
	}
	return nil
}

// #endregion list-mode

// #region session-mode

func runSessionMode(store *bank.Store, sessionID string, jsonOut bool) error {
	entries, err := provlog.History(store.DB(), sessionID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("session %s not found", sessionID)
	}

	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("Session %s: %d round(s)\n\n", sessionID, len(entries))
	fmt.Printf("%-6s  %-14s  %-10s  %-8s  %s\n", "Round", "Phase", "Source", "Validity", "Items")
	for _, e := range entries {
		reliability := e.Reliability
		if reliability == "" {
			reliability = "—"
		}
		fmt.Printf("%-6d  %-14s  %-10s  %-8s  %v\n", e.Round, e.Phase, e.Source, reliability, e.ItemIDs)
		if e.Rationale != "" {
			fmt.Printf("        rationale: %s\n", e.Rationale)
		}
	}
	return nil
}

// #endregion session-mode

// #region respondent-mode

type respondentOutput struct {
	RespondentID string                            `json:"respondent_id"`
	Responses    int                               `json:"responses"`
	Skipped      []string                          `json:"skipped,omitempty"`
	Profile      map[profile.Dimension]beliefView  `json:"profile"`
	Validity     validity.Signals                  `json:"validity"`
}

type beliefView struct {
	Score         float64 `json:"score"`
	Confidence    float64 `json:"confidence"`
	Uncertainty   float64 `json:"uncertainty"`
	EvidenceCount int     `json:"evidence_count"`
	Tier          string  `json:"confidence_tier"`
}

// runRespondentMode refolds a respondent's stored history against the
// current bank so the profile reflects what the engine would compute
// today.
func runRespondentMode(store *bank.Store, respondentID string, jsonOut bool) error {
	items, err := store.Items()
	if err != nil {
		return err
	}
	byID := make(map[string]profile.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	history, err := store.Responses(respondentID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no responses recorded for respondent %s", respondentID)
	}

	scores, skipped := fusion.Fold(byID, history, fusion.Initialize())
	signals := validity.Analyze(history, byID, config.Default().Validity)

	out := respondentOutput{
		RespondentID: respondentID,
		Responses:    len(history),
		Skipped:      skipped,
		Profile:      make(map[profile.Dimension]beliefView, len(scores)),
		Validity:     signals,
	}
	for dim, belief := range scores {
		out.Profile[dim] = beliefView{
			Score:         belief.Score,
			Confidence:    belief.Confidence,
			Uncertainty:   belief.Uncertainty,
			EvidenceCount: belief.EvidenceCount,
			Tier:          fusion.ConfidenceTier(belief.Uncertainty),
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Respondent %s: %d response(s)\n\n", respondentID, len(history))
	for _, dim := range profile.Dimensions() {
		v := out.Profile[dim]
		fmt.Printf("  %-13s %5.1f  confidence %.2f (%s), evidence %d\n",
			dim, v.Score, v.Confidence, v.Tier, v.EvidenceCount)
	}
	fmt.Printf("\nReliability: %s\n", signals.Reliability)
	for _, id := range skipped {
		fmt.Printf("  skipped response for unknown item %s\n", id)
	}
	return nil
}

// #endregion respondent-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
