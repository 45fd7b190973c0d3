package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/meridianhr/assess-engine/internal/bank"
	"github.com/meridianhr/assess-engine/internal/profile"
	"github.com/meridianhr/assess-engine/internal/replay"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to assess.db (DB mode, with --respondent)")
	respondent := flag.String("respondent", "", "respondent whose history to replay (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	tier := flag.String("tier", string(profile.TierStandard), "tier to replay at (DB mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/assess.db --respondent id [--tier standard]")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *respondent, profile.Tier(*tier))
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	rounds, summary := replay.Replay(f, f.Config.ToConfig())
	return report(f.Description, rounds, summary)
}

// #endregion fixture-mode

// #region db-mode

// runDBMode rebuilds a fixture from one respondent's stored history and
// replays it against the current bank snapshot.
func runDBMode(dbPath, respondent string, tier profile.Tier) int {
	if respondent == "" {
		fmt.Fprintln(os.Stderr, "--respondent is required in DB mode")
		return 2
	}

	store, err := bank.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	f, err := fixtureFromStore(store, respondent, tier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build fixture: %v\n", err)
		return 2
	}
	if len(f.Responses) == 0 {
		fmt.Fprintf(os.Stderr, "no responses recorded for respondent %s\n", respondent)
		return 2
	}

	rounds, summary := replay.Replay(f, f.Config.ToConfig())
	return report(f.Description, rounds, summary)
}

func fixtureFromStore(store *bank.Store, respondent string, tier profile.Tier) (*replay.Fixture, error) {
	items, err := store.Items()
	if err != nil {
		return nil, err
	}
	archetypes, err := store.Archetypes()
	if err != nil {
		return nil, err
	}
	history, err := store.Responses(respondent)
	if err != nil {
		return nil, err
	}

	f := &replay.Fixture{
		Description: fmt.Sprintf("stored history of %s", respondent),
		Tier:        tier,
		Items:       items,
		Archetypes:  archetypes,
	}
	for _, rec := range history {
		f.Responses = append(f.Responses, replay.FixtureResponse{
			ItemID:    rec.ItemID,
			Answer:    rec.Answer.Key(),
			LatencyMS: rec.LatencyMS,
		})
	}
	return f, nil
}

// #endregion db-mode

// #region output

func report(description string, rounds []replay.RoundResult, summary replay.Summary) int {
	if description != "" {
		fmt.Printf("Replay: %s\n\n", description)
	}

	fmt.Printf("%-6s  %-14s  %-10s  %-9s  %s\n", "Round", "Phase", "Source", "Answered", "Items")
	for _, r := range rounds {
		fmt.Printf("%-6d  %-14s  %-10s  %-9d  %v\n", r.Round, r.Phase, r.Source, r.Answered, r.ItemIDs)
	}

	fmt.Printf("\nAnswered %d response(s), %d unmatched.\n", summary.Answered, summary.Unanswered)
	fmt.Println("\nFinal profile:")
	for _, dim := range profile.Dimensions() {
		belief := summary.Profile[dim]
		fmt.Printf("  %-13s %5.1f  (confidence %.2f, evidence %d)\n",
			dim, belief.Score, belief.Confidence, belief.EvidenceCount)
	}
	fmt.Printf("\nReliability: %s\n", summary.Validity.Reliability)
	if summary.Match.PrimaryID != "" {
		fmt.Printf("Archetype:   %s\n", summary.Match.PrimaryID)
	}

	if len(summary.Mismatches) > 0 {
		fmt.Println("\nMISMATCHES:")
		for _, m := range summary.Mismatches {
			fmt.Printf("  - %s\n", m)
		}
		return 1
	}
	return 0
}

// #endregion output
