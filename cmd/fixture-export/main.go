package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/meridianhr/assess-engine/internal/bank"
	"github.com/meridianhr/assess-engine/internal/config"
	"github.com/meridianhr/assess-engine/internal/profile"
	"github.com/meridianhr/assess-engine/internal/replay"
	"github.com/meridianhr/assess-engine/internal/validity"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to assess.db")
	respondent := flag.String("respondent", "", "respondent whose history to export")
	tier := flag.String("tier", string(profile.TierStandard), "tier recorded in the fixture")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *respondent == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/assess.db --respondent id --out path/to/fixture.json [--tier standard]")
		os.Exit(2)
	}

	if err := run(*dbPath, *respondent, profile.Tier(*tier), *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

// run snapshots the bank alongside one respondent's history and records
// the replayed outcome as the fixture's expectations, so the exported
// file fails loudly if a later engine change shifts behavior.
func run(dbPath, respondent string, tier profile.Tier, outPath string) error {
	store, err := bank.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	items, err := store.Items()
	if err != nil {
		return err
	}
	archetypes, err := store.Archetypes()
	if err != nil {
		return err
	}
	history, err := store.Responses(respondent)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no responses recorded for respondent %s", respondent)
	}

	f := &replay.Fixture{
		Description: fmt.Sprintf("exported history of %s", respondent),
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

	// Pin the current outcome as the expectation.
	rounds, summary := replay.Replay(f, config.Default())
	f.Expected = replay.FixtureExpected{
		Rounds:           len(rounds),
		PrimaryArchetype: summary.Match.PrimaryID,
	}
	if summary.Validity.Reliability != validity.Verdict("") {
		f.Expected.Reliability = string(summary.Validity.Reliability)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}

	fmt.Printf("Exported %d response(s) over %d round(s) to %s\n", len(f.Responses), len(rounds), outPath)
	return nil
}

// #endregion export
