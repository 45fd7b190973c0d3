package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/meridianhr/assess-engine/internal/bank"
	"github.com/meridianhr/assess-engine/internal/profile"
	_ "modernc.org/sqlite"
)

// #region bank-file

// bankFile is the administrator-authored JSON catalogue.
type bankFile struct {
	Items      []profile.Item             `json:"items"`
	Archetypes []profile.ArchetypeProfile `json:"archetypes"`
	Norms      []normEntry                `json:"norms,omitempty"`
}

type normEntry struct {
	Dimension  profile.Dimension `json:"dimension"`
	RawScore   float64           `json:"raw_score"`
	Percentile float64           `json:"percentile"`
}

// #endregion bank-file

// #region main

func main() {
	dbPath := flag.String("db", "assess.db", "path to assess.db")
	bankPath := flag.String("bank", "", "path to bank JSON file")
	flag.Parse()

	if *bankPath == "" {
		fmt.Fprintln(os.Stderr, "usage: bankload --bank path/to/bank.json [--db path/to/assess.db]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*bankPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read bank file: %v\n", err)
		os.Exit(1)
	}
	var file bankFile
	if err := json.Unmarshal(data, &file); err != nil {
		fmt.Fprintf(os.Stderr, "parse bank file: %v\n", err)
		os.Exit(1)
	}
	if err := validate(file); err != nil {
		fmt.Fprintf(os.Stderr, "invalid bank file: %v\n", err)
		os.Exit(1)
	}

	store, err := bank.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.PutItems(file.Items); err != nil {
		fmt.Fprintf(os.Stderr, "load items: %v\n", err)
		os.Exit(1)
	}
	if err := store.PutArchetypes(file.Archetypes); err != nil {
		fmt.Fprintf(os.Stderr, "load archetypes: %v\n", err)
		os.Exit(1)
	}
	if len(file.Norms) > 0 {
		points := make([]bank.NormPoint, len(file.Norms))
		for i, n := range file.Norms {
			points[i] = bank.NormPoint{Dimension: n.Dimension, RawScore: n.RawScore, Percentile: n.Percentile}
		}
		if err := store.PutNormPoints(points); err != nil {
			fmt.Fprintf(os.Stderr, "load norms: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Loaded %d item(s), %d archetype(s), %d norm point(s) into %s\n",
		len(file.Items), len(file.Archetypes), len(file.Norms), *dbPath)
}

// #endregion main

// #region validation

// validate rejects banks the engine cannot administer. These are
// authoring errors, caught at load rather than mid-assessment.
func validate(file bankFile) error {
	known := make(map[profile.Dimension]bool)
	for _, dim := range profile.Dimensions() {
		known[dim] = true
	}

	seen := make(map[string]bool, len(file.Items))
	for _, it := range file.Items {
		if it.ID == "" {
			return fmt.Errorf("item with empty id")
		}
		if seen[it.ID] {
			return fmt.Errorf("duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
		if !known[it.Primary] {
			return fmt.Errorf("item %s: unknown dimension %q", it.ID, it.Primary)
		}
		if it.Difficulty < 0 || it.Difficulty > 1 {
			return fmt.Errorf("item %s: difficulty %v outside [0,1]", it.ID, it.Difficulty)
		}
		if len(it.Tiers) == 0 {
			return fmt.Errorf("item %s: no tier eligibility", it.ID)
		}
		switch it.Type {
		case profile.ItemScaled:
			if len(it.ScaleContributions) == 0 {
				return fmt.Errorf("item %s: scaled item without contribution tables", it.ID)
			}
		case profile.ItemScenario, profile.ItemForcedChoice:
			if len(it.Options) == 0 {
				return fmt.Errorf("item %s: option item without options", it.ID)
			}
		default:
			return fmt.Errorf("item %s: unknown type %q", it.ID, it.Type)
		}
	}

	for _, a := range file.Archetypes {
		if a.ID == "" {
			return fmt.Errorf("archetype with empty id")
		}
		for dim := range a.Targets {
			if !known[dim] {
				return fmt.Errorf("archetype %s: unknown dimension %q", a.ID, dim)
			}
		}
	}
	return nil
}

// #endregion validation
