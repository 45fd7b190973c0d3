package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/meridianhr/assess-engine/internal/bank"
	"github.com/meridianhr/assess-engine/internal/config"
	"github.com/meridianhr/assess-engine/internal/norms"
	"github.com/meridianhr/assess-engine/internal/profile"
	"github.com/meridianhr/assess-engine/internal/reasoning"
	"github.com/meridianhr/assess-engine/internal/selector"
	"github.com/meridianhr/assess-engine/internal/session"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	respondentID := envOr("ASSESS_RESPONDENT", "local")
	tier := profile.Tier(envOr("ASSESS_TIER", string(profile.TierStandard)))

	store, err := bank.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	catalogue := bank.NewCatalogue(store, cfg.CatalogueTTL)

	// Without an API key every adaptive round takes the deterministic
	// fallback path.
	var planner *reasoning.Planner
	if cfg.AnthropicAPIKey != "" {
		gen := reasoning.NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.ReasoningModel)
		planner = reasoning.NewPlanner(gen, cfg.Selection.ReasoningTimeout)
	} else {
		log.Println("No API key set; adaptive rounds use the deterministic fallback")
	}
	sel := selector.New(planner, cfg.Selection.BatchSize)

	var normTable *norms.Table
	if points, err := store.NormPoints(); err == nil && len(points) > 0 {
		normTable = norms.NewTable(points)
	}

	sess, err := session.New(respondentID, tier, cfg, store, catalogue, sel, normTable)
	if err != nil {
		log.Fatalf("failed to start session: %v", err)
	}

	fmt.Println("Assessment session ready.")
	fmt.Printf("  DB: %s | Respondent: %s | Tier: %s\n", cfg.DBPath, respondentID, tier)
	fmt.Println("Answer scaled items 1-5, others by option key. 'quit' ends the session.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		dec, ok, err := sess.Next(context.Background())
		if err != nil {
			log.Fatalf("selection error: %v", err)
		}
		if !ok {
			break
		}

		byID, err := catalogue.ItemsByID()
		if err != nil {
			log.Fatalf("item lookup: %v", err)
		}

		var responses []profile.ResponseRecord
		quit := false
		for _, id := range dec.ItemIDs {
			it := byID[id]
			printItem(it)
			fmt.Print("> ")
			start := time.Now()
			if !scanner.Scan() {
				quit = true
				break
			}
			raw := strings.TrimSpace(scanner.Text())
			if raw == "quit" || raw == "exit" {
				quit = true
				break
			}
			responses = append(responses, profile.ResponseRecord{
				ItemID:    id,
				Answer:    profile.ResolveAnswer(it.Type, raw),
				LatencyMS: time.Since(start).Milliseconds(),
			})
		}

		if len(responses) > 0 {
			if err := sess.Record(responses); err != nil {
				log.Fatalf("record error: %v", err)
			}
		}
		if quit {
			break
		}
	}

	report, err := sess.Finish()
	if err != nil {
		log.Fatalf("finish error: %v", err)
	}
	printReport(report)
}

// #endregion main

// #region output

func printItem(it profile.Item) {
	fmt.Printf("\n[%s] (%s, %s)\n", it.ID, it.Primary, it.Type)
	for _, opt := range it.Options {
		text := opt.Text
		if text == "" {
			text = "(option)"
		}
		fmt.Printf("  %s: %s\n", opt.Key, text)
	}
}

func printReport(report session.Report) {
	fmt.Printf("\n=== Report for %s ===\n", report.RespondentID)
	for _, dim := range profile.Dimensions() {
		belief := report.Profile[dim]
		line := fmt.Sprintf("%-13s %5.1f  (confidence %.2f, evidence %d)",
			dim, belief.Score, belief.Confidence, belief.EvidenceCount)
		if pct, ok := report.Percentiles[dim]; ok {
			line += fmt.Sprintf("  p%.0f", pct)
		}
		fmt.Println(line)
	}
	fmt.Printf("\nReliability: %s\n", report.Validity.Reliability)
	fmt.Printf("Archetype:   %s", report.Match.PrimaryID)
	if report.Match.NeedsTiebreak {
		fmt.Printf(" (close second: %s)", report.Match.SecondaryID)
	}
	fmt.Println()

	data, err := json.MarshalIndent(report.Validity, "", "  ")
	if err == nil {
		fmt.Printf("\nValidity signals:\n%s\n", data)
	}
}

// #endregion output

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
