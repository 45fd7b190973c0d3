package bank

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/meridianhr/assess-engine/internal/profile"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleItems() []profile.Item {
	return []profile.Item{
		{
			ID:      "q1",
			Primary: profile.DimDrive,
			Type:    profile.ItemScaled,
			ScaleContributions: map[string]profile.ContributionTable{
				"5": {profile.DimDrive: 90},
			},
			Difficulty: 0.4,
			Tiers:      []profile.Tier{profile.TierQuick, profile.TierStandard},
		},
		{
			ID:      "q2",
			Primary: profile.DimJudgment,
			Type:    profile.ItemScenario,
			Options: []profile.ItemOption{
				{Key: "a", Contributions: profile.ContributionTable{profile.DimJudgment: 80}},
			},
			Difficulty: 0.7,
			Tiers:      []profile.Tier{profile.TierDeep},
		},
	}
}

func TestPutAndListItems(t *testing.T) {
	s := tempStore(t)
	if err := s.PutItems(sampleItems()); err != nil {
		t.Fatalf("PutItems: %v", err)
	}

	items, err := s.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "q1" || items[0].ScaleContributions["5"][profile.DimDrive] != 90 {
		t.Errorf("item round-trip lost data: %+v", items[0])
	}
	if items[1].Options[0].Key != "a" {
		t.Errorf("option round-trip lost data: %+v", items[1])
	}
}

func TestPutItemsUpsert(t *testing.T) {
	s := tempStore(t)
	items := sampleItems()
	if err := s.PutItems(items); err != nil {
		t.Fatalf("PutItems: %v", err)
	}

	items[0].Difficulty = 0.9
	if err := s.PutItems(items[:1]); err != nil {
		t.Fatalf("PutItems upsert: %v", err)
	}

	got, err := s.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("upsert duplicated a row: %d items", len(got))
	}
	if got[0].Difficulty != 0.9 {
		t.Errorf("difficulty = %v after upsert", got[0].Difficulty)
	}
}

func TestArchetypeRoundTrip(t *testing.T) {
	s := tempStore(t)
	low := 30.0
	in := []profile.ArchetypeProfile{
		{
			ID:      "operator",
			Targets: map[profile.Dimension]float64{profile.DimDrive: 80, profile.DimIntegrity: 85},
			RedFlags: map[profile.Dimension]profile.RedFlagRange{
				profile.DimIntegrity: {Below: &low},
			},
		},
	}
	if err := s.PutArchetypes(in); err != nil {
		t.Fatalf("PutArchetypes: %v", err)
	}

	out, err := s.Archetypes()
	if err != nil {
		t.Fatalf("Archetypes: %v", err)
	}
	if len(out) != 1 || out[0].ID != "operator" {
		t.Fatalf("archetypes = %+v", out)
	}
	if out[0].RedFlags[profile.DimIntegrity].Below == nil || *out[0].RedFlags[profile.DimIntegrity].Below != 30 {
		t.Errorf("red flag lost in round trip: %+v", out[0].RedFlags)
	}
}

func TestNormPointsOrdered(t *testing.T) {
	s := tempStore(t)
	points := []NormPoint{
		{Dimension: profile.DimDrive, RawScore: 80, Percentile: 90},
		{Dimension: profile.DimDrive, RawScore: 50, Percentile: 50},
		{Dimension: profile.DimDrive, RawScore: 20, Percentile: 10},
	}
	if err := s.PutNormPoints(points); err != nil {
		t.Fatalf("PutNormPoints: %v", err)
	}

	got, err := s.NormPoints()
	if err != nil {
		t.Fatalf("NormPoints: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].RawScore < got[i-1].RawScore {
			t.Fatalf("points not ordered by raw score: %+v", got)
		}
	}
}

func TestResponsesAppendOnlyOrdered(t *testing.T) {
	s := tempStore(t)

	recs := []profile.ResponseRecord{
		{ItemID: "q1", Answer: profile.ScaledAnswer(4), LatencyMS: 3200},
		{ItemID: "q2", Answer: profile.OptionAnswer("a"), LatencyMS: 7800},
	}
	types := []profile.ItemType{profile.ItemScaled, profile.ItemScenario}
	for i, rec := range recs {
		if err := s.AppendResponse("resp-1", types[i], rec); err != nil {
			t.Fatalf("AppendResponse: %v", err)
		}
	}
	// A second respondent's history must not leak in.
	if err := s.AppendResponse("resp-2", profile.ItemScaled, profile.ResponseRecord{
		ItemID: "q1", Answer: profile.ScaledAnswer(1), LatencyMS: 900,
	}); err != nil {
		t.Fatalf("AppendResponse: %v", err)
	}

	got, err := s.Responses("resp-1")
	if err != nil {
		t.Fatalf("Responses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(got))
	}
	if got[0].ItemID != "q1" || got[1].ItemID != "q2" {
		t.Errorf("order lost: %+v", got)
	}
	if _, ok := got[0].Answer.(profile.ScaledAnswer); !ok {
		t.Errorf("scaled answer type lost: %T", got[0].Answer)
	}
	if got[1].Answer.Key() != "a" {
		t.Errorf("option answer = %q", got[1].Answer.Key())
	}
}

func TestCatalogueCachesUntilTTL(t *testing.T) {
	s := tempStore(t)
	if err := s.PutItems(sampleItems()); err != nil {
		t.Fatalf("PutItems: %v", err)
	}

	now := time.Unix(1000, 0)
	c := NewCatalogue(s, time.Minute)
	c.now = func() time.Time { return now }

	items, err := c.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	// A write inside the TTL window is not visible yet.
	extra := sampleItems()[0]
	extra.ID = "q3"
	if err := s.PutItems([]profile.Item{extra}); err != nil {
		t.Fatalf("PutItems: %v", err)
	}
	now = now.Add(30 * time.Second)
	items, _ = c.Items()
	if len(items) != 2 {
		t.Fatalf("cache refreshed early: %d items", len(items))
	}

	// Past the TTL the read falls through to the store.
	now = now.Add(time.Minute)
	items, _ = c.Items()
	if len(items) != 3 {
		t.Fatalf("cache did not refresh after TTL: %d items", len(items))
	}
}

func TestCatalogueInvalidate(t *testing.T) {
	s := tempStore(t)
	if err := s.PutItems(sampleItems()); err != nil {
		t.Fatalf("PutItems: %v", err)
	}

	c := NewCatalogue(s, time.Hour)
	if _, err := c.Items(); err != nil {
		t.Fatalf("Items: %v", err)
	}

	extra := sampleItems()[0]
	extra.ID = "q3"
	if err := s.PutItems([]profile.Item{extra}); err != nil {
		t.Fatalf("PutItems: %v", err)
	}
	c.Invalidate()

	items, err := c.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Invalidate did not force a reload: %d items", len(items))
	}

	tiered, err := c.EligibleItems(profile.TierDeep)
	if err != nil {
		t.Fatalf("EligibleItems: %v", err)
	}
	if len(tiered) != 1 || tiered[0].ID != "q2" {
		t.Errorf("tier filter = %+v", tiered)
	}
}
