package sim

import "testing"

func testUniverse(scores map[string]float64) []scoredEntity {
	// Fixed insertion order so ties resolve the same way every call.
	ids := []string{"a", "b", "c", "d", "e"}
	var out []scoredEntity
	for i, id := range ids {
		sc, ok := scores[id]
		if !ok {
			continue
		}
		out = append(out, scoredEntity{id: id, score: sc, bornIdx: i, ord: i})
	}
	return out
}

func TestRankChartHistoryCarriesFromPrev(t *testing.T) {
	date := GameDate{Week: 1, Year: 2024}
	prev := rankChart(ChartHot, date, ChartSnapshot{}, testUniverse(map[string]float64{
		"a": 30, "b": 20, "c": 10,
	}), 10)

	for i, e := range prev.Entries {
		if e.Rank != i+1 {
			t.Fatalf("ranks not contiguous: entry %d has rank %d", i, e.Rank)
		}
		if !e.IsNewEntry() {
			t.Fatalf("first week entry %s should be new", e.ID)
		}
		if e.Peak != e.Rank {
			t.Fatalf("debut peak = %d, want %d", e.Peak, e.Rank)
		}
	}

	// c overtakes everyone the next week.
	next := rankChart(ChartHot, date.Next(), prev, testUniverse(map[string]float64{
		"a": 30, "b": 20, "c": 50,
	}), 10)

	c := next.Entries[0]
	if c.ID != "c" || c.Rank != 1 {
		t.Fatalf("expected c at rank 1, got %s at %d", c.ID, c.Rank)
	}
	if c.LastWeek == nil || *c.LastWeek != 3 {
		t.Fatalf("c.LastWeek = %v, want 3", c.LastWeek)
	}
	if c.Peak != 1 || c.WeeksOn != 2 {
		t.Fatalf("c peak/weeks = %d/%d, want 1/2", c.Peak, c.WeeksOn)
	}

	a := next.Entries[1]
	if a.ID != "a" || a.Peak != 1 {
		t.Fatalf("a should keep peak 1 after falling, got %s peak %d", a.ID, a.Peak)
	}
}

func TestRankChartDropOutForgetsHistory(t *testing.T) {
	date := GameDate{Week: 1, Year: 2024}
	week1 := rankChart(ChartHot, date, ChartSnapshot{}, testUniverse(map[string]float64{
		"a": 30, "b": 20,
	}), 2)

	// a falls off a size-2 chart, then returns.
	week2 := rankChart(ChartHot, date.AddWeeks(1), week1, testUniverse(map[string]float64{
		"a": 5, "b": 20, "c": 40,
	}), 2)
	for _, e := range week2.Entries {
		if e.ID == "a" {
			t.Fatal("a should have dropped off the chart")
		}
	}

	week3 := rankChart(ChartHot, date.AddWeeks(2), week2, testUniverse(map[string]float64{
		"a": 90, "b": 20,
	}), 2)
	a := week3.Entries[0]
	if a.ID != "a" {
		t.Fatalf("expected a back at rank 1, got %s", a.ID)
	}
	if !a.IsNewEntry() {
		t.Fatalf("re-entry must have fresh history, got LastWeek=%v WeeksOn=%d", a.LastWeek, a.WeeksOn)
	}
	if a.Peak != 1 {
		t.Fatalf("re-entry peak = %d, want its current rank", a.Peak)
	}
}

func TestRankChartTieBreakFavorsNewerThenInsertion(t *testing.T) {
	date := GameDate{Week: 1, Year: 2024}
	universe := []scoredEntity{
		{id: "old", score: 10, bornIdx: 1, ord: 0},
		{id: "new", score: 10, bornIdx: 9, ord: 1},
		{id: "twin1", score: 5, bornIdx: 4, ord: 2},
		{id: "twin2", score: 5, bornIdx: 4, ord: 3},
	}
	snap := rankChart(ChartHot, date, ChartSnapshot{}, universe, 10)

	if snap.Entries[0].ID != "new" || snap.Entries[1].ID != "old" {
		t.Fatalf("score tie should go to newer release, got %s then %s", snap.Entries[0].ID, snap.Entries[1].ID)
	}
	if snap.Entries[2].ID != "twin1" || snap.Entries[3].ID != "twin2" {
		t.Fatalf("full tie should keep insertion order, got %s then %s", snap.Entries[2].ID, snap.Entries[3].ID)
	}
}

func TestChartInvariantsHoldAcrossTicks(t *testing.T) {
	s := NewState("save-1", "Tester", 42, DefaultBalance())
	song, err := s.RecordSong("Neon Nights", "pop")
	if err != nil {
		t.Fatalf("record song: %v", err)
	}
	song.Released = true
	song.ReleasedOn = s.Date

	for week := 0; week < 8; week++ {
		s.AdvanceWeek()
		for kind, snap := range s.Charts {
			for i, e := range snap.Entries {
				if e.Rank != i+1 {
					t.Fatalf("%s week %d: ranks not contiguous at index %d", kind, week, i)
				}
				if e.Peak > e.Rank {
					t.Fatalf("%s week %d: peak %d worse than rank %d for %s", kind, week, e.Peak, e.Rank, e.ID)
				}
				if (e.LastWeek == nil) != (e.WeeksOn == 1) {
					t.Fatalf("%s week %d: LastWeek/WeeksOn out of sync for %s: %v/%d",
						kind, week, e.ID, e.LastWeek, e.WeeksOn)
				}
			}
		}
	}
}
