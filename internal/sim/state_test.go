package sim

import (
	"bytes"
	"errors"
	"testing"
)

// playCareer runs a fixed command script against a fresh save.
func playCareer(t *testing.T, seed int64, weeks int) *State {
	t.Helper()
	s := NewState("save-1", "Tester", seed, DefaultBalance())

	var songIDs []string
	for _, title := range []string{"Glass House", "Overdrive", "Last Call", "Vandal"} {
		song, err := s.RecordSong(title, "pop")
		if err != nil {
			t.Fatalf("record song: %v", err)
		}
		songIDs = append(songIDs, song.ID)
	}
	rel, err := s.AssembleRelease("Glass House", ReleaseAlbum, songIDs)
	if err != nil {
		t.Fatalf("assemble release: %v", err)
	}
	sub := s.createSubmission(rel.ID, 500_000)
	err = s.PlanRollout(sub.ID, s.Date.AddWeeks(4), []SinglePlan{
		{SongID: songIDs[0], Date: s.Date.AddWeeks(1)},
		{SongID: songIDs[1], Date: s.Date.AddWeeks(3)},
	})
	if err != nil {
		t.Fatalf("plan rollout: %v", err)
	}
	if _, err := s.SpendPromo(sub.ID, PromoCountdown, ""); err != nil {
		t.Fatalf("spend promo: %v", err)
	}
	for i := 0; i < weeks; i++ {
		s.AdvanceWeek()
	}
	return s
}

func TestIdenticalScriptsProduceIdenticalSnapshots(t *testing.T) {
	a := playCareer(t, 42, 30)
	b := playCareer(t, 42, 30)

	snapA, err := a.Snapshot()
	if err != nil {
		t.Fatalf("snapshot a: %v", err)
	}
	snapB, err := b.Snapshot()
	if err != nil {
		t.Fatalf("snapshot b: %v", err)
	}
	if !bytes.Equal(snapA, snapB) {
		t.Fatal("same seed and script produced different snapshots")
	}

	c := playCareer(t, 43, 30)
	snapC, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot c: %v", err)
	}
	if bytes.Equal(snapA, snapC) {
		t.Fatal("different seeds produced identical snapshots")
	}
}

func TestRestoreReplaysIdentically(t *testing.T) {
	s := playCareer(t, 42, 10)
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	again, err := restored.Snapshot()
	if err != nil {
		t.Fatalf("snapshot restored: %v", err)
	}
	if !bytes.Equal(snap, again) {
		t.Fatal("restore does not round-trip byte-identically")
	}

	// Both copies must agree on the future, not just the present.
	for i := 0; i < 5; i++ {
		s.AdvanceWeek()
		restored.AdvanceWeek()
	}
	liveSnap, _ := s.Snapshot()
	restoredSnap, _ := restored.Snapshot()
	if !bytes.Equal(liveSnap, restoredSnap) {
		t.Fatal("restored save diverged from live save after replay")
	}
}

func TestBestNewArtistIsOneShot(t *testing.T) {
	s := NewState("save-1", "Tester", 42, DefaultBalance())
	song, err := s.RecordSong("Debut", "pop")
	if err != nil {
		t.Fatalf("record song: %v", err)
	}
	rel, err := s.AssembleRelease("Debut", ReleaseEP, []string{song.ID})
	if err != nil {
		t.Fatalf("assemble release: %v", err)
	}
	song.Released, song.ReleasedOn = true, s.Date
	rel.Released, rel.ReleasedOn = true, s.Date
	year := s.Date.Year

	s.ensureCeremony(AwardGrammy, year)
	cats := s.EligibleCategories(AwardGrammy, year)
	found := false
	for _, c := range cats {
		if c == CatBestNewArtist {
			found = true
		}
	}
	if !found {
		t.Fatalf("debut year should offer best new artist, got %v", cats)
	}

	err = s.SubmitAward(AwardGrammy, []SubmittedEntry{
		{Category: CatBestNewArtist},
		{Category: CatRecordOfTheYear, ItemID: song.ID},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !s.BestNewArtistUsed {
		t.Fatal("submission did not burn the best-new-artist flag")
	}
	if s.ceremony(AwardGrammy, year).Stage != StageSubmitted {
		t.Fatal("ceremony not advanced to submitted")
	}

	// Same year again: the window is closed.
	err = s.SubmitAward(AwardGrammy, []SubmittedEntry{{Category: CatRecordOfTheYear, ItemID: song.ID}})
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	// Next year the category never comes back, win or lose.
	s.Date = GameDate{Week: s.Balance.GrammySubmissionWeek, Year: year + 1}
	s.ensureCeremony(AwardGrammy, year+1)
	for _, c := range s.EligibleCategories(AwardGrammy, year+1) {
		if c == CatBestNewArtist {
			t.Fatal("best new artist eligible twice")
		}
	}
	err = s.SubmitAward(AwardGrammy, []SubmittedEntry{{Category: CatBestNewArtist}})
	if !errors.Is(err, ErrCategoryIneligible) {
		t.Fatalf("expected ErrCategoryIneligible, got %v", err)
	}
}

func TestDeterministicIDMint(t *testing.T) {
	a := NewState("save-1", "Tester", 42, DefaultBalance())
	b := NewState("save-2", "Other", 99, DefaultBalance())
	for i := 0; i < 3; i++ {
		if got, want := a.nextID("song"), b.nextID("song"); got != want {
			t.Fatalf("id mint depends on more than the counter: %s vs %s", got, want)
		}
	}
}

func TestErrorClassifiers(t *testing.T) {
	if !IsNotFound(ErrSongNotFound) {
		t.Fatal("ErrSongNotFound should classify as not-found")
	}
	if IsValidation(ErrSongNotFound) {
		t.Fatal("ErrSongNotFound should not classify as validation")
	}
	if !IsValidation(ErrDateClash) {
		t.Fatal("ErrDateClash should classify as validation")
	}
	if !IsValidation(ErrBudgetExceeded) {
		t.Fatal("ErrBudgetExceeded should classify as validation")
	}
}
