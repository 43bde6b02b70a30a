package sim

import (
	"fmt"
	"testing"
)

func awardSeasonFixture(t *testing.T) (*State, *Song, *Release) {
	t.Helper()
	s := NewState("save-1", "Tester", 42, DefaultBalance())
	song, err := s.RecordSong("Anthem", "pop")
	if err != nil {
		t.Fatalf("record song: %v", err)
	}
	rel, err := s.AssembleRelease("Anthem", ReleaseEP, []string{song.ID})
	if err != nil {
		t.Fatalf("assemble release: %v", err)
	}
	song.Released, song.ReleasedOn = true, s.Date
	rel.Released, rel.ReleasedOn = true, s.Date
	return s, song, rel
}

func pendingAwardInvite(t *testing.T, s *State) *AwardInvite {
	t.Helper()
	for _, v := range s.PendingOffers() {
		if o, ok := v.Offer.(*AwardInvite); ok {
			return o
		}
	}
	t.Fatal("no pending award invite")
	return nil
}

func pendingRedCarpet(t *testing.T, s *State) *RedCarpetInvite {
	t.Helper()
	for _, v := range s.PendingOffers() {
		if o, ok := v.Offer.(*RedCarpetInvite); ok {
			return o
		}
	}
	t.Fatal("no pending red carpet invite")
	return nil
}

func TestAwardCalendarOpensAndNominates(t *testing.T) {
	s, song, _ := awardSeasonFixture(t)
	year := s.Date.Year

	s.Date = GameDate{Week: s.Balance.GrammySubmissionWeek - 1, Year: year}
	s.AdvanceWeek()

	c := s.ceremony(AwardGrammy, year)
	if c == nil {
		t.Fatal("submission week did not open a ceremony")
	}
	if c.Stage != StageEligible {
		t.Fatalf("stage = %s, want %s", c.Stage, StageEligible)
	}
	invite := pendingAwardInvite(t, s)
	if invite.Award != AwardGrammy || invite.Year != year {
		t.Fatalf("invite for %s %d, want grammy %d", invite.Award, invite.Year, year)
	}

	err := s.SubmitAward(AwardGrammy, []SubmittedEntry{
		{Category: CatRecordOfTheYear, ItemID: song.ID},
		{Category: CatPopPerformance, ItemID: song.ID},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if c.Stage != StageSubmitted {
		t.Fatalf("stage = %s, want %s", c.Stage, StageSubmitted)
	}
	if !invite.Resolved() {
		t.Fatal("submission did not resolve the invite")
	}

	s.Date = GameDate{Week: s.Balance.GrammyNominationWeek - 1, Year: year}
	s.AdvanceWeek()

	if c.Stage == StageSubmitted {
		t.Fatal("nomination week left the ceremony in submitted")
	}
	entered := make(map[AwardCategory]bool, len(c.Entries))
	for _, e := range c.Entries {
		entered[e.Category] = true
	}
	for _, n := range c.Nominations {
		if !entered[n.Category] {
			t.Fatalf("nomination %s was never entered", n.Category)
		}
	}
	switch c.Stage {
	case StageRedCarpetOffered:
		if len(c.Nominations) == 0 {
			t.Fatal("red carpet offered without nominations")
		}
		pendingRedCarpet(t, s)
	case StageResolved:
		if len(c.Nominations) != 0 {
			t.Fatal("resolved at nomination week despite nominations")
		}
	default:
		t.Fatalf("unexpected stage after nomination week: %s", c.Stage)
	}
}

func TestCeremonyResolutionCreatesRecords(t *testing.T) {
	s, song, _ := awardSeasonFixture(t)
	year := s.Date.Year

	c := s.ensureCeremony(AwardGrammy, year)
	c.Entries = []SubmittedEntry{{Category: CatRecordOfTheYear, ItemID: song.ID}}
	c.Nominations = c.Entries
	c.Stage = StageAttending

	s.Date = GameDate{Week: s.Balance.GrammyCeremonyWeek - 1, Year: year + 1}
	s.AdvanceWeek()

	if c.Stage != StageResolved {
		t.Fatalf("stage = %s, want %s", c.Stage, StageResolved)
	}
	if len(c.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(c.Records))
	}
	rec := c.Records[0]
	if rec.Year != year || rec.Category != CatRecordOfTheYear || rec.ItemID != song.ID {
		t.Fatalf("record mismatch: %+v", rec)
	}
	if rec.ItemName != song.Title {
		t.Fatalf("record item name = %q, want %q", rec.ItemName, song.Title)
	}
	wantSubject := fmt.Sprintf("%s %d results", awardDisplay(AwardGrammy), year+1)
	found := false
	for _, e := range s.Inbox {
		if e.Subject == wantSubject {
			found = true
		}
	}
	if !found {
		t.Fatal("results email missing from inbox")
	}

	// The ceremony never resolves twice.
	s.AdvanceWeek()
	if len(c.Records) != 1 {
		t.Fatalf("records grew to %d after a second week", len(c.Records))
	}
}

func TestPerformanceInviteLeadsToRedCarpet(t *testing.T) {
	s, song, _ := awardSeasonFixture(t)
	song.InSoundtrack = true
	year := s.Date.Year

	c := s.ensureCeremony(AwardOscar, year)
	c.Entries = []SubmittedEntry{{Category: CatOriginalSong, ItemID: song.ID}}
	c.Nominations = c.Entries
	c.Stage = StagePerformanceOffered

	perf := &PerformanceInvite{OfferMeta: s.newOfferMeta(), Award: AwardOscar, Year: year, SongID: song.ID}
	s.addOffer(perf, awardDisplay(AwardOscar), "Perform at the ceremony?", "")

	if err := s.AcceptOffer(perf.ID); err != nil {
		t.Fatalf("accept performance: %v", err)
	}
	if c.Performance != song.ID {
		t.Fatalf("performance song = %q, want %q", c.Performance, song.ID)
	}
	if c.Stage != StageRedCarpetOffered {
		t.Fatalf("stage = %s, want %s", c.Stage, StageRedCarpetOffered)
	}

	carpet := pendingRedCarpet(t, s)
	if err := s.AcceptOffer(carpet.ID); err != nil {
		t.Fatalf("accept red carpet: %v", err)
	}
	if c.Stage != StageAttending {
		t.Fatalf("stage = %s, want %s", c.Stage, StageAttending)
	}
	queued := false
	for _, ev := range s.Schedule {
		if ev.Kind == ScheduleRedCarpet {
			want := GameDate{Week: s.Balance.OscarCeremonyWeek, Year: year + 1}
			if !ev.Date.Equal(want) {
				t.Fatalf("red carpet scheduled %v, want %v", ev.Date, want)
			}
			queued = true
		}
	}
	if !queued {
		t.Fatal("red carpet event never queued")
	}
}
