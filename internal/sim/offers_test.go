package sim

import (
	"encoding/json"
	"errors"
	"testing"
)

func offerFixture(t *testing.T) (*State, *GeniusInterview) {
	t.Helper()
	s := NewState("save-1", "Tester", 42, DefaultBalance())
	song, err := s.RecordSong("Static", "rap")
	if err != nil {
		t.Fatalf("record song: %v", err)
	}
	o := &GeniusInterview{OfferMeta: s.newOfferMeta(), SongID: song.ID}
	s.addOffer(o, "Genius", "Break it down", "Line by line.")
	return s, o
}

func TestAcceptOfferIdempotent(t *testing.T) {
	s, o := offerFixture(t)

	if err := s.AcceptOffer(o.ID); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if !o.Accepted {
		t.Fatal("offer not marked accepted")
	}
	videos := len(s.Videos)

	// Second accept: no error, no duplicate side effects.
	if err := s.AcceptOffer(o.ID); err != nil {
		t.Fatalf("repeat accept: %v", err)
	}
	if len(s.Videos) != videos {
		t.Fatalf("repeat accept created %d new videos", len(s.Videos)-videos)
	}
}

func TestDeclineThenAcceptIsNoOp(t *testing.T) {
	s, o := offerFixture(t)

	if err := s.DeclineOffer(o.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if err := s.AcceptOffer(o.ID); err != nil {
		t.Fatalf("accept after decline should be a no-op, got %v", err)
	}
	if o.Accepted {
		t.Fatal("declined offer flipped to accepted")
	}
	if len(s.Videos) != 0 {
		t.Fatal("declined offer produced side effects")
	}
}

func TestOfferExpiry(t *testing.T) {
	s, o := offerFixture(t)

	for i := 0; i < s.Balance.OfferTTLWeeks+1; i++ {
		s.AdvanceWeek()
	}
	if !o.Expired {
		t.Fatalf("offer should expire after %d weeks", s.Balance.OfferTTLWeeks)
	}
	if err := s.AcceptOffer(o.ID); err != nil {
		t.Fatalf("accept on expired offer should no-op, got %v", err)
	}
	if o.Accepted {
		t.Fatal("expired offer flipped to accepted")
	}
}

func TestAnswerQuestion(t *testing.T) {
	s := NewState("save-1", "Tester", 42, DefaultBalance())
	q := &PopBaseQuestion{OfferMeta: s.newOfferMeta(), Question: "what inspired it?"}
	s.addOffer(q, "PopBase", "Quote request", q.Question)

	if err := s.AnswerQuestion(q.ID, "   "); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}
	if q.Answered {
		t.Fatal("blank answer resolved the question")
	}

	if err := s.AnswerQuestion(q.ID, "a long winter"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if q.Answer != "a long winter" || !q.Answered {
		t.Fatalf("answer not recorded: %q answered=%v", q.Answer, q.Answered)
	}
	if len(s.Posts) != 1 || s.Posts[0].Kind != "popbase_quote" {
		t.Fatalf("expected one popbase_quote post, got %+v", s.Posts)
	}

	// Answering again is a no-op and does not overwrite.
	if err := s.AnswerQuestion(q.ID, "something else"); err != nil {
		t.Fatalf("repeat answer: %v", err)
	}
	if q.Answer != "a long winter" {
		t.Fatalf("repeat answer overwrote quote: %q", q.Answer)
	}
}

func TestAcceptWrongKind(t *testing.T) {
	s := NewState("save-1", "Tester", 42, DefaultBalance())
	q := &PopBaseQuestion{OfferMeta: s.newOfferMeta(), Question: "?"}
	s.addOffer(q, "PopBase", "Quote request", q.Question)

	if err := s.AcceptOffer(q.ID); !errors.Is(err, ErrWrongOfferKind) {
		t.Fatalf("expected ErrWrongOfferKind, got %v", err)
	}
	if err := s.AcceptOffer("offer-999"); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
}

func TestOfferSetRoundTripKeepsConcreteTypes(t *testing.T) {
	s := NewState("save-1", "Tester", 42, DefaultBalance())
	fallon := &FallonOffer{
		OfferMeta:  s.newOfferMeta(),
		SongID:     "song-000001",
		Accepted:   true,
		TapingDate: GameDate{Week: 9, Year: 2024},
	}
	s.Offers[fallon.ID] = fallon

	data, err := json.Marshal(s.Offers)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got OfferSet
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	back, ok := got[fallon.ID].(*FallonOffer)
	if !ok {
		t.Fatalf("decoded offer has type %T, want *FallonOffer", got[fallon.ID])
	}
	if back.SongID != fallon.SongID || !back.Accepted || !back.TapingDate.Equal(fallon.TapingDate) {
		t.Fatalf("round trip lost fields: %+v", back)
	}
}
