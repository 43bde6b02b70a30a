package sim

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
)

// State is the entire core of one save-game: catalog, scheduler queue,
// budget ledgers, chart histories, offer records and the clock. It is one
// serializable snapshot; restoring it and replaying zero ticks reproduces
// byte-identical chart histories.
//
// Nothing here is safe for concurrent mutation; Session serializes access.
type State struct {
	SaveID string `json:"save_id"`
	Artist string `json:"artist"`
	Seed   int64  `json:"seed"`
	Tick   int64  `json:"tick"`

	Date    GameDate `json:"date"`
	Balance Balance  `json:"balance"`

	Catalog Catalog `json:"catalog"`

	Submissions     map[string]*Submission `json:"submissions"`
	SubmissionOrder []string               `json:"submission_order"`

	Offers     OfferSet `json:"offers"`
	OfferOrder []string `json:"offer_order"`

	Inbox []*Email `json:"inbox"`

	Schedule    []ScheduledEvent `json:"schedule"`
	ScheduleSeq int64            `json:"schedule_seq"`

	Charts map[ChartKind]ChartSnapshot `json:"charts"`

	Ceremonies        map[string]*Ceremony `json:"ceremonies"`
	CeremonyOrder     []string             `json:"ceremony_order"`
	BestNewArtistUsed bool                 `json:"best_new_artist_used"`

	NPCSongs  []NPCSong  `json:"npc_songs"`
	NPCAlbums []NPCAlbum `json:"npc_albums"`

	Boosts []Boost `json:"boosts"`

	Videos []Video `json:"videos"`
	Posts  []Post  `json:"posts"`

	Tours     map[string]*Tour `json:"tours"`
	TourOrder []string         `json:"tour_order"`

	// Career flags: one-shot offer triggers already fired, keyed
	// "<kind>:<entity id>".
	Fired map[string]bool `json:"fired"`

	IDCounter int64 `json:"id_counter"`

	// emitted collects the emails created by the command in flight; cleared
	// by Session before each command. Not part of the snapshot.
	emitted []*Email
}

func NewState(saveID, artist string, seed int64, bal Balance) *State {
	s := &State{
		SaveID:      saveID,
		Artist:      artist,
		Seed:        seed,
		Date:        GameDate{Week: bal.StartWeek, Year: bal.StartYear},
		Balance:     bal,
		Catalog:     NewCatalog(),
		Submissions: make(map[string]*Submission),
		Offers:      make(OfferSet),
		Charts:      make(map[ChartKind]ChartSnapshot),
		Ceremonies:  make(map[string]*Ceremony),
		Tours:       make(map[string]*Tour),
		Fired:       make(map[string]bool),
	}
	s.NPCSongs, s.NPCAlbums = generateNPCs(bal, seed, s.Date.Index())
	return s
}

// nextID is a deterministic id mint. Identical command sequences must yield
// byte-identical snapshots, so entity ids cannot come from a random source.
func (s *State) nextID(prefix string) string {
	s.IDCounter++
	return fmt.Sprintf("%s-%06d", prefix, s.IDCounter)
}

// tickRNG derives an independent deterministic stream per tick and purpose.
// The seed never advances with wall clock, only with simulated time.
func (s *State) tickRNG(tickIdx int, purpose string) *rand.Rand {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%d|%s", s.Seed, tickIdx, purpose)
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func (s *State) emitEmail(offerID string, kind OfferKind, from, subject, body string) *Email {
	e := &Email{
		ID:      s.nextID("email"),
		OfferID: offerID,
		Kind:    kind,
		Date:    s.Date,
		From:    from,
		Subject: subject,
		Body:    body,
	}
	s.Inbox = append(s.Inbox, e)
	s.emitted = append(s.emitted, e)
	return e
}

func (s *State) newOfferMeta() OfferMeta {
	return OfferMeta{
		ID:      s.nextID("offer"),
		Offered: s.Date,
		Expires: s.Date.AddWeeks(s.Balance.OfferTTLWeeks),
	}
}

func (s *State) addOffer(o Offer, from, subject, body string) {
	meta := o.Meta()
	s.Offers[meta.ID] = o
	s.OfferOrder = append(s.OfferOrder, meta.ID)
	s.emitEmail(meta.ID, o.Kind(), from, subject, body)
}

func (s *State) offer(id string) (Offer, error) {
	o, ok := s.Offers[id]
	if !ok {
		return nil, ErrOfferNotFound
	}
	return o, nil
}

// AdvanceWeek is the sole unit of simulated time. The pipeline order is part
// of the contract: scheduled work lands before charts re-rank, charts settle
// before anything reads standings, offers and awards read the settled week.
func (s *State) AdvanceWeek() {
	s.Tick++
	s.Date = s.Date.Next()
	tickIdx := s.Date.Index()

	s.applyDueEvents()
	s.expireOffers()
	s.recomputeCharts(tickIdx)
	s.accrueStreams()
	s.tickTours()
	s.generateOffers(tickIdx)
	s.tickAwards(tickIdx)
	s.decayBoosts()
}

func (s *State) expireOffers() {
	for _, id := range s.OfferOrder {
		o := s.Offers[id]
		meta := o.Meta()
		if o.Resolved() || meta.Expires.IsZero() {
			continue
		}
		if meta.Expires.Before(s.Date) {
			meta.Expired = true
		}
	}
}

func (s *State) decayBoosts() {
	kept := s.Boosts[:0]
	for _, b := range s.Boosts {
		b.WeeksLeft--
		if b.WeeksLeft > 0 {
			kept = append(kept, b)
		}
	}
	s.Boosts = kept
}

// generateOffers fires pipeline entry points off the settled chart week.
// Each trigger is one-shot per entity, tracked in Fired.
func (s *State) generateOffers(tickIdx int) {
	rng := s.tickRNG(tickIdx, "offers")
	hot := s.Charts[ChartHot]

	playerCharting := false
	for _, e := range hot.Entries {
		if !e.Player {
			continue
		}
		playerCharting = true
		song, ok := s.Catalog.Songs[e.ID]
		if !ok {
			continue
		}

		if e.Rank <= 40 && s.fireOnce("genius:"+song.ID) {
			o := &GeniusInterview{OfferMeta: s.newOfferMeta(), SongID: song.ID}
			s.addOffer(o, "Genius", "Verified: break down "+song.Title,
				"Fans want the lyrics explained, line by line.")
		}
		if e.Rank <= 10 && s.fireOnce("fallon:"+song.ID) {
			o := &FallonOffer{OfferMeta: s.newOfferMeta(), SongID: song.ID}
			s.addOffer(o, "Late Night", "Play "+song.Title+" on the show",
				"One song, full band, next month's taping block.")
		}
		if e.Rank <= 25 && (song.Genre == GenreRap || song.Genre == GenreEDM) && s.fireOnce("trshd:"+song.ID) {
			o := &Trshd{OfferMeta: s.newOfferMeta(), SongID: song.ID}
			s.addOffer(o, "TRSH'D", "Pull up for a TRSH'D set",
				"Live performance, one take, no edits.")
		}
		if e.Rank <= 30 && song.Quality >= 70 && s.fireOnce("soundtrack:"+song.ID) {
			o := &SoundtrackOffer{OfferMeta: s.newOfferMeta(), SongID: song.ID,
				FilmTitle: npcTitle(rng)}
			s.addOffer(o, "Studio Music Dept", "Sync request for "+song.Title,
				"A feature film wants the record over its closing credits.")
		}
		if e.Rank == 1 && s.fireOnce(fmt.Sprintf("popbase:%s:%d", song.ID, s.Date.Year)) {
			o := &PopBaseQuestion{OfferMeta: s.newOfferMeta(),
				Question: "The internet wants to know: what inspired " + song.Title + "?"}
			s.addOffer(o, "PopBase", "Quote request", o.Question)
		}
	}

	if playerCharting && s.fireOnce("ontheradar:career") {
		first := ""
		for _, e := range hot.Entries {
			if e.Player {
				first = e.ID
				break
			}
		}
		o := &OnTheRadar{OfferMeta: s.newOfferMeta(), SongID: first}
		s.addOffer(o, "On The Radar", "Come freestyle on the show",
			"Every breakout act does the booth eventually.")
	}

	for _, e := range s.Charts[ChartAlbums].Entries {
		if e.Player && e.Rank <= 10 && s.fireOnce(fmt.Sprintf("vogue:%d", s.Date.Year)) {
			o := &VogueCover{OfferMeta: s.newOfferMeta()}
			s.addOffer(o, "Vogue", "September issue cover",
				"The shoot is in three weeks. Bring the whole era.")
		}
	}

	// Label interest in a finished, unreleased project.
	for _, rel := range s.Catalog.releasesInOrder() {
		if rel.Released || rel.Kind == ReleaseSingle {
			continue
		}
		if s.hasSubmissionFor(rel.ID) || !s.fireOnce("label:"+rel.ID) {
			continue
		}
		o := &LabelInterest{OfferMeta: s.newOfferMeta(), ReleaseID: rel.ID,
			Budget: s.Balance.LabelPromoBudget}
		s.addOffer(o, "A&R", "We want "+rel.Title,
			"Full promotional budget behind the rollout if you sign it over.")
	}

	if playerCharting && rng.Float64() < 0.04 && s.fireOnce(fmt.Sprintf("onlyfans:%d", tickIdx)) {
		o := &OnlyFansRequest{OfferMeta: s.newOfferMeta()}
		s.addOffer(o, "OnlyFans Partnerships", "Exclusive content deal",
			"Your audience will pay for the unfiltered version.")
	}
	if playerCharting && rng.Float64() < 0.06 && s.fireOnce(fmt.Sprintf("feature:%d", tickIdx)) {
		o := &FeatureRequest{OfferMeta: s.newOfferMeta(),
			FromArtist: npcName(rng), Genre: genres[rng.Intn(len(genres))]}
		s.addOffer(o, o.FromArtist, "Feature verse?",
			"Sixteen bars, split the master, drop next quarter.")
	}
}

func (s *State) fireOnce(key string) bool {
	if s.Fired[key] {
		return false
	}
	s.Fired[key] = true
	return true
}

func (s *State) hasSubmissionFor(releaseID string) bool {
	for _, id := range s.SubmissionOrder {
		if s.Submissions[id].ReleaseID == releaseID {
			return true
		}
	}
	return false
}

// Snapshot serializes the whole state. encoding/json writes map keys in
// sorted order, so equal states produce equal bytes.
func (s *State) Snapshot() ([]byte, error) {
	return json.Marshal(s)
}

func Restore(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	return &s, nil
}
