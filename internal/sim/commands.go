package sim

import (
	"sort"
	"strings"
)

// The command surface below is the single write entry point for one save.
// Every command validates fully before mutating, so a failed command leaves
// the state untouched.

func (s *State) RecordSong(title, genre string) (*Song, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidName
	}
	g, err := ParseGenre(genre)
	if err != nil {
		return nil, err
	}
	rng := s.tickRNG(int(s.IDCounter), "record")
	song := &Song{
		ID:      s.nextID("song"),
		Title:   title,
		Genre:   g,
		Quality: 35 + rng.Intn(61),
	}
	s.Catalog.addSong(song)
	return song, nil
}

func (s *State) AssembleRelease(title string, kind ReleaseKind, songIDs []string) (*Release, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidName
	}
	switch kind {
	case ReleaseSingle, ReleaseEP, ReleaseAlbum:
	default:
		return nil, ErrInvalidName
	}
	if len(songIDs) == 0 {
		return nil, ErrEmptyTracklist
	}
	for _, id := range songIDs {
		song, err := s.Catalog.song(id)
		if err != nil {
			return nil, err
		}
		if song.ReleaseID != "" {
			return nil, ErrSongTaken
		}
	}
	rel := &Release{
		ID:      s.nextID("release"),
		Title:   title,
		Kind:    kind,
		SongIDs: append([]string(nil), songIDs...),
	}
	s.Catalog.addRelease(rel)
	for _, id := range songIDs {
		s.Catalog.Songs[id].ReleaseID = rel.ID
	}
	return rel, nil
}

type SinglePlan struct {
	SongID string   `json:"song_id"`
	Date   GameDate `json:"date"`
}

// PlanRollout schedules the singles and the project drop for a submission.
// Validation happens in full before the first queue push.
func (s *State) PlanRollout(submissionID string, projectDate GameDate, singles []SinglePlan) error {
	sub, err := s.submission(submissionID)
	if err != nil {
		return err
	}
	rel, err := s.Catalog.release(sub.ReleaseID)
	if err != nil {
		return err
	}
	if rel.Released {
		return ErrAlreadyReleased
	}
	inRelease := make(map[string]bool, len(rel.SongIDs))
	for _, id := range rel.SongIDs {
		inRelease[id] = true
	}
	dates := make([]GameDate, 0, len(singles))
	for _, sp := range singles {
		song, err := s.Catalog.song(sp.SongID)
		if err != nil {
			return err
		}
		if !inRelease[sp.SongID] {
			return ErrSongTaken
		}
		if song.Released {
			return ErrAlreadyReleased
		}
		dates = append(dates, sp.Date)
	}
	if err := validatePlan(s.Date, projectDate, dates); err != nil {
		return err
	}

	for _, sp := range singles {
		s.pushEvent(ScheduledEvent{
			ID:           s.nextID("event"),
			Kind:         ScheduleSingle,
			TargetID:     sp.SongID,
			SubmissionID: submissionID,
			Date:         sp.Date,
		})
	}
	s.pushEvent(ScheduledEvent{
		ID:           s.nextID("event"),
		Kind:         ScheduleProject,
		TargetID:     rel.ID,
		SubmissionID: submissionID,
		Date:         projectDate,
	})
	return nil
}

// SpendPromo runs one budget-gated promotional action against a submission.
// The spend check and the increment are a single step; a rejected action
// leaves PromoSpent unchanged. One-shot actions re-trigger as ErrActionDone
// without spending.
func (s *State) SpendPromo(submissionID string, action PromoAction, songID string) (*Submission, error) {
	sub, err := s.submission(submissionID)
	if err != nil {
		return nil, err
	}
	cost, ok := s.promoCost(action)
	if !ok {
		return nil, ErrWrongOfferKind
	}

	var song *Song
	if songID != "" {
		if song, err = s.Catalog.song(songID); err != nil {
			return nil, err
		}
	}

	switch action {
	case PromoCountdown:
		if sub.CountdownPage {
			return nil, ErrActionDone
		}
	case PromoGenius:
		if sub.GeniusSongID != "" {
			return nil, ErrActionDone
		}
		if song == nil {
			return nil, ErrSongNotFound
		}
	case PromoFallon:
		if sub.FallonSongID != "" {
			return nil, ErrActionDone
		}
		if song == nil {
			return nil, ErrSongNotFound
		}
	}

	if err := sub.trySpend(cost, action, songID, s.Date); err != nil {
		return nil, err
	}

	switch action {
	case PromoCountdown:
		sub.CountdownPage = true
		s.Boosts = append(s.Boosts, Boost{TargetID: sub.ReleaseID, Amount: s.Balance.CountdownBoost, WeeksLeft: 3, Source: "countdown"})
	case PromoGenius:
		sub.GeniusSongID = song.ID
		s.Videos = append(s.Videos, Video{ID: s.nextID("video"), SongID: song.ID, Kind: "genius_placement", Posted: s.Date})
		s.Boosts = append(s.Boosts, Boost{TargetID: song.ID, Amount: s.Balance.GeniusBoost, WeeksLeft: 2, Source: "genius"})
	case PromoFallon:
		sub.FallonSongID = song.ID
		s.pushEvent(ScheduledEvent{
			ID:           s.nextID("event"),
			Kind:         ScheduleTaping,
			TargetID:     song.ID,
			SubmissionID: sub.ID,
			Date:         s.Date.AddWeeks(3),
		})
	case PromoPressRun:
		target := sub.ReleaseID
		if song != nil {
			target = song.ID
		}
		s.Boosts = append(s.Boosts, Boost{TargetID: target, Amount: s.Balance.PressRunBoost, WeeksLeft: 2, Source: "press_run"})
	case PromoTVSpot:
		target := sub.ReleaseID
		if song != nil {
			target = song.ID
		}
		s.Boosts = append(s.Boosts, Boost{TargetID: target, Amount: s.Balance.TVSpotBoost, WeeksLeft: 1, Source: "tv_spot"})
	}
	return sub, nil
}

// AcceptOffer resolves a pending offer. Accepting an already-resolved offer
// is an idempotent no-op: same state out as one call, no error.
func (s *State) AcceptOffer(offerID string) error {
	o, err := s.offer(offerID)
	if err != nil {
		return err
	}
	if o.Resolved() {
		return nil
	}

	switch offer := o.(type) {
	case *GeniusInterview:
		offer.Accepted = true
		s.Videos = append(s.Videos, Video{ID: s.nextID("video"), SongID: offer.SongID, Kind: "genius_interview", Posted: s.Date})
		s.Boosts = append(s.Boosts, Boost{TargetID: offer.SongID, Amount: s.Balance.GeniusBoost * 0.7, WeeksLeft: 2, Source: "genius_interview"})
	case *OnTheRadar:
		offer.Accepted = true
		s.Videos = append(s.Videos, Video{ID: s.nextID("video"), SongID: offer.SongID, Kind: "on_the_radar", Posted: s.Date})
		s.Boosts = append(s.Boosts, Boost{TargetID: offer.SongID, Amount: 12, WeeksLeft: 2, Source: "on_the_radar"})
	case *Trshd:
		offer.Accepted = true
		s.Videos = append(s.Videos, Video{ID: s.nextID("video"), SongID: offer.SongID, Kind: "trshd_set", Posted: s.Date})
		s.Boosts = append(s.Boosts, Boost{TargetID: offer.SongID, Amount: 14, WeeksLeft: 2, Source: "trshd"})
	case *FallonOffer:
		offer.Accepted = true
		offer.TapingDate = s.Date.AddWeeks(3)
		s.pushEvent(ScheduledEvent{
			ID:       s.nextID("event"),
			Kind:     ScheduleTaping,
			TargetID: offer.SongID,
			Date:     offer.TapingDate,
		})
	case *OnlyFansRequest:
		offer.Accepted = true
		s.Posts = append(s.Posts, Post{ID: s.nextID("post"), Kind: "onlyfans", Posted: s.Date})
	case *SoundtrackOffer:
		offer.Fulfilled = true
		if song, ok := s.Catalog.Songs[offer.SongID]; ok {
			song.InSoundtrack = true
			s.Boosts = append(s.Boosts, Boost{TargetID: song.ID, Amount: 10, WeeksLeft: 4, Source: "soundtrack"})
		}
	case *VogueCover:
		offer.Accepted = true
		s.Posts = append(s.Posts, Post{ID: s.nextID("post"), Kind: "vogue_cover", Posted: s.Date})
	case *FeatureRequest:
		offer.Accepted = true
		rng := s.tickRNG(int(s.IDCounter), "feature")
		song := &Song{
			ID:         s.nextID("song"),
			Title:      npcTitle(rng) + " (feat. " + s.Artist + ")",
			Genre:      offer.Genre,
			Quality:    55 + rng.Intn(40),
			Released:   true,
			ReleasedOn: s.Date,
		}
		s.Catalog.addSong(song)
		s.Boosts = append(s.Boosts, Boost{TargetID: song.ID, Amount: 16, WeeksLeft: 2, Source: "feature"})
	case *LabelInterest:
		offer.Accepted = true
		s.createSubmission(offer.ReleaseID, offer.Budget)
	case *RedCarpetInvite:
		offer.Accepted = true
		if c := s.ceremony(offer.Award, offer.Year); c != nil && c.Stage != StageResolved {
			c.Stage = StageAttending
			week := s.Balance.GrammyCeremonyWeek
			if offer.Award == AwardOscar {
				week = s.Balance.OscarCeremonyWeek
			}
			s.pushEvent(ScheduledEvent{
				ID:   s.nextID("event"),
				Kind: ScheduleRedCarpet,
				Date: GameDate{Week: week, Year: offer.Year + 1},
			})
		}
	case *PerformanceInvite:
		offer.Accepted = true
		if c := s.ceremony(offer.Award, offer.Year); c != nil && c.Stage == StagePerformanceOffered {
			c.Stage = StagePerformanceSet
			c.Performance = offer.SongID
			carpet := &RedCarpetInvite{OfferMeta: s.newOfferMeta(), Award: offer.Award, Year: offer.Year}
			s.addOffer(carpet, awardDisplay(offer.Award), "Red carpet invitation",
				"Performers walk first.")
			c.Stage = StageRedCarpetOffered
		}
	case *AwardInvite, *PopBaseQuestion:
		// These resolve through their own commands, not a bare accept.
		return ErrWrongOfferKind
	default:
		return ErrWrongOfferKind
	}
	return nil
}

// DeclineOffer is terminal and idempotent; declining a resolved offer
// changes nothing.
func (s *State) DeclineOffer(offerID string) error {
	o, err := s.offer(offerID)
	if err != nil {
		return err
	}
	if o.Resolved() {
		return nil
	}
	o.Meta().Declined = true
	return nil
}

// AnswerQuestion resolves a conversational offer. The answer must be
// player-authored text; there are no retries once answered.
func (s *State) AnswerQuestion(offerID, text string) error {
	o, err := s.offer(offerID)
	if err != nil {
		return err
	}
	q, ok := o.(*PopBaseQuestion)
	if !ok {
		return ErrWrongOfferKind
	}
	if q.Resolved() {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyAnswer
	}
	q.Answer = text
	q.Answered = true
	s.Posts = append(s.Posts, Post{ID: s.nextID("post"), Kind: "popbase_quote", Body: text, Posted: s.Date})
	return nil
}

// SubmitAward enters the given items into an open submission window.
// Submission is once per award year and irreversible; Best New Artist burns
// its career-wide used flag on first successful entry.
func (s *State) SubmitAward(award AwardKind, entries []SubmittedEntry) error {
	year := s.Date.Year
	c := s.ceremony(award, year)
	if c == nil {
		return ErrNotSubmittable
	}
	if c.Stage != StageEligible {
		return ErrAlreadySubmitted
	}
	if len(entries) == 0 {
		return ErrNotSubmittable
	}
	eligible := make(map[AwardCategory]bool)
	for _, cat := range s.EligibleCategories(award, year) {
		eligible[cat] = true
	}
	for _, e := range entries {
		if !eligible[e.Category] {
			return ErrCategoryIneligible
		}
		if e.Category == CatBestNewArtist {
			continue // artist-level entry, no item reference
		}
		if _, okSong := s.Catalog.Songs[e.ItemID]; !okSong {
			if _, okRel := s.Catalog.Releases[e.ItemID]; !okRel {
				return ErrSongNotFound
			}
		}
	}

	c.Entries = append([]SubmittedEntry(nil), entries...)
	c.Stage = StageSubmitted
	for _, e := range entries {
		if e.Category == CatBestNewArtist {
			s.BestNewArtistUsed = true
		}
	}
	for _, id := range s.OfferOrder {
		if invite, ok := s.Offers[id].(*AwardInvite); ok && invite.Award == award && invite.Year == year {
			invite.Submitted = true
		}
	}
	s.emitEmail("", "", awardDisplay(award), "Submission received",
		"Your entries are in. Nominations announce later this season.")
	return nil
}

func (s *State) createSubmission(releaseID string, budget int64) *Submission {
	sub := &Submission{
		ID:          s.nextID("sub"),
		ReleaseID:   releaseID,
		PromoBudget: budget,
	}
	if rel, ok := s.Catalog.Releases[releaseID]; ok {
		type cand struct {
			id string
			q  int
		}
		var cands []cand
		for _, id := range rel.SongIDs {
			if song, ok := s.Catalog.Songs[id]; ok {
				cands = append(cands, cand{id: id, q: song.Quality})
			}
		}
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].q > cands[j].q })
		for i := 0; i < len(cands) && i < 3; i++ {
			sub.RecommendedSingles = append(sub.RecommendedSingles, cands[i].id)
		}
	}
	s.Submissions[sub.ID] = sub
	s.SubmissionOrder = append(s.SubmissionOrder, sub.ID)
	s.emitEmail("", "", "A&R", "Rollout budget approved",
		"Plan the singles, spend the budget well.")
	return sub
}

func (s *State) MarkEmailRead(emailID string) error {
	for _, e := range s.Inbox {
		if e.ID == emailID {
			e.Read = true
			return nil
		}
	}
	return ErrEmailNotFound
}

func (s *State) PlanTour(name string, venues []Venue) (*Tour, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if len(venues) == 0 {
		return nil, ErrInvalidName
	}
	tour := &Tour{
		ID:     s.nextID("tour"),
		Name:   name,
		Venues: append([]Venue(nil), venues...),
		Status: TourPlanning,
	}
	s.Tours[tour.ID] = tour
	s.TourOrder = append(s.TourOrder, tour.ID)
	return tour, nil
}

func (s *State) StartTour(tourID string) error {
	tour, ok := s.Tours[tourID]
	if !ok {
		return ErrTourNotFound
	}
	if tour.Status != TourPlanning {
		return ErrTourNotPlanning
	}
	tour.Status = TourActive
	return nil
}
