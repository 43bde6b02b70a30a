package sim

import (
	"fmt"
	"strconv"
)

type AwardStage string

const (
	StageEligible           AwardStage = "eligible"
	StageSubmitted          AwardStage = "submitted"
	StageNominated          AwardStage = "nominated"
	StagePerformanceOffered AwardStage = "performance_offered"
	StagePerformanceSet     AwardStage = "performance_accepted"
	StageRedCarpetOffered   AwardStage = "red_carpet_offered"
	StageAttending          AwardStage = "attending"
	StageResolved           AwardStage = "resolved"
)

type AwardCategory string

const (
	CatRecordOfTheYear AwardCategory = "record_of_the_year"
	CatSongOfTheYear   AwardCategory = "song_of_the_year"
	CatAlbumOfTheYear  AwardCategory = "album_of_the_year"
	CatBestNewArtist   AwardCategory = "best_new_artist"
	CatPopPerformance  AwardCategory = "best_pop_performance"
	CatRapPerformance  AwardCategory = "best_rap_performance"
	CatRnBPerformance  AwardCategory = "best_rnb_performance"
	CatCountrySong     AwardCategory = "best_country_song"
	CatRockPerformance AwardCategory = "best_rock_performance"
	CatDanceRecording  AwardCategory = "best_dance_recording"
	CatAltPerformance  AwardCategory = "best_alternative_performance"
	CatOriginalSong    AwardCategory = "best_original_song"
)

// genreCategory maps a song genre onto its Grammy performance category.
func genreCategory(g Genre) (AwardCategory, bool) {
	switch g {
	case GenrePop:
		return CatPopPerformance, true
	case GenreRap:
		return CatRapPerformance, true
	case GenreRnB:
		return CatRnBPerformance, true
	case GenreCountry:
		return CatCountrySong, true
	case GenreRock:
		return CatRockPerformance, true
	case GenreEDM:
		return CatDanceRecording, true
	case GenreIndie:
		return CatAltPerformance, true
	}
	return "", false
}

// AwardRecord is created only at result resolution and never mutated.
type AwardRecord struct {
	Year     int           `json:"year"`
	Category AwardCategory `json:"category"`
	ItemID   string        `json:"item_id"`
	ItemName string        `json:"item_name"`
	Winner   bool          `json:"is_winner"`
}

type SubmittedEntry struct {
	Category AwardCategory `json:"category"`
	ItemID   string        `json:"item_id"`
}

// Ceremony tracks one award year's pipeline. Stage moves forward only;
// submission is once per eligibility year and irreversible.
type Ceremony struct {
	Award       AwardKind        `json:"award"`
	Year        int              `json:"year"`
	Stage       AwardStage       `json:"stage"`
	Entries     []SubmittedEntry `json:"entries,omitempty"`
	Nominations []SubmittedEntry `json:"nominations,omitempty"`
	Performance string           `json:"performance_song_id,omitempty"`
	Records     []AwardRecord    `json:"records,omitempty"`
}

func ceremonyKey(award AwardKind, year int) string {
	return string(award) + ":" + strconv.Itoa(year)
}

func (s *State) ceremony(award AwardKind, year int) *Ceremony {
	return s.Ceremonies[ceremonyKey(award, year)]
}

func (s *State) ensureCeremony(award AwardKind, year int) *Ceremony {
	key := ceremonyKey(award, year)
	if c, ok := s.Ceremonies[key]; ok {
		return c
	}
	c := &Ceremony{Award: award, Year: year, Stage: StageEligible}
	s.Ceremonies[key] = c
	s.CeremonyOrder = append(s.CeremonyOrder, key)
	return c
}

// bestNewArtistEligible: first release year must equal the submission year,
// and the category is one-shot for a career. The used flag is checked, never
// re-derived, so winning or losing both burn it.
func (s *State) bestNewArtistEligible(year int) bool {
	if s.BestNewArtistUsed {
		return false
	}
	first := 0
	for _, rel := range s.Catalog.releasesInOrder() {
		if !rel.Released {
			continue
		}
		if first == 0 || rel.ReleasedOn.Year < first {
			first = rel.ReleasedOn.Year
		}
	}
	return first != 0 && first == year
}

// EligibleCategories lists what the given award year would accept right now.
func (s *State) EligibleCategories(award AwardKind, year int) []AwardCategory {
	var out []AwardCategory
	if award == AwardOscar {
		for _, song := range s.Catalog.songsInOrder() {
			if song.Released && song.InSoundtrack {
				out = append(out, CatOriginalSong)
				break
			}
		}
		return out
	}
	seen := make(map[AwardCategory]bool)
	add := func(c AwardCategory) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, song := range s.Catalog.songsInOrder() {
		if !song.Released || song.ReleasedOn.Year != year {
			continue
		}
		add(CatRecordOfTheYear)
		add(CatSongOfTheYear)
		if c, ok := genreCategory(song.Genre); ok {
			add(c)
		}
	}
	for _, rel := range s.Catalog.releasesInOrder() {
		if rel.Released && rel.ReleasedOn.Year == year && rel.Kind != ReleaseSingle {
			add(CatAlbumOfTheYear)
		}
	}
	if s.bestNewArtistEligible(year) {
		add(CatBestNewArtist)
	}
	return out
}

// tickAwards drives the award calendar for the current week: opening
// submission windows, computing nominations, and resolving results.
func (s *State) tickAwards(tickIdx int) {
	s.tickAwardCalendar(AwardGrammy, s.Balance.GrammySubmissionWeek, s.Balance.GrammyNominationWeek, s.Balance.GrammyCeremonyWeek, tickIdx)
	s.tickAwardCalendar(AwardOscar, s.Balance.OscarSubmissionWeek, s.Balance.OscarNominationWeek, s.Balance.OscarCeremonyWeek, tickIdx)
}

func (s *State) tickAwardCalendar(award AwardKind, subWeek, nomWeek, ceremonyWeek, tickIdx int) {
	// Submission window opens in the eligibility year.
	if s.Date.Week == subWeek {
		year := s.Date.Year
		if s.ceremony(award, year) == nil && len(s.EligibleCategories(award, year)) > 0 {
			s.ensureCeremony(award, year)
			invite := &AwardInvite{
				OfferMeta: s.newOfferMeta(),
				Award:     award,
				Year:      year,
			}
			s.addOffer(invite, awardDisplay(award), fmt.Sprintf("%s submissions are open", awardDisplay(award)),
				"Submit your eligible work before the window closes.")
		}
	}

	// Nominations land later the same year (Grammy) or early the next
	// (Oscar); the ceremony year is always submission year + 1.
	nomYear := s.Date.Year
	if nomWeek < subWeek {
		nomYear--
	}
	if s.Date.Week == nomWeek {
		if c := s.ceremony(award, nomYear); c != nil && c.Stage == StageSubmitted {
			s.computeNominations(c, tickIdx)
		}
	}

	if s.Date.Week == ceremonyWeek {
		if c := s.ceremony(award, s.Date.Year-1); c != nil {
			switch c.Stage {
			case StageNominated, StagePerformanceOffered, StagePerformanceSet, StageRedCarpetOffered, StageAttending:
				s.resolveCeremony(c, tickIdx)
			}
		}
	}
}

func (s *State) computeNominations(c *Ceremony, tickIdx int) {
	rng := s.tickRNG(tickIdx, "noms:"+string(c.Award))
	for _, entry := range c.Entries {
		chance := 0.35 + s.entryStrength(entry.ItemID)*0.6
		if rng.Float64() < chance {
			c.Nominations = append(c.Nominations, entry)
		}
	}
	if len(c.Nominations) == 0 {
		c.Stage = StageResolved
		s.emitEmail("", "", awardDisplay(c.Award),
			fmt.Sprintf("%s %d: no nominations", awardDisplay(c.Award), c.Year+1),
			"Not this year. The work continues.")
		return
	}
	c.Stage = StageNominated
	s.emitEmail("", "", awardDisplay(c.Award),
		fmt.Sprintf("%s %d: you are nominated", awardDisplay(c.Award), c.Year+1),
		fmt.Sprintf("Nominated in %d categories.", len(c.Nominations)))

	if c.Award == AwardOscar {
		perf := &PerformanceInvite{
			OfferMeta: s.newOfferMeta(),
			Award:     c.Award,
			Year:      c.Year,
			SongID:    c.Nominations[0].ItemID,
		}
		s.addOffer(perf, awardDisplay(c.Award), "Perform at the ceremony?",
			"The producers want the nominated song live on stage.")
		c.Stage = StagePerformanceOffered
		return
	}
	carpet := &RedCarpetInvite{
		OfferMeta: s.newOfferMeta(),
		Award:     c.Award,
		Year:      c.Year,
	}
	s.addOffer(carpet, awardDisplay(c.Award), "Red carpet invitation",
		"Walk the carpet on ceremony night.")
	c.Stage = StageRedCarpetOffered
}

// entryStrength scores a submitted item 0..1 from its chart peak, so award
// odds track the season the player actually had.
func (s *State) entryStrength(itemID string) float64 {
	best := 0.0
	score := func(snap ChartSnapshot, size int) {
		for _, e := range snap.Entries {
			if e.ID == itemID {
				v := 1 - float64(e.Peak-1)/float64(size)
				if v > best {
					best = v
				}
			}
		}
	}
	score(s.Charts[ChartHot], s.Balance.HotChartSize)
	score(s.Charts[ChartAlbums], s.Balance.AlbumChartSize)
	if song, ok := s.Catalog.Songs[itemID]; ok {
		q := float64(song.Quality) / 100
		if q > best {
			best = (best + q) / 2
		}
	}
	return best
}

func (s *State) resolveCeremony(c *Ceremony, tickIdx int) {
	rng := s.tickRNG(tickIdx, "results:"+string(c.Award))
	wins := 0
	for _, nom := range c.Nominations {
		name := s.itemName(nom.ItemID)
		winner := rng.Float64() < 0.25+s.entryStrength(nom.ItemID)*0.45
		c.Records = append(c.Records, AwardRecord{
			Year:     c.Year,
			Category: nom.Category,
			ItemID:   nom.ItemID,
			ItemName: name,
			Winner:   winner,
		})
		if winner {
			wins++
			// A televised win is a promotional event in its own right.
			s.Boosts = append(s.Boosts, Boost{TargetID: nom.ItemID, Amount: 30, WeeksLeft: 3, Source: "award_win"})
		}
	}
	c.Stage = StageResolved
	s.emitEmail("", "", awardDisplay(c.Award),
		fmt.Sprintf("%s %d results", awardDisplay(c.Award), c.Year+1),
		fmt.Sprintf("You won %d of %d categories.", wins, len(c.Nominations)))
}

func (s *State) itemName(id string) string {
	if song, ok := s.Catalog.Songs[id]; ok {
		return song.Title
	}
	if rel, ok := s.Catalog.Releases[id]; ok {
		return rel.Title
	}
	return id
}

func awardDisplay(a AwardKind) string {
	switch a {
	case AwardGrammy:
		return "The Recording Academy"
	case AwardOscar:
		return "The Film Academy"
	}
	return string(a)
}
