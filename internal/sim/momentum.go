package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// NPCSong is one member of the fixed simulated-competitor population. The
// population is generated once from the save seed; per-tick drift comes from
// the tick RNG so identical runs stay byte-identical.
type NPCSong struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Genre    Genre   `json:"genre"`
	Quality  int     `json:"quality"`
	Base     float64 `json:"base"`  // long-run momentum level
	Phase    float64 `json:"phase"` // offsets the popularity cycle
	Cycle    float64 `json:"cycle"` // cycle length in weeks
	BornIdx  int     `json:"born_idx"`
	AlbumID  string  `json:"album_id,omitempty"`
	CoverArt string  `json:"cover_art,omitempty"`
}

type NPCAlbum struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Artist  string  `json:"artist"`
	Genre   Genre   `json:"genre"`
	Base    float64 `json:"base"`
	Phase   float64 `json:"phase"`
	Cycle   float64 `json:"cycle"`
	BornIdx int     `json:"born_idx"`
}

var (
	npcFirst = []string{"Luna", "Dex", "Marlow", "Sable", "Juno", "Ozzy", "Wren", "Kairo", "Nova", "Briar",
		"Cassius", "Vale", "Indie", "Rocco", "Maeve", "Zion", "Lyric", "Ansel", "Poppy", "Drift"}
	npcLast = []string{"Blake", "Vox", "Steele", "Rivers", "Knight", "Hale", "Monroe", "West", "Frost", "Arden",
		"Slate", "Quinn", "Lang", "Cole", "Storm", "Banks", "Grey", "Royce", "Vance", "Nash"}
	npcWords = []string{"Midnight", "Velvet", "Static", "Golden", "Paper", "Neon", "Hollow", "Wildfire", "Crystal",
		"Fever", "Echo", "Gravity", "Sugar", "Thunder", "Mirror", "Ghost", "Ocean", "Electric", "Lonely", "Diamond"}
	npcNouns = []string{"Hearts", "Nights", "Dreams", "Games", "Roses", "Lights", "Tears", "Waves", "Streets",
		"Skies", "Lies", "Rush", "Youth", "Crown", "Smoke", "Bloom", "Riot", "Halo", "Fire", "Gold"}
)

func npcName(rng *rand.Rand) string {
	return npcFirst[rng.Intn(len(npcFirst))] + " " + npcLast[rng.Intn(len(npcLast))]
}

func npcTitle(rng *rand.Rand) string {
	return npcWords[rng.Intn(len(npcWords))] + " " + npcNouns[rng.Intn(len(npcNouns))]
}

// generateNPCs builds the competitor universe for a fresh save. A third of
// the song population is grouped under shared albums so the album chart has a
// believable field to rank against.
func generateNPCs(bal Balance, seed int64, bornIdx int) ([]NPCSong, []NPCAlbum) {
	rng := rand.New(rand.NewSource(seed))

	albums := make([]NPCAlbum, 0, bal.NPCAlbums)
	for i := 0; i < bal.NPCAlbums; i++ {
		albums = append(albums, NPCAlbum{
			ID:      fmt.Sprintf("npc-album-%03d", i),
			Title:   npcTitle(rng),
			Artist:  npcName(rng),
			Genre:   genres[rng.Intn(len(genres))],
			Base:    35 + rng.Float64()*55,
			Phase:   rng.Float64() * 2 * math.Pi,
			Cycle:   10 + rng.Float64()*30,
			BornIdx: bornIdx - rng.Intn(80),
		})
	}

	songs := make([]NPCSong, 0, bal.NPCSongs)
	for i := 0; i < bal.NPCSongs; i++ {
		s := NPCSong{
			ID:      fmt.Sprintf("npc-song-%03d", i),
			Title:   npcTitle(rng),
			Artist:  npcName(rng),
			Genre:   genres[rng.Intn(len(genres))],
			Quality: 40 + rng.Intn(60),
			Base:    30 + rng.Float64()*60,
			Phase:   rng.Float64() * 2 * math.Pi,
			Cycle:   8 + rng.Float64()*26,
			BornIdx: bornIdx - rng.Intn(60),
		}
		if i%3 == 0 {
			album := &albums[rng.Intn(len(albums))]
			s.Artist = album.Artist
			s.Genre = album.Genre
			s.AlbumID = album.ID
		}
		songs = append(songs, s)
	}
	return songs, albums
}

// Boost is a promotional momentum injection attached to a song or release.
// One-shot boosts carry WeeksLeft == 1 and burn off after a single tick.
type Boost struct {
	TargetID  string  `json:"target_id"`
	Amount    float64 `json:"amount"`
	WeeksLeft int     `json:"weeks_left"`
	Source    string  `json:"source"`
}

// scoredEntity feeds the chart ranker. ord is insertion order inside the
// universe; bornIdx is the release-date index used for the tie-break.
type scoredEntity struct {
	id       string
	score    float64
	bornIdx  int
	ord      int
	title    string
	artist   string
	coverArt string
	genre    Genre
	player   bool
}

// songMomentum computes the player-song score for the current tick.
// Momentum is a decayed blend of quality, genre market weight, release
// recency, cumulative promo spend and prior-rank inertia.
func (s *State) songMomentum(song *Song, prevRank map[string]int, tickRNG *rand.Rand) float64 {
	bal := s.Balance
	weeksOut := s.Date.Index() - song.ReleasedOn.Index()
	if weeksOut < 0 {
		weeksOut = 0
	}

	score := float64(song.Quality) * bal.QualityWeight * bal.genreWeight(song.Genre)
	score += bal.ReleaseHype * math.Pow(bal.HypeDecay, float64(weeksOut))

	if spend := s.promoSpendFor(song.ID); spend > 0 {
		score += bal.PromoSpendWeight * math.Log1p(float64(spend)/10_000)
	}
	for _, b := range s.Boosts {
		if b.TargetID == song.ID && b.WeeksLeft > 0 {
			score += b.Amount
		}
	}
	if rank, ok := prevRank[song.ID]; ok {
		// Prior standing resists free fall.
		score += bal.InertiaWeight * float64(s.Balance.HotChartSize-rank)
	}
	score += tickRNG.Float64() * bal.NoiseScale
	return score
}

func (s *State) releaseMomentum(rel *Release, prevRank map[string]int, tickRNG *rand.Rand) float64 {
	total := 0.0
	n := 0
	for _, id := range rel.SongIDs {
		song, ok := s.Catalog.Songs[id]
		if !ok || !song.Released {
			continue
		}
		total += s.songMomentum(song, nil, tickRNG)
		n++
	}
	if n == 0 {
		return 0
	}
	score := total / float64(n)
	for _, b := range s.Boosts {
		if b.TargetID == rel.ID && b.WeeksLeft > 0 {
			score += b.Amount
		}
	}
	if rank, ok := prevRank[rel.ID]; ok {
		score += s.Balance.InertiaWeight * float64(s.Balance.AlbumChartSize-rank)
	}
	return score
}

func npcDrift(base, phase, cycle float64, age int, tickIdx int, tickRNG *rand.Rand) float64 {
	wave := math.Sin(phase + 2*math.Pi*float64(tickIdx)/cycle)
	decay := math.Exp(-float64(age) / 90.0)
	return base*(0.6+0.4*decay) + 12*wave + tickRNG.Float64()*6
}

// promoSpendFor sums the spend booked against a song across submissions.
func (s *State) promoSpendFor(songID string) int64 {
	var total int64
	for _, id := range s.SubmissionOrder {
		sub := s.Submissions[id]
		for _, line := range sub.SpendLog {
			if line.SongID == songID {
				total += line.Amount
			}
		}
	}
	return total
}
