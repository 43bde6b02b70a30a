package sim

import (
	"fmt"
	"sort"
)

type ChartKind string

const (
	ChartHot    ChartKind = "hot"
	ChartAlbums ChartKind = "albums"
)

// GenreChart names the per-genre song chart, e.g. "genre:pop".
func GenreChart(g Genre) ChartKind {
	return ChartKind(fmt.Sprintf("genre:%s", g))
}

// ChartEntry is one row of a ranked snapshot. History fields (LastWeek, Peak,
// WeeksOn) are derived from the immediately preceding snapshot of the same
// chart and are regenerated whole every tick; they are never authoritative
// state. LastWeek == nil if and only if WeeksOn == 1: a new entry.
type ChartEntry struct {
	ID       string `json:"id"`
	Rank     int    `json:"rank"`
	LastWeek *int   `json:"last_week,omitempty"`
	Peak     int    `json:"peak"`
	WeeksOn  int    `json:"weeks_on"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	CoverArt string `json:"cover_art,omitempty"`
	Player   bool   `json:"player"`
}

// IsNewEntry is re-derived, not stored; the two fields it reads are kept
// consistent by construction in rankChart.
func (e ChartEntry) IsNewEntry() bool {
	return e.LastWeek == nil && e.WeeksOn == 1
}

type ChartSnapshot struct {
	Kind    ChartKind    `json:"kind"`
	Date    GameDate     `json:"date"`
	Entries []ChartEntry `json:"entries"`
}

// rankChart sorts the scored universe and carries history over from prev.
// Ordering: momentum descending; exact ties go to the newer release, then to
// insertion order. The sort is stable so equal keys never reorder across runs.
// Entities absent from prev re-enter with fresh history: the top-N boundary
// forgets, it does not park ghosts.
func rankChart(kind ChartKind, date GameDate, prev ChartSnapshot, universe []scoredEntity, size int) ChartSnapshot {
	sorted := make([]scoredEntity, len(universe))
	copy(sorted, universe)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].score != sorted[j].score {
			return sorted[i].score > sorted[j].score
		}
		if sorted[i].bornIdx != sorted[j].bornIdx {
			return sorted[i].bornIdx > sorted[j].bornIdx // newer first
		}
		return sorted[i].ord < sorted[j].ord
	})
	if len(sorted) > size {
		sorted = sorted[:size]
	}

	prevByID := make(map[string]ChartEntry, len(prev.Entries))
	for _, e := range prev.Entries {
		prevByID[e.ID] = e
	}

	out := ChartSnapshot{Kind: kind, Date: date, Entries: make([]ChartEntry, 0, len(sorted))}
	for i, sc := range sorted {
		entry := ChartEntry{
			ID:       sc.id,
			Rank:     i + 1,
			Title:    sc.title,
			Artist:   sc.artist,
			CoverArt: sc.coverArt,
			Player:   sc.player,
		}
		if p, ok := prevByID[sc.id]; ok {
			lw := p.Rank
			entry.LastWeek = &lw
			entry.Peak = minInt(p.Peak, entry.Rank)
			entry.WeeksOn = p.WeeksOn + 1
		} else {
			entry.Peak = entry.Rank
			entry.WeeksOn = 1
		}
		out.Entries = append(out.Entries, entry)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// recomputeCharts rebuilds every chart snapshot for the current tick.
func (s *State) recomputeCharts(tickIdx int) {
	rng := s.tickRNG(tickIdx, "charts")

	prevHotRank := rankIndex(s.Charts[ChartHot])
	prevAlbumRank := rankIndex(s.Charts[ChartAlbums])

	// Song universe: NPC population plus released player songs. NPC ord
	// starts after the player block so player entries win insertion-order
	// ties only among themselves.
	var songs []scoredEntity
	ord := 0
	for _, song := range s.Catalog.songsInOrder() {
		if !song.Released {
			continue
		}
		songs = append(songs, scoredEntity{
			id:       song.ID,
			score:    s.songMomentum(song, prevHotRank, rng),
			bornIdx:  song.ReleasedOn.Index(),
			ord:      ord,
			title:    song.Title,
			artist:   s.Artist,
			coverArt: song.CoverArt,
			genre:    song.Genre,
			player:   true,
		})
		ord++
	}
	for _, npc := range s.NPCSongs {
		age := s.Date.Index() - npc.BornIdx
		songs = append(songs, scoredEntity{
			id:       npc.ID,
			score:    npcDrift(npc.Base, npc.Phase, npc.Cycle, age, tickIdx, rng),
			bornIdx:  npc.BornIdx,
			ord:      ord,
			title:    npc.Title,
			artist:   npc.Artist,
			coverArt: npc.CoverArt,
			genre:    npc.Genre,
		})
		ord++
	}

	var albums []scoredEntity
	ord = 0
	for _, rel := range s.Catalog.releasesInOrder() {
		if !rel.Released {
			continue
		}
		albums = append(albums, scoredEntity{
			id:       rel.ID,
			score:    s.releaseMomentum(rel, prevAlbumRank, rng),
			bornIdx:  rel.ReleasedOn.Index(),
			ord:      ord,
			title:    rel.Title,
			artist:   s.Artist,
			coverArt: rel.CoverArt,
			player:   true,
		})
		ord++
	}
	for _, npc := range s.NPCAlbums {
		age := s.Date.Index() - npc.BornIdx
		albums = append(albums, scoredEntity{
			id:      npc.ID,
			score:   npcDrift(npc.Base, npc.Phase, npc.Cycle, age, tickIdx, rng),
			bornIdx: npc.BornIdx,
			ord:     ord,
			title:   npc.Title,
			artist:  npc.Artist,
			genre:   npc.Genre,
		})
		ord++
	}

	next := make(map[ChartKind]ChartSnapshot, 2+len(genres))
	next[ChartHot] = rankChart(ChartHot, s.Date, s.Charts[ChartHot], songs, s.Balance.HotChartSize)
	next[ChartAlbums] = rankChart(ChartAlbums, s.Date, s.Charts[ChartAlbums], albums, s.Balance.AlbumChartSize)

	for _, g := range genres {
		kind := GenreChart(g)
		var universe []scoredEntity
		for _, sc := range songs {
			if sc.genre == g {
				universe = append(universe, sc)
			}
		}
		next[kind] = rankChart(kind, s.Date, s.Charts[kind], universe, s.Balance.GenreChartSize)
	}
	s.Charts = next
}

func rankIndex(snap ChartSnapshot) map[string]int {
	out := make(map[string]int, len(snap.Entries))
	for _, e := range snap.Entries {
		out[e.ID] = e.Rank
	}
	return out
}

// accrueStreams credits weekly streams to charted player entities, scaled
// linearly from the top slot down to the floor.
func (s *State) accrueStreams() {
	bal := s.Balance
	credit := func(rank, size int) int64 {
		span := float64(bal.StreamsTop - bal.StreamsFloor)
		frac := 1 - float64(rank-1)/float64(size)
		return bal.StreamsFloor + int64(span*frac*frac)
	}
	for _, e := range s.Charts[ChartHot].Entries {
		if !e.Player {
			continue
		}
		if song, ok := s.Catalog.Songs[e.ID]; ok {
			song.Streams += credit(e.Rank, bal.HotChartSize)
		}
	}
	for _, e := range s.Charts[ChartAlbums].Entries {
		if !e.Player {
			continue
		}
		if rel, ok := s.Catalog.Releases[e.ID]; ok {
			rel.Streams += credit(e.Rank, bal.AlbumChartSize)
		}
	}
}
