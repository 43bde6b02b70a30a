package sim

import "strings"

type Genre string

const (
	GenrePop     Genre = "pop"
	GenreRap     Genre = "rap"
	GenreRnB     Genre = "rnb"
	GenreCountry Genre = "country"
	GenreRock    Genre = "rock"
	GenreEDM     Genre = "edm"
	GenreIndie   Genre = "indie"
)

var genres = []Genre{GenrePop, GenreRap, GenreRnB, GenreCountry, GenreRock, GenreEDM, GenreIndie}

func ParseGenre(s string) (Genre, error) {
	g := Genre(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range genres {
		if g == known {
			return g, nil
		}
	}
	return "", ErrInvalidGenre
}

type ReleaseKind string

const (
	ReleaseSingle ReleaseKind = "single"
	ReleaseEP     ReleaseKind = "ep"
	ReleaseAlbum  ReleaseKind = "album"
)

type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Quality  int    `json:"quality"` // 0..100
	Genre    Genre  `json:"genre"`
	CoverArt string `json:"cover_art,omitempty"`

	Released   bool     `json:"released"`
	ReleasedOn GameDate `json:"released_on,omitzero"`
	ReleaseID  string   `json:"release_id,omitempty"` // owning release, at most one
	Streams    int64    `json:"streams"`

	// Placement flags set by accepted offers; one-way.
	InSoundtrack bool `json:"in_soundtrack,omitempty"`
}

type Release struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Kind     ReleaseKind `json:"kind"`
	SongIDs  []string    `json:"song_ids"` // ordered, non-empty
	CoverArt string      `json:"cover_art,omitempty"`

	Released   bool     `json:"released"`
	ReleasedOn GameDate `json:"released_on,omitzero"`
	Streams    int64    `json:"streams"`
}

// Catalog owns the player's songs and releases. Entities live in id-keyed
// arenas; the order slices preserve insertion order so every tick iterates
// deterministically (map order must never leak into the simulation).
type Catalog struct {
	Songs    map[string]*Song    `json:"songs"`
	Releases map[string]*Release `json:"releases"`

	SongOrder    []string `json:"song_order"`
	ReleaseOrder []string `json:"release_order"`
}

func NewCatalog() Catalog {
	return Catalog{
		Songs:    make(map[string]*Song),
		Releases: make(map[string]*Release),
	}
}

func (c *Catalog) addSong(s *Song) {
	c.Songs[s.ID] = s
	c.SongOrder = append(c.SongOrder, s.ID)
}

func (c *Catalog) addRelease(r *Release) {
	c.Releases[r.ID] = r
	c.ReleaseOrder = append(c.ReleaseOrder, r.ID)
}

func (c *Catalog) song(id string) (*Song, error) {
	s, ok := c.Songs[id]
	if !ok {
		return nil, ErrSongNotFound
	}
	return s, nil
}

func (c *Catalog) release(id string) (*Release, error) {
	r, ok := c.Releases[id]
	if !ok {
		return nil, ErrReleaseNotFound
	}
	return r, nil
}

// songsInOrder yields songs in insertion order.
func (c *Catalog) songsInOrder() []*Song {
	out := make([]*Song, 0, len(c.SongOrder))
	for _, id := range c.SongOrder {
		out = append(out, c.Songs[id])
	}
	return out
}

func (c *Catalog) releasesInOrder() []*Release {
	out := make([]*Release, 0, len(c.ReleaseOrder))
	for _, id := range c.ReleaseOrder {
		out = append(out, c.Releases[id])
	}
	return out
}

// Release looks up a release by id.
func (c *Catalog) Release(id string) (*Release, error) {
	return c.release(id)
}

// UnassignedSongs lists unreleased songs not yet attached to a release, in
// insertion order.
func (c *Catalog) UnassignedSongs() []*Song {
	var out []*Song
	for _, s := range c.songsInOrder() {
		if !s.Released && s.ReleaseID == "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Catalog) ReleasedSongs() []*Song {
	var out []*Song
	for _, s := range c.songsInOrder() {
		if s.Released {
			out = append(out, s)
		}
	}
	return out
}

// ReleasedProjects lists released EPs and albums, in insertion order.
func (c *Catalog) ReleasedProjects() []*Release {
	var out []*Release
	for _, r := range c.releasesInOrder() {
		if r.Released && r.Kind != ReleaseSingle {
			out = append(out, r)
		}
	}
	return out
}
