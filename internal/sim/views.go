package sim

// Read models. These are plain projections of State; nothing here mutates,
// so they are safe to build while a snapshot is being taken.

type Summary struct {
	SaveID        string   `json:"save_id"`
	Artist        string   `json:"artist"`
	Date          GameDate `json:"date"`
	Tick          int64    `json:"tick"`
	Songs         int      `json:"songs"`
	Releases      int      `json:"releases"`
	TotalStreams  int64    `json:"total_streams"`
	UnreadEmails  int      `json:"unread_emails"`
	PendingOffers int      `json:"pending_offers"`
	AwardWins     int      `json:"award_wins"`
	HotRank       int      `json:"hot_rank,omitempty"` // best current hot slot, 0 when uncharted
}

func (s *State) Summarize() Summary {
	out := Summary{
		SaveID:   s.SaveID,
		Artist:   s.Artist,
		Date:     s.Date,
		Tick:     s.Tick,
		Songs:    len(s.Catalog.SongOrder),
		Releases: len(s.Catalog.ReleaseOrder),
	}
	for _, song := range s.Catalog.songsInOrder() {
		out.TotalStreams += song.Streams
	}
	for _, e := range s.Inbox {
		if !e.Read {
			out.UnreadEmails++
		}
	}
	for _, id := range s.OfferOrder {
		if !s.Offers[id].Resolved() {
			out.PendingOffers++
		}
	}
	for _, id := range s.CeremonyOrder {
		for _, rec := range s.Ceremonies[id].Records {
			if rec.Winner {
				out.AwardWins++
			}
		}
	}
	for _, e := range s.Charts[ChartHot].Entries {
		if e.Player {
			out.HotRank = e.Rank
			break
		}
	}
	return out
}

// Chart returns the current snapshot for a chart, empty when the chart has
// never been computed.
func (s *State) Chart(kind ChartKind) ChartSnapshot {
	snap, ok := s.Charts[kind]
	if !ok {
		return ChartSnapshot{Kind: kind, Date: s.Date}
	}
	return snap
}

// InboxView lists emails newest first.
func (s *State) InboxView() []*Email {
	out := make([]*Email, len(s.Inbox))
	for i, e := range s.Inbox {
		out[len(s.Inbox)-1-i] = e
	}
	return out
}

type OfferView struct {
	Kind  OfferKind `json:"kind"`
	Offer Offer     `json:"offer"`
}

// PendingOffers lists unresolved offers in arrival order.
func (s *State) PendingOffers() []OfferView {
	out := make([]OfferView, 0, 4)
	for _, id := range s.OfferOrder {
		o := s.Offers[id]
		if o.Resolved() {
			continue
		}
		out = append(out, OfferView{Kind: o.Kind(), Offer: o})
	}
	return out
}

type SongStats struct {
	Song    *Song `json:"song"`
	Rank    int   `json:"rank,omitempty"`
	Peak    int   `json:"peak,omitempty"`
	WeeksOn int   `json:"weeks_on,omitempty"`
}

func (s *State) SongStats(songID string) (SongStats, error) {
	song, err := s.Catalog.song(songID)
	if err != nil {
		return SongStats{}, err
	}
	out := SongStats{Song: song}
	for _, e := range s.Charts[ChartHot].Entries {
		if e.ID == songID {
			out.Rank, out.Peak, out.WeeksOn = e.Rank, e.Peak, e.WeeksOn
			break
		}
	}
	return out, nil
}

type ReleaseStats struct {
	Release *Release `json:"release"`
	Tracks  []*Song  `json:"tracks"`
	Rank    int      `json:"rank,omitempty"`
	Peak    int      `json:"peak,omitempty"`
	WeeksOn int      `json:"weeks_on,omitempty"`
}

func (s *State) ReleaseStats(releaseID string) (ReleaseStats, error) {
	rel, err := s.Catalog.release(releaseID)
	if err != nil {
		return ReleaseStats{}, err
	}
	out := ReleaseStats{Release: rel}
	for _, id := range rel.SongIDs {
		if song, ok := s.Catalog.Songs[id]; ok {
			out.Tracks = append(out.Tracks, song)
		}
	}
	for _, e := range s.Charts[ChartAlbums].Entries {
		if e.ID == releaseID {
			out.Rank, out.Peak, out.WeeksOn = e.Rank, e.Peak, e.WeeksOn
			break
		}
	}
	return out, nil
}

func (s *State) SubmissionsInOrder() []*Submission {
	out := make([]*Submission, 0, len(s.SubmissionOrder))
	for _, id := range s.SubmissionOrder {
		out = append(out, s.Submissions[id])
	}
	return out
}

func (s *State) ToursInOrder() []*Tour {
	out := make([]*Tour, 0, len(s.TourOrder))
	for _, id := range s.TourOrder {
		out = append(out, s.Tours[id])
	}
	return out
}

func (s *State) CeremoniesInOrder() []*Ceremony {
	out := make([]*Ceremony, 0, len(s.CeremonyOrder))
	for _, id := range s.CeremonyOrder {
		out = append(out, s.Ceremonies[id])
	}
	return out
}
