package sim

type TourStatus string

const (
	TourPlanning TourStatus = "planning"
	TourActive   TourStatus = "active"
	TourFinished TourStatus = "finished"
)

type Venue struct {
	Name     string `json:"name"`
	City     string `json:"city"`
	Capacity int64  `json:"capacity"`
	Played   bool   `json:"played"`
}

// Tour progresses one venue per tick while active. Status only ever moves
// forward: planning -> active -> finished.
type Tour struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Venues       []Venue    `json:"venues"`
	Status       TourStatus `json:"status"`
	TicketsSold  int64      `json:"tickets_sold"`
	TotalRevenue int64      `json:"total_revenue"`
}

// Video is a platform clip created by promotional placements and TV spots.
type Video struct {
	ID     string   `json:"id"`
	SongID string   `json:"song_id,omitempty"`
	Kind   string   `json:"kind"`
	Views  int64    `json:"views"`
	Posted GameDate `json:"posted"`
}

// Post is a social/creator-platform entry (interviews, covers, requests).
type Post struct {
	ID     string   `json:"id"`
	Kind   string   `json:"kind"`
	Body   string   `json:"body,omitempty"`
	Posted GameDate `json:"posted"`
}

// starPower scales attendance by the player's best current chart standing;
// an uncharted artist still fills a floor of seats.
func (s *State) starPower() float64 {
	best := 0.0
	for _, e := range s.Charts[ChartHot].Entries {
		if e.Player {
			v := 1 - float64(e.Rank-1)/float64(s.Balance.HotChartSize)
			if v > best {
				best = v
			}
		}
	}
	return 0.15 + 0.85*best
}

func (s *State) tickTours() {
	power := s.starPower()
	for _, id := range s.TourOrder {
		tour := s.Tours[id]
		if tour.Status != TourActive {
			continue
		}
		next := -1
		for i := range tour.Venues {
			if !tour.Venues[i].Played {
				next = i
				break
			}
		}
		if next == -1 {
			tour.Status = TourFinished
			continue
		}
		v := &tour.Venues[next]
		v.Played = true
		sold := int64(float64(v.Capacity) * power)
		tour.TicketsSold += sold
		tour.TotalRevenue += sold * s.Balance.TicketPrice
		if next == len(tour.Venues)-1 {
			tour.Status = TourFinished
			s.emitEmail("", "", "Tour Manager", "Tour wrapped: "+tour.Name,
				"Final night done. Settlements on the way.")
		}
	}
	// Videos trail the songs they promote.
	for i := range s.Videos {
		vid := &s.Videos[i]
		if song, ok := s.Catalog.Songs[vid.SongID]; ok {
			vid.Views += song.Streams / 50
		} else {
			vid.Views += 5_000
		}
	}
}
