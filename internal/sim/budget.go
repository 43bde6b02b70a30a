package sim

// PromoAction identifies one budget-gated promotional action. Costs come from
// Balance so difficulty tiers can retune them without touching call sites.
type PromoAction string

const (
	PromoCountdown PromoAction = "countdown_page"
	PromoGenius    PromoAction = "genius_placement"
	PromoFallon    PromoAction = "fallon_placement"
	PromoPressRun  PromoAction = "press_run"
	PromoTVSpot    PromoAction = "tv_spot"
)

type SpendLine struct {
	Action PromoAction `json:"action"`
	SongID string      `json:"song_id,omitempty"`
	Amount int64       `json:"amount"`
	Date   GameDate    `json:"date"`
}

// Submission is a label-managed release package with its own promotional
// budget. Invariant: 0 <= PromoSpent <= PromoBudget, always.
type Submission struct {
	ID          string `json:"id"`
	ReleaseID   string `json:"release_id"`
	PromoBudget int64  `json:"promo_budget"`
	PromoSpent  int64  `json:"promo_spent"`

	CountdownPage bool   `json:"countdown_page"`
	GeniusSongID  string `json:"genius_song_id,omitempty"`
	FallonSongID  string `json:"fallon_song_id,omitempty"`

	RecommendedSingles []string    `json:"recommended_singles,omitempty"`
	SpendLog           []SpendLine `json:"spend_log,omitempty"`
}

// trySpend is the single check-then-increment gate. It either books the full
// amount or changes nothing.
func (sub *Submission) trySpend(amount int64, action PromoAction, songID string, date GameDate) error {
	if amount < 0 {
		panic("sim: negative promo spend")
	}
	if sub.PromoSpent+amount > sub.PromoBudget {
		return ErrBudgetExceeded
	}
	sub.PromoSpent += amount
	sub.SpendLog = append(sub.SpendLog, SpendLine{Action: action, SongID: songID, Amount: amount, Date: date})
	return nil
}

func (sub *Submission) Remaining() int64 {
	return sub.PromoBudget - sub.PromoSpent
}

func (s *State) submission(id string) (*Submission, error) {
	sub, ok := s.Submissions[id]
	if !ok {
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}

func (s *State) promoCost(action PromoAction) (int64, bool) {
	switch action {
	case PromoCountdown:
		return s.Balance.CountdownCost, true
	case PromoGenius:
		return s.Balance.GeniusCost, true
	case PromoFallon:
		return s.Balance.FallonCost, true
	case PromoPressRun:
		return s.Balance.PressRunCost, true
	case PromoTVSpot:
		return s.Balance.TVSpotCost, true
	}
	return 0, false
}
