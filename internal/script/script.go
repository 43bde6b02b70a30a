package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"encore/internal/sim"
)

// Step is one scripted career action, applied before the named week is
// simulated. Steps reference the newest matching entities rather than ids,
// so the same script replays against any seed.
type Step struct {
	Week   int    `yaml:"week" json:"week"` // absolute tick number, 1 = first simulated week
	Action string `yaml:"action" json:"action"`

	Title  string `yaml:"title,omitempty" json:"title,omitempty"`
	Genre  string `yaml:"genre,omitempty" json:"genre,omitempty"`
	Kind   string `yaml:"kind,omitempty" json:"kind,omitempty"`
	Tracks int    `yaml:"tracks,omitempty" json:"tracks,omitempty"`

	LeadWeeks int    `yaml:"lead_weeks,omitempty" json:"lead_weeks,omitempty"` // weeks until the project drops
	Singles   int    `yaml:"singles,omitempty" json:"singles,omitempty"`
	Promo     string `yaml:"promo,omitempty" json:"promo,omitempty"`
}

const (
	ActionRecordSong   = "record_song"
	ActionAssemble     = "assemble_release"
	ActionPlanRollout  = "plan_rollout"
	ActionPromo        = "promo"
	ActionAcceptOffers = "accept_offers"
)

func Load(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var steps []Step
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	for i, st := range steps {
		if st.Week < 1 {
			return nil, fmt.Errorf("script step %d: week must be >= 1", i+1)
		}
	}
	return steps, nil
}

// Default is a two-year debut career: an album cycle with two lead singles,
// promo spend, and standing accept-everything PR.
func Default() []Step {
	return []Step{
		{Week: 1, Action: ActionRecordSong, Title: "Opening Act", Genre: "pop"},
		{Week: 2, Action: ActionRecordSong, Title: "Harder Lines", Genre: "pop"},
		{Week: 3, Action: ActionRecordSong, Title: "Afterparty", Genre: "pop"},
		{Week: 4, Action: ActionRecordSong, Title: "Comedown", Genre: "pop"},
		{Week: 5, Action: ActionAssemble, Title: "Debut", Kind: "album", Tracks: 4},
		{Week: 6, Action: ActionPlanRollout, LeadWeeks: 8, Singles: 2},
		{Week: 7, Action: ActionPromo, Promo: "countdown_page"},
		{Week: 8, Action: ActionPromo, Promo: "press_run"},
		{Week: 15, Action: ActionPromo, Promo: "tv_spot"},
	}
}

// Runner replays script steps against a live state. Offers are accepted on
// every tick when the standing flag is set, which keeps the pipeline busy
// without per-offer scripting.
type Runner struct {
	state        *sim.State
	acceptOffers bool
}

func NewRunner(state *sim.State) *Runner {
	return &Runner{state: state, acceptOffers: true}
}

// Apply runs every step scheduled for the given week. Step errors are
// returned with their position so a broken script fails loudly instead of
// silently desyncing the run.
func (r *Runner) Apply(week int, steps []Step) error {
	// Offers from the previous tick resolve before this week's steps, so a
	// step can rely on e.g. a label submission it just triggered.
	if r.acceptOffers {
		r.acceptPending()
	}
	for i, st := range steps {
		if st.Week != week {
			continue
		}
		if err := r.applyStep(st); err != nil {
			return fmt.Errorf("script step %d (%s, week %d): %w", i+1, st.Action, st.Week, err)
		}
	}
	return nil
}

func (r *Runner) applyStep(st Step) error {
	s := r.state
	switch st.Action {
	case ActionRecordSong:
		_, err := s.RecordSong(st.Title, st.Genre)
		return err

	case ActionAssemble:
		tracks := st.Tracks
		if tracks < 1 {
			tracks = 1
		}
		var ids []string
		for _, song := range s.Catalog.UnassignedSongs() {
			ids = append(ids, song.ID)
			if len(ids) == tracks {
				break
			}
		}
		if len(ids) == 0 {
			return sim.ErrEmptyTracklist
		}
		_, err := s.AssembleRelease(st.Title, sim.ReleaseKind(st.Kind), ids)
		return err

	case ActionPlanRollout:
		sub := r.newestSubmission()
		if sub == nil {
			return sim.ErrSubmissionNotFound
		}
		lead := st.LeadWeeks
		if lead < 2 {
			lead = 2
		}
		var singles []sim.SinglePlan
		for i := 0; i < st.Singles && i < len(sub.RecommendedSingles) && i < lead-1; i++ {
			singles = append(singles, sim.SinglePlan{
				SongID: sub.RecommendedSingles[i],
				Date:   s.Date.AddWeeks(i + 1),
			})
		}
		return s.PlanRollout(sub.ID, s.Date.AddWeeks(lead), singles)

	case ActionPromo:
		sub := r.newestSubmission()
		if sub == nil {
			return sim.ErrSubmissionNotFound
		}
		songID := ""
		action := sim.PromoAction(st.Promo)
		if action == sim.PromoGenius || action == sim.PromoFallon {
			if len(sub.RecommendedSingles) > 0 {
				songID = sub.RecommendedSingles[0]
			}
		}
		_, err := s.SpendPromo(sub.ID, action, songID)
		return err

	case ActionAcceptOffers:
		r.acceptPending()
		return nil

	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
}

func (r *Runner) newestSubmission() *sim.Submission {
	subs := r.state.SubmissionsInOrder()
	if len(subs) == 0 {
		return nil
	}
	return subs[len(subs)-1]
}

// acceptPending resolves everything resolvable: plain accepts for most
// kinds, a stock quote for press questions, and full-category entries when
// an award window opens.
func (r *Runner) acceptPending() {
	s := r.state
	for _, v := range s.PendingOffers() {
		switch o := v.Offer.(type) {
		case *sim.PopBaseQuestion:
			_ = s.AnswerQuestion(o.Meta().ID, "All love. Album soon.")
		case *sim.AwardInvite:
			var entries []sim.SubmittedEntry
			for _, cat := range s.EligibleCategories(o.Award, o.Year) {
				itemID := r.entryFor(cat)
				if itemID == "" && cat != sim.CatBestNewArtist {
					continue
				}
				entries = append(entries, sim.SubmittedEntry{Category: cat, ItemID: itemID})
			}
			if len(entries) > 0 {
				_ = s.SubmitAward(o.Award, entries)
			}
		default:
			_ = s.AcceptOffer(o.Meta().ID)
		}
	}
}

func (r *Runner) entryFor(cat sim.AwardCategory) string {
	s := r.state
	if cat == sim.CatBestNewArtist {
		return ""
	}
	if cat == sim.CatAlbumOfTheYear {
		rels := s.Catalog.ReleasedProjects()
		if len(rels) > 0 {
			return rels[len(rels)-1].ID
		}
		return ""
	}
	best := ""
	quality := -1
	for _, song := range s.Catalog.ReleasedSongs() {
		if song.Quality > quality {
			best, quality = song.ID, song.Quality
		}
	}
	return best
}
