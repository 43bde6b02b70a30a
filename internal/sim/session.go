package sim

import (
	"log/slog"
	"sync"
)

// Session serializes all access to one save. State itself is not safe for
// concurrent use; every command and every read goes through the session
// mutex, so a save has exactly one writer at a time.
type Session struct {
	mu     sync.Mutex
	state  *State
	logger *slog.Logger
}

func NewSession(state *State, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{state: state, logger: logger.With("save_id", state.SaveID)}
}

// CommandResult reports what one command produced: the emails it emitted and
// the week the save is sitting at afterwards.
type CommandResult struct {
	Date   GameDate `json:"date"`
	Tick   int64    `json:"tick"`
	Emails []*Email `json:"emails,omitempty"`
}

// run executes one mutation under the session lock. Emails emitted during
// the command are collected and returned; the buffer is cleared first so a
// command only ever sees its own output.
func (sess *Session) run(name string, fn func(*State) error) (CommandResult, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.state.emitted = nil
	err := fn(sess.state)
	res := CommandResult{
		Date:   sess.state.Date,
		Tick:   sess.state.Tick,
		Emails: sess.state.emitted,
	}
	sess.state.emitted = nil
	if err != nil {
		sess.logger.Warn("command rejected", "command", name, "error", err)
		return res, err
	}
	sess.logger.Info("command applied", "command", name, "tick", res.Tick, "emails", len(res.Emails))
	return res, nil
}

// view runs a read under the lock.
func (sess *Session) view(fn func(*State)) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess.state)
}

// MaxAdvanceBatch bounds a single advance command to five game years so one
// request cannot pin the session lock indefinitely.
const MaxAdvanceBatch = 5 * WeeksPerYear

func (sess *Session) AdvanceWeeks(n int) (CommandResult, error) {
	return sess.run("advance", func(s *State) error {
		if n < 1 || n > MaxAdvanceBatch {
			return ErrInvalidWeeks
		}
		for i := 0; i < n; i++ {
			s.AdvanceWeek()
		}
		return nil
	})
}

func (sess *Session) RecordSong(title, genre string) (*Song, CommandResult, error) {
	var song *Song
	res, err := sess.run("record_song", func(s *State) error {
		var err error
		song, err = s.RecordSong(title, genre)
		return err
	})
	return song, res, err
}

func (sess *Session) AssembleRelease(title string, kind ReleaseKind, songIDs []string) (*Release, CommandResult, error) {
	var rel *Release
	res, err := sess.run("assemble_release", func(s *State) error {
		var err error
		rel, err = s.AssembleRelease(title, kind, songIDs)
		return err
	})
	return rel, res, err
}

func (sess *Session) PlanRollout(submissionID string, projectDate GameDate, singles []SinglePlan) (CommandResult, error) {
	return sess.run("plan_rollout", func(s *State) error {
		return s.PlanRollout(submissionID, projectDate, singles)
	})
}

func (sess *Session) SpendPromo(submissionID string, action PromoAction, songID string) (*Submission, CommandResult, error) {
	var sub *Submission
	res, err := sess.run("spend_promo", func(s *State) error {
		var err error
		sub, err = s.SpendPromo(submissionID, action, songID)
		return err
	})
	return sub, res, err
}

func (sess *Session) AcceptOffer(offerID string) (CommandResult, error) {
	return sess.run("accept_offer", func(s *State) error { return s.AcceptOffer(offerID) })
}

func (sess *Session) DeclineOffer(offerID string) (CommandResult, error) {
	return sess.run("decline_offer", func(s *State) error { return s.DeclineOffer(offerID) })
}

func (sess *Session) AnswerQuestion(offerID, text string) (CommandResult, error) {
	return sess.run("answer_question", func(s *State) error { return s.AnswerQuestion(offerID, text) })
}

func (sess *Session) SubmitAward(award AwardKind, entries []SubmittedEntry) (CommandResult, error) {
	return sess.run("submit_award", func(s *State) error { return s.SubmitAward(award, entries) })
}

func (sess *Session) PlanTour(name string, venues []Venue) (*Tour, CommandResult, error) {
	var tour *Tour
	res, err := sess.run("plan_tour", func(s *State) error {
		var err error
		tour, err = s.PlanTour(name, venues)
		return err
	})
	return tour, res, err
}

func (sess *Session) StartTour(tourID string) (CommandResult, error) {
	return sess.run("start_tour", func(s *State) error { return s.StartTour(tourID) })
}

func (sess *Session) MarkEmailRead(emailID string) (CommandResult, error) {
	return sess.run("mark_email_read", func(s *State) error { return s.MarkEmailRead(emailID) })
}

func (sess *Session) Summary() Summary {
	var out Summary
	sess.view(func(s *State) { out = s.Summarize() })
	return out
}

func (sess *Session) Chart(kind ChartKind) ChartSnapshot {
	var out ChartSnapshot
	sess.view(func(s *State) { out = s.Chart(kind) })
	return out
}

func (sess *Session) Inbox() []*Email {
	var out []*Email
	sess.view(func(s *State) { out = s.InboxView() })
	return out
}

func (sess *Session) Offers() []OfferView {
	var out []OfferView
	sess.view(func(s *State) { out = s.PendingOffers() })
	return out
}

func (sess *Session) SongStats(songID string) (SongStats, error) {
	var (
		out SongStats
		err error
	)
	sess.view(func(s *State) { out, err = s.SongStats(songID) })
	return out, err
}

func (sess *Session) ReleaseStats(releaseID string) (ReleaseStats, error) {
	var (
		out ReleaseStats
		err error
	)
	sess.view(func(s *State) { out, err = s.ReleaseStats(releaseID) })
	return out, err
}

func (sess *Session) Submissions() []*Submission {
	var out []*Submission
	sess.view(func(s *State) { out = s.SubmissionsInOrder() })
	return out
}

func (sess *Session) Tours() []*Tour {
	var out []*Tour
	sess.view(func(s *State) { out = s.ToursInOrder() })
	return out
}

func (sess *Session) Ceremonies() []*Ceremony {
	var out []*Ceremony
	sess.view(func(s *State) { out = s.CeremoniesInOrder() })
	return out
}

func (sess *Session) Songs() []*Song {
	var out []*Song
	sess.view(func(s *State) { out = s.Catalog.songsInOrder() })
	return out
}

func (sess *Session) Releases() []*Release {
	var out []*Release
	sess.view(func(s *State) { out = s.Catalog.releasesInOrder() })
	return out
}

func (sess *Session) Snapshot() ([]byte, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state.Snapshot()
}
