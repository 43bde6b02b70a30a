package sim

import "sort"

type ScheduleKind string

const (
	ScheduleSingle    ScheduleKind = "single_release"
	ScheduleProject   ScheduleKind = "project_release"
	ScheduleTaping    ScheduleKind = "tv_taping"
	ScheduleRedCarpet ScheduleKind = "red_carpet"
)

// ScheduledEvent holds a weak reference (ids only) to catalog entities so the
// queue survives serialization without embedding object graphs.
type ScheduledEvent struct {
	ID           string       `json:"id"`
	Kind         ScheduleKind `json:"kind"`
	TargetID     string       `json:"target_id,omitempty"`
	SubmissionID string       `json:"submission_id,omitempty"`
	Date         GameDate     `json:"date"`
	Seq          int64        `json:"seq"` // insertion order, for stable due ordering
}

func (s *State) pushEvent(ev ScheduledEvent) {
	s.ScheduleSeq++
	ev.Seq = s.ScheduleSeq
	s.Schedule = append(s.Schedule, ev)
}

// applyDueEvents consumes every entry whose date has arrived, exactly once,
// in date order then insertion order. Entries are never applied early.
func (s *State) applyDueEvents() {
	var due, rest []ScheduledEvent
	for _, ev := range s.Schedule {
		if !ev.Date.After(s.Date) {
			due = append(due, ev)
		} else {
			rest = append(rest, ev)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].Date.Equal(due[j].Date) {
			return due[i].Date.Before(due[j].Date)
		}
		return due[i].Seq < due[j].Seq
	})
	s.Schedule = rest

	for _, ev := range due {
		switch ev.Kind {
		case ScheduleSingle:
			s.applySingleRelease(ev)
		case ScheduleProject:
			s.applyProjectRelease(ev)
		case ScheduleTaping:
			s.applyTaping(ev)
		case ScheduleRedCarpet:
			s.applyRedCarpet(ev)
		}
	}
}

func (s *State) applySingleRelease(ev ScheduledEvent) {
	song, ok := s.Catalog.Songs[ev.TargetID]
	if !ok || song.Released {
		return
	}
	song.Released = true
	song.ReleasedOn = s.Date
	s.Boosts = append(s.Boosts, Boost{TargetID: song.ID, Amount: s.Balance.ReleaseHype * 0.3, WeeksLeft: 2, Source: "single_drop"})
	s.emitEmail("", "", "Release Desk", "Single out now: "+song.Title, "Your single is live on all platforms.")
}

func (s *State) applyProjectRelease(ev ScheduledEvent) {
	rel, ok := s.Catalog.Releases[ev.TargetID]
	if !ok || rel.Released {
		return
	}
	rel.Released = true
	rel.ReleasedOn = s.Date
	for _, id := range rel.SongIDs {
		if song, ok := s.Catalog.Songs[id]; ok && !song.Released {
			song.Released = true
			song.ReleasedOn = s.Date
		}
	}
	s.Boosts = append(s.Boosts, Boost{TargetID: rel.ID, Amount: s.Balance.ReleaseHype * 0.4, WeeksLeft: 2, Source: "project_drop"})
	s.emitEmail("", "", "Release Desk", "Out now: "+rel.Title, "The full project is live on all platforms.")
}

func (s *State) applyTaping(ev ScheduledEvent) {
	song, ok := s.Catalog.Songs[ev.TargetID]
	if !ok {
		return
	}
	s.Videos = append(s.Videos, Video{
		ID:     s.nextID("video"),
		SongID: song.ID,
		Kind:   "fallon_performance",
		Posted: s.Date,
	})
	s.Boosts = append(s.Boosts, Boost{TargetID: song.ID, Amount: s.Balance.FallonBoost, WeeksLeft: 2, Source: "fallon"})
	s.emitEmail("", "", "Late Night", "Your performance aired", "The clip of "+song.Title+" is everywhere this morning.")
}

func (s *State) applyRedCarpet(ev ScheduledEvent) {
	s.emitEmail("", "", "Publicist", "Red carpet wrapped", "Best-dressed lists incoming.")
}

// validatePlan enforces the scheduling rules before any state mutation:
// all weeks inside the calendar, all dates strictly future, singles strictly
// before the project, no two releases for the same submission on the same
// date. Dates arrive decoded from the wire, so the week domain is not a given.
func validatePlan(now GameDate, projectDate GameDate, singleDates []GameDate) error {
	if !projectDate.inCalendar() {
		return ErrInvalidDate
	}
	if !projectDate.After(now) {
		return ErrDateNotFuture
	}
	seen := map[int]bool{projectDate.Index(): true}
	for _, d := range singleDates {
		if !d.inCalendar() {
			return ErrInvalidDate
		}
		if !d.After(now) {
			return ErrDateNotFuture
		}
		if !d.Before(projectDate) {
			return ErrSingleAfterProject
		}
		if seen[d.Index()] {
			return ErrDateClash
		}
		seen[d.Index()] = true
	}
	return nil
}
