package sim

import (
	"errors"
	"testing"
)

func TestValidatePlan(t *testing.T) {
	now := GameDate{Week: 10, Year: 2024}
	tests := []struct {
		name    string
		project GameDate
		singles []GameDate
		wantErr error
	}{
		{
			name:    "valid staggered rollout",
			project: GameDate{Week: 16, Year: 2024},
			singles: []GameDate{{Week: 12, Year: 2024}, {Week: 14, Year: 2024}},
		},
		{
			name:    "project not in the future",
			project: GameDate{Week: 10, Year: 2024},
			wantErr: ErrDateNotFuture,
		},
		{
			name:    "single in the past",
			project: GameDate{Week: 16, Year: 2024},
			singles: []GameDate{{Week: 9, Year: 2024}},
			wantErr: ErrDateNotFuture,
		},
		{
			name:    "single on project day",
			project: GameDate{Week: 16, Year: 2024},
			singles: []GameDate{{Week: 16, Year: 2024}},
			wantErr: ErrSingleAfterProject,
		},
		{
			name:    "single after project",
			project: GameDate{Week: 16, Year: 2024},
			singles: []GameDate{{Week: 20, Year: 2024}},
			wantErr: ErrSingleAfterProject,
		},
		{
			name:    "two singles same week",
			project: GameDate{Week: 16, Year: 2024},
			singles: []GameDate{{Week: 12, Year: 2024}, {Week: 12, Year: 2024}},
			wantErr: ErrDateClash,
		},
		{
			name:    "project across year boundary",
			project: GameDate{Week: 2, Year: 2025},
			singles: []GameDate{{Week: 51, Year: 2024}},
		},
		{
			name:    "project week above calendar",
			project: GameDate{Week: 400, Year: 2024},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "project week zero",
			project: GameDate{Week: 0, Year: 2025},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "single week above calendar",
			project: GameDate{Week: 16, Year: 2024},
			singles: []GameDate{{Week: 53, Year: 2024}},
			wantErr: ErrInvalidDate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePlan(now, tt.project, tt.singles)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("validatePlan() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func rolloutFixture(t *testing.T) (*State, *Release, *Submission, []*Song) {
	t.Helper()
	s := NewState("save-1", "Tester", 42, DefaultBalance())
	var songs []*Song
	for _, title := range []string{"Opener", "Deep Cut", "Closer"} {
		song, err := s.RecordSong(title, "pop")
		if err != nil {
			t.Fatalf("record song: %v", err)
		}
		songs = append(songs, song)
	}
	rel, err := s.AssembleRelease("First Light", ReleaseAlbum,
		[]string{songs[0].ID, songs[1].ID, songs[2].ID})
	if err != nil {
		t.Fatalf("assemble release: %v", err)
	}
	sub := s.createSubmission(rel.ID, 500_000)
	return s, rel, sub, songs
}

func TestPlanRolloutRejectsBeforeMutating(t *testing.T) {
	s, _, sub, songs := rolloutFixture(t)

	err := s.PlanRollout(sub.ID, s.Date.AddWeeks(4), []SinglePlan{
		{SongID: songs[0].ID, Date: s.Date.AddWeeks(2)},
		{SongID: songs[1].ID, Date: s.Date.AddWeeks(2)},
	})
	if !errors.Is(err, ErrDateClash) {
		t.Fatalf("expected ErrDateClash, got %v", err)
	}
	if len(s.Schedule) != 0 {
		t.Fatalf("rejected plan queued %d events", len(s.Schedule))
	}
}

func TestPlanRolloutRejectsOutOfCalendarDates(t *testing.T) {
	s, _, sub, songs := rolloutFixture(t)

	err := s.PlanRollout(sub.ID, GameDate{Week: 400, Year: s.Date.Year}, nil)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for project week 400, got %v", err)
	}
	err = s.PlanRollout(sub.ID, s.Date.AddWeeks(4), []SinglePlan{
		{SongID: songs[0].ID, Date: GameDate{Week: 0, Year: s.Date.Year + 1}},
	})
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for single week 0, got %v", err)
	}
	if len(s.Schedule) != 0 {
		t.Fatalf("rejected plan queued %d events", len(s.Schedule))
	}
}

func TestRolloutAppliesOnDueDateExactlyOnce(t *testing.T) {
	s, rel, sub, songs := rolloutFixture(t)

	err := s.PlanRollout(sub.ID, s.Date.AddWeeks(3), []SinglePlan{
		{SongID: songs[0].ID, Date: s.Date.AddWeeks(1)},
	})
	if err != nil {
		t.Fatalf("plan rollout: %v", err)
	}
	if len(s.Schedule) != 2 {
		t.Fatalf("expected 2 queued events, got %d", len(s.Schedule))
	}

	s.AdvanceWeek()
	singleDay := s.Date
	if !songs[0].Released {
		t.Fatal("single not released on its date")
	}
	if rel.Released {
		t.Fatal("project released early")
	}

	s.AdvanceWeek()
	if rel.Released {
		t.Fatal("project released a week early")
	}

	s.AdvanceWeek()
	if !rel.Released {
		t.Fatal("project not released on its date")
	}
	for _, song := range songs {
		if !song.Released {
			t.Fatalf("track %s not released with the project", song.Title)
		}
	}
	// The single keeps its own earlier release date.
	if !songs[0].ReleasedOn.Equal(singleDay) {
		t.Fatalf("single release date rewritten: %v", songs[0].ReleasedOn)
	}
	if len(s.Schedule) != 0 {
		t.Fatalf("consumed events still queued: %d", len(s.Schedule))
	}
}

func TestPlanRolloutRejectsForeignSong(t *testing.T) {
	s, _, sub, _ := rolloutFixture(t)
	stray, err := s.RecordSong("Stray", "rock")
	if err != nil {
		t.Fatalf("record song: %v", err)
	}
	err = s.PlanRollout(sub.ID, s.Date.AddWeeks(3), []SinglePlan{
		{SongID: stray.ID, Date: s.Date.AddWeeks(1)},
	})
	if !errors.Is(err, ErrSongTaken) {
		t.Fatalf("expected ErrSongTaken, got %v", err)
	}
}
