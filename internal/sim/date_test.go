package sim

import "testing"

func TestGameDateIndexOrdering(t *testing.T) {
	tests := []struct {
		name   string
		a, b   GameDate
		before bool
	}{
		{"same year", GameDate{Week: 3, Year: 2024}, GameDate{Week: 9, Year: 2024}, true},
		{"year boundary", GameDate{Week: 52, Year: 2024}, GameDate{Week: 1, Year: 2025}, true},
		{"equal", GameDate{Week: 10, Year: 2025}, GameDate{Week: 10, Year: 2025}, false},
		{"later year smaller week", GameDate{Week: 50, Year: 2024}, GameDate{Week: 2, Year: 2025}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Before(tt.b); got != tt.before {
				t.Fatalf("Before(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.before)
			}
		})
	}
}

func TestGameDateAddWeeksWraps(t *testing.T) {
	tests := []struct {
		start GameDate
		n     int
		want  GameDate
	}{
		{GameDate{Week: 1, Year: 2024}, 1, GameDate{Week: 2, Year: 2024}},
		{GameDate{Week: 52, Year: 2024}, 1, GameDate{Week: 1, Year: 2025}},
		{GameDate{Week: 50, Year: 2024}, 5, GameDate{Week: 3, Year: 2025}},
		{GameDate{Week: 1, Year: 2024}, 104, GameDate{Week: 1, Year: 2026}},
	}
	for _, tt := range tests {
		if got := tt.start.AddWeeks(tt.n); !got.Equal(tt.want) {
			t.Fatalf("%v.AddWeeks(%d) = %v, want %v", tt.start, tt.n, got, tt.want)
		}
	}
}

func TestNewGameDateRejectsBadWeeks(t *testing.T) {
	if _, err := NewGameDate(0, 2024); err == nil {
		t.Fatal("expected error for week 0")
	}
	if _, err := NewGameDate(53, 2024); err == nil {
		t.Fatal("expected error for week 53")
	}
	if _, err := NewGameDate(26, 2024); err != nil {
		t.Fatalf("unexpected error for valid date: %v", err)
	}
}
