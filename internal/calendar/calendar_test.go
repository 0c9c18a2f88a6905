package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsBusinessDay(t *testing.T) {
	tests := []struct {
		day  time.Time
		want bool
	}{
		{date(2024, time.January, 1), true},  // Monday
		{date(2024, time.January, 5), true},  // Friday
		{date(2024, time.January, 6), false}, // Saturday
		{date(2024, time.January, 7), false}, // Sunday
		{date(2024, time.January, 8), true},  // Monday
	}
	for _, tt := range tests {
		if got := IsBusinessDay(tt.day); got != tt.want {
			t.Errorf("IsBusinessDay(%s) = %v, want %v", tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestAddBusinessDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"zero is identity", date(2024, time.January, 3), 0, date(2024, time.January, 3)},
		{"midweek", date(2024, time.January, 3), 1, date(2024, time.January, 4)},
		{"friday skips weekend", date(2024, time.January, 5), 1, date(2024, time.January, 8)},
		{"saturday start", date(2024, time.January, 6), 1, date(2024, time.January, 8)},
		{"across two weekends", date(2024, time.January, 4), 7, date(2024, time.January, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddBusinessDays(tt.start, tt.n); !got.Equal(tt.want) {
				t.Errorf("AddBusinessDays(%s, %d) = %s, want %s",
					tt.start.Format("2006-01-02"), tt.n,
					got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestSprintWindow(t *testing.T) {
	wsStart := date(2024, time.January, 1)

	tests := []struct {
		sprint    int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{1, date(2024, time.January, 1), date(2024, time.January, 7)},
		{2, date(2024, time.January, 8), date(2024, time.January, 14)},
		{5, date(2024, time.January, 29), date(2024, time.February, 4)},
	}
	for _, tt := range tests {
		start, end := SprintWindow(tt.sprint, wsStart, 7)
		if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
			t.Errorf("SprintWindow(%d) = [%s, %s], want [%s, %s]",
				tt.sprint,
				start.Format("2006-01-02"), end.Format("2006-01-02"),
				tt.wantStart.Format("2006-01-02"), tt.wantEnd.Format("2006-01-02"))
		}
	}
}

func TestCurrentSprintNumber(t *testing.T) {
	wsStart := date(2024, time.January, 1)

	tests := []struct {
		today time.Time
		want  int
	}{
		{date(2024, time.January, 1), 1},
		{date(2024, time.January, 7), 1},
		{date(2024, time.January, 8), 2},
		{date(2024, time.January, 14), 2},
		{date(2024, time.January, 15), 3},
	}
	for _, tt := range tests {
		if got := CurrentSprintNumber(tt.today, wsStart, 7); got != tt.want {
			t.Errorf("CurrentSprintNumber(%s) = %d, want %d",
				tt.today.Format("2006-01-02"), got, tt.want)
		}
	}
}

// Dates before the workspace origin must never resolve to sprint 1; they map
// to zero or negative indices that callers treat as "no active sprint".
func TestCurrentSprintNumberBeforeStart(t *testing.T) {
	wsStart := date(2024, time.January, 1)

	tests := []struct {
		today time.Time
		want  int
	}{
		{date(2023, time.December, 31), 0},
		{date(2023, time.December, 25), 0},
		{date(2023, time.December, 24), -1},
		{date(2023, time.December, 18), -1},
	}
	for _, tt := range tests {
		got := CurrentSprintNumber(tt.today, wsStart, 7)
		if got != tt.want {
			t.Errorf("CurrentSprintNumber(%s) = %d, want %d",
				tt.today.Format("2006-01-02"), got, tt.want)
		}
		if got > 0 {
			t.Errorf("pre-start date %s resolved to a positive sprint number %d",
				tt.today.Format("2006-01-02"), got)
		}
	}
}

func TestSprintWindowAndCurrentNumberAgree(t *testing.T) {
	wsStart := date(2024, time.March, 4)
	for day := 0; day < 60; day++ {
		today := wsStart.AddDate(0, 0, day)
		n := CurrentSprintNumber(today, wsStart, 7)
		start, end := SprintWindow(n, wsStart, 7)
		if today.Before(start) || today.After(end) {
			t.Fatalf("day %s: sprint %d window [%s, %s] does not contain it",
				today.Format("2006-01-02"), n,
				start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
	}
}
