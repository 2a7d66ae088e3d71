package wellspring_test

import (
	"math"
	"testing"
	"time"

	"github.com/hyperengineering/wellspring"
)

func daysAgo(now time.Time, days ...int) []wellspring.Entry {
	out := make([]wellspring.Entry, len(days))
	for i, d := range days {
		out[i] = wellspring.Entry{
			ID:        "d" + string(rune('a'+i)),
			Timestamp: now.AddDate(0, 0, -d),
			TimeOfDay: wellspring.TimeMorning,
		}
	}
	return out
}

func TestCalculateStreak(t *testing.T) {
	now := baseTime.Add(3 * time.Hour)

	tests := []struct {
		name    string
		days    []int
		current int
		longest int
		active  bool
	}{
		{"empty", nil, 0, 0, false},
		{"today only", []int{0}, 1, 1, true},
		{"three consecutive ending today", []int{0, 1, 2}, 3, 3, true},
		{"yesterday keeps streak alive", []int{1, 2}, 2, 2, false},
		{"gap of two days breaks streak", []int{2, 3}, 0, 2, false},
		{"longest survives a break", []int{0, 5, 6, 7, 8}, 1, 4, true},
		{"duplicate day counted once", []int{0, 0, 1}, 2, 2, true},
		{"unordered input", []int{2, 0, 1}, 3, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := wellspring.CalculateStreak(daysAgo(now, tt.days...), now, time.UTC)
			if s.Current != tt.current {
				t.Errorf("Current = %d, want %d", s.Current, tt.current)
			}
			if s.Longest != tt.longest {
				t.Errorf("Longest = %d, want %d", s.Longest, tt.longest)
			}
			if s.IsActive != tt.active {
				t.Errorf("IsActive = %v, want %v", s.IsActive, tt.active)
			}
			if s.Current > s.Longest {
				t.Errorf("Current %d exceeds Longest %d", s.Current, s.Longest)
			}
		})
	}
}

func TestCalculateStreak_LastEntryAndDays(t *testing.T) {
	now := baseTime
	s := wellspring.CalculateStreak(daysAgo(now, 0, 0, 3), now, time.UTC)
	if s.Days != 2 {
		t.Errorf("Days = %d, want 2", s.Days)
	}
	if s.LastEntry == nil || !s.LastEntry.Equal(now) {
		t.Errorf("LastEntry = %v, want %v", s.LastEntry, now)
	}
}

func TestCalculateStreak_UsesLocation(t *testing.T) {
	// 02:00 UTC Tuesday is still Monday evening five hours west.
	west := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)
	entries := []wellspring.Entry{
		{ID: "a", Timestamp: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), TimeOfDay: wellspring.TimeAfternoon},
		{ID: "b", Timestamp: now, TimeOfDay: wellspring.TimeNight},
	}

	utc := wellspring.CalculateStreak(entries, now, time.UTC)
	if utc.Current != 2 {
		t.Errorf("UTC Current = %d, want 2", utc.Current)
	}

	local := wellspring.CalculateStreak(entries, now, west)
	if local.Current != 1 || local.Days != 1 {
		t.Errorf("west Current=%d Days=%d, want 1/1", local.Current, local.Days)
	}
	if !local.IsActive {
		t.Error("west IsActive = false, want true")
	}
}

func TestCalculateStreak_IgnoresMalformedEntries(t *testing.T) {
	now := baseTime.Add(3 * time.Hour)

	bad := daysAgo(now, 0, 1, 2)
	bad[0].TimeOfDay = "bogus"
	bad[1].Mood.Positivity = 99
	bad[2].Mood.Stress = math.NaN()

	s := wellspring.CalculateStreak(bad, now, time.UTC)
	if s.Current != 0 || s.Longest != 0 || s.IsActive {
		t.Errorf("streak = %+v, want zero from malformed entries", s)
	}

	// One valid entry today among the malformed ones counts alone.
	mixed := append(bad, daysAgo(now, 0)...)
	s = wellspring.CalculateStreak(mixed, now, time.UTC)
	if s.Current != 1 || s.Longest != 1 || !s.IsActive {
		t.Errorf("streak = %+v, want current 1 longest 1 active", s)
	}
}
