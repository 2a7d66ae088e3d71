package wellspring_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/hyperengineering/wellspring"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) // Monday

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }
func ptrB(v bool) *bool       { return &v }

// entry builds a valid morning entry with the given mood at baseTime+offset.
func entry(id string, offset time.Duration, pos, eng, foc, str float64, tags ...string) wellspring.Entry {
	ts := baseTime.Add(offset)
	return wellspring.Entry{
		ID:        id,
		Timestamp: ts,
		TimeOfDay: wellspring.TimeOfDayAt(ts),
		Mood:      wellspring.Mood{Positivity: pos, Energy: eng, Focus: foc, Stress: str},
		Tags:      tags,
	}
}

// dailyEntries returns n entries one day apart with mood cycling through a
// fixed pattern so every baseline has variance.
func dailyEntries(n int) []wellspring.Entry {
	pattern := []float64{1, 2, 3, 4, 5}
	out := make([]wellspring.Entry, n)
	for i := 0; i < n; i++ {
		v := pattern[i%len(pattern)]
		e := entry(fmt.Sprintf("e%02d", i), time.Duration(i)*24*time.Hour, v, v, v, 5-v)
		e.FocusMinutes = ptrF(30 * v)
		e.TasksCompleted = ptrI(int(v))
		e.SleepHours = ptrF(5 + v/2)
		e.RecoveryAction = ptrB(i%2 == 0)
		e.SocialInteractions = ptrI(int(v) % 4)
		out[i] = e
	}
	return out
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func openStore(t *testing.T) *wellspring.Store {
	t.Helper()
	s, err := wellspring.NewStore(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
