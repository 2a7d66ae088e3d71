package wellspring_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/wellspring"
)

func TestWeights_SumToOne(t *testing.T) {
	mw := wellspring.CurrentMoodWeights()
	if math.Abs(mw.AbsSum()-1) > 1e-3 {
		t.Errorf("mood weights |sum| = %v, want 1", mw.AbsSum())
	}
	sw := wellspring.CurrentSuccessWeights()
	if math.Abs(sw.Sum()-1) > 1e-3 {
		t.Errorf("success weights sum = %v, want 1", sw.Sum())
	}
}

func TestMoodWeights_PreserveRelativeCoefficients(t *testing.T) {
	mw := wellspring.CurrentMoodWeights()
	if !approx(mw.Positivity/mw.Energy, 0.4/0.3) {
		t.Errorf("positivity/energy = %v, want %v", mw.Positivity/mw.Energy, 0.4/0.3)
	}
	if !approx(mw.Focus, -mw.Stress) {
		t.Errorf("focus %v and stress %v should have equal magnitude", mw.Focus, mw.Stress)
	}
	if mw.Stress >= 0 {
		t.Errorf("stress weight = %v, want negative", mw.Stress)
	}
}

func TestComputeScore_InsufficientHistory(t *testing.T) {
	hist := []wellspring.Entry{
		entry("a", 0, 3, 3, 3, 3),
		entry("b", 24*time.Hour, 4, 4, 4, 2),
	}
	cur := entry("c", 48*time.Hour, 5, 5, 5, 0)

	s, err := wellspring.ComputeScore(&cur, hist, wellspring.ScoreOptions{})
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if s.Mood.Valid || s.Success.Valid || s.Valid() {
		t.Fatal("expected invalid scores with 2 history entries")
	}
	if s.Mood.Value != 0 || s.Success.Value != 0 {
		t.Errorf("values = %v/%v, want 0 when invalid", s.Mood.Value, s.Success.Value)
	}
	if !strings.Contains(s.Mood.Reason, "still building your baseline: need 3 other check-ins") {
		t.Errorf("Mood.Reason = %q", s.Mood.Reason)
	}
	if !strings.Contains(s.Success.Reason, "need 3 other check-ins, have 2") {
		t.Errorf("Success.Reason = %q", s.Success.Reason)
	}
}

func TestComputeScore_HistoryIncludesLaterEntries(t *testing.T) {
	cur := entry("c", 0, 5, 5, 5, 0)
	later := []wellspring.Entry{
		cur,
		entry("a", 24*time.Hour, 3, 3, 3, 3),
		entry("b", 48*time.Hour, 2, 2, 2, 4),
		entry("d", 72*time.Hour, 1, 1, 1, 5),
	}

	s, err := wellspring.ComputeScore(&cur, later, wellspring.ScoreOptions{})
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if !s.Mood.Valid {
		t.Fatalf("Mood invalid with 3 later check-ins: %q", s.Mood.Reason)
	}
	if s.Mood.Samples != 3 {
		t.Errorf("Samples = %d, want 3", s.Mood.Samples)
	}
	if s.Mood.Value <= 0 {
		t.Errorf("Mood.Value = %v, want positive for a best-ever check-in", s.Mood.Value)
	}
}

func TestComputeScore_InvalidCurrent(t *testing.T) {
	hist := dailyEntries(5)

	bad := entry("x", 0, 6, 3, 3, 3)
	_, err := wellspring.ComputeScore(&bad, hist, wellspring.ScoreOptions{})
	if !errors.Is(err, wellspring.ErrInvalidEntry) {
		t.Errorf("out of range: err = %v, want ErrInvalidEntry", err)
	}
	var ee *wellspring.EntryError
	if !errors.As(err, &ee) || ee.Field != "positivity" {
		t.Errorf("err = %#v, want EntryError on positivity", err)
	}

	nan := entry("y", 0, math.NaN(), 3, 3, 3)
	_, err = wellspring.ComputeScore(&nan, hist, wellspring.ScoreOptions{})
	if !errors.Is(err, wellspring.ErrNonFinite) {
		t.Errorf("NaN: err = %v, want ErrNonFinite", err)
	}

	tod := entry("z", 0, 3, 3, 3, 3)
	tod.TimeOfDay = "brunch"
	_, err = wellspring.ComputeScore(&tod, hist, wellspring.ScoreOptions{})
	if !errors.Is(err, wellspring.ErrInvalidTimeOfDay) {
		t.Errorf("bucket: err = %v, want ErrInvalidTimeOfDay", err)
	}
}

func TestComputeScore_ExcludesInvalidHistory(t *testing.T) {
	hist := []wellspring.Entry{
		entry("a", 0, 1, 1, 1, 1),
		entry("b", time.Hour, 2, 2, 2, 2),
		entry("c", 2*time.Hour, 3, 3, 3, 3),
		entry("bad", 3*time.Hour, 9, 9, 9, 9),
	}
	cur := entry("cur", 4*time.Hour, 4, 4, 4, 4)

	s, err := wellspring.ComputeScore(&cur, hist, wellspring.ScoreOptions{})
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if s.Mood.Samples != 3 {
		t.Errorf("Samples = %d, want 3", s.Mood.Samples)
	}
	if !s.Mood.Valid {
		t.Error("Mood.Valid = false, want true")
	}
	if math.IsNaN(s.Mood.Value) {
		t.Error("Mood.Value is NaN")
	}
}

func TestComputeScore_MoodDirection(t *testing.T) {
	hist := dailyEntries(10)

	good := entry("good", 30*24*time.Hour, 5, 5, 5, 0)
	bad := entry("bad", 30*24*time.Hour, 0, 0, 0, 5)

	gs, err := wellspring.ComputeScore(&good, hist, wellspring.ScoreOptions{})
	if err != nil {
		t.Fatal(err)
	}
	bs, err := wellspring.ComputeScore(&bad, hist, wellspring.ScoreOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if gs.Mood.Value <= 0 {
		t.Errorf("good mood composite = %v, want > 0", gs.Mood.Value)
	}
	if bs.Mood.Value >= 0 {
		t.Errorf("bad mood composite = %v, want < 0", bs.Mood.Value)
	}

	stressed := entry("stressed", 30*24*time.Hour, 3, 3, 3, 5)
	calm := entry("calm", 30*24*time.Hour, 3, 3, 3, 0)
	ss, _ := wellspring.ComputeScore(&stressed, hist, wellspring.ScoreOptions{})
	cs, _ := wellspring.ComputeScore(&calm, hist, wellspring.ScoreOptions{})
	if ss.Mood.Value >= cs.Mood.Value {
		t.Errorf("stress should lower the composite: stressed %v, calm %v", ss.Mood.Value, cs.Mood.Value)
	}
}

func TestComputeScore_MatchesWeightedZScores(t *testing.T) {
	hist := dailyEntries(5)
	cur := entry("cur", 10*24*time.Hour, 4, 2, 3, 1)

	s, err := wellspring.ComputeScore(&cur, hist, wellspring.ScoreOptions{})
	if err != nil {
		t.Fatal(err)
	}
	w := wellspring.CurrentMoodWeights()
	want := w.Positivity*s.Mood.Positivity.ZScore +
		w.Energy*s.Mood.Energy.ZScore +
		w.Focus*s.Mood.Focus.ZScore +
		w.Stress*s.Mood.Stress.ZScore
	if !approx(s.Mood.Value, want) {
		t.Errorf("Mood.Value = %v, want %v", s.Mood.Value, want)
	}

	sw := wellspring.CurrentSuccessWeights()
	wantDSS := sw.Learning*s.Success.LearningMomentum.ZScore +
		sw.Recovery*s.Success.RecoveryIndex.ZScore +
		sw.Connection*s.Success.Connection.ZScore
	if !approx(s.Success.Value, wantDSS) {
		t.Errorf("Success.Value = %v, want %v", s.Success.Value, wantDSS)
	}
}

func TestComputeScore_EmptyIDKeepsEmpty(t *testing.T) {
	hist := dailyEntries(4)
	cur := entry("", 10*24*time.Hour, 3, 3, 3, 3)

	s, err := wellspring.ComputeScore(&cur, hist, wellspring.ScoreOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if s.EntryID != "" {
		t.Errorf("EntryID = %q, want empty", s.EntryID)
	}
	if s.Mood.Samples != 4 {
		t.Errorf("Samples = %d, want 4", s.Mood.Samples)
	}
}

func TestComputeScore_SameTimeOfDay(t *testing.T) {
	var all []wellspring.Entry
	for i := 0; i < 3; i++ {
		all = append(all, entry("m"+string(rune('a'+i)), time.Duration(i)*24*time.Hour, float64(i+1), 2, 2, 2))
		all = append(all, entry("e"+string(rune('a'+i)), time.Duration(i)*24*time.Hour+10*time.Hour, float64(i+1), 2, 2, 2))
	}
	cur := entry("cur", 5*24*time.Hour, 4, 2, 2, 2)
	if cur.TimeOfDay != wellspring.TimeMorning || all[1].TimeOfDay != wellspring.TimeEvening {
		t.Fatalf("fixture buckets: %s, %s", cur.TimeOfDay, all[1].TimeOfDay)
	}

	s, err := wellspring.ComputeScore(&cur, all, wellspring.ScoreOptions{SameTimeOfDay: true})
	if err != nil {
		t.Fatal(err)
	}
	if s.Mood.Samples != 3 {
		t.Errorf("mood Samples = %d, want 3 morning entries", s.Mood.Samples)
	}
	if s.Success.Samples != 6 {
		t.Errorf("success Samples = %d, want all 6 entries", s.Success.Samples)
	}
}

func TestLearningMomentumAndRecoveryIndex(t *testing.T) {
	e := entry("a", 0, 3, 3, 3, 3)
	if got := wellspring.LearningMomentum(&e); got != 0 {
		t.Errorf("LearningMomentum(empty) = %v, want 0", got)
	}
	if got := wellspring.RecoveryIndex(&e); got != 0 {
		t.Errorf("RecoveryIndex(empty) = %v, want 0", got)
	}

	e.FocusMinutes = ptrF(30)
	e.TasksCompleted = ptrI(2)
	e.SleepHours = ptrF(7)
	e.RecoveryAction = ptrB(true)
	if got := wellspring.LearningMomentum(&e); got != 50 {
		t.Errorf("LearningMomentum = %v, want 50", got)
	}
	if got := wellspring.RecoveryIndex(&e); got != 8 {
		t.Errorf("RecoveryIndex = %v, want 8", got)
	}
}

func TestScoreAll_ConnectionTrailingAverage(t *testing.T) {
	var all []wellspring.Entry
	for i := 0; i < 8; i++ {
		e := entry(string(rune('a'+i)), time.Duration(i)*24*time.Hour, 3, 3, 3, 3)
		e.SocialInteractions = ptrI(i)
		all = append(all, e)
	}

	scores := wellspring.ScoreAll(all, wellspring.ScoreOptions{})
	if len(scores) != 8 {
		t.Fatalf("len = %d, want 8", len(scores))
	}
	// Last entry averages entries 1..7.
	if got := scores[7].Success.Connection.Raw; !approx(got, 4) {
		t.Errorf("Connection.Raw = %v, want 4", got)
	}
	// First entry only sees itself.
	if got := scores[0].Success.Connection.Raw; got != 0 {
		t.Errorf("first Connection.Raw = %v, want 0", got)
	}

	all[3].SocialInteractions = nil
	scores = wellspring.ScoreAll(all, wellspring.ScoreOptions{})
	if got := scores[7].Success.Connection.Raw; !approx(got, 25.0/6) {
		t.Errorf("Connection.Raw with a gap = %v, want %v", got, 25.0/6)
	}
}

func TestScoreAll_OrdersByTimestamp(t *testing.T) {
	all := []wellspring.Entry{
		entry("late", 48*time.Hour, 3, 3, 3, 3),
		entry("early", 0, 3, 3, 3, 3),
		entry("mid", 24*time.Hour, 3, 3, 3, 3),
	}
	scores := wellspring.ScoreAll(all, wellspring.ScoreOptions{})
	got := []string{scores[0].EntryID, scores[1].EntryID, scores[2].EntryID}
	want := []string{"early", "mid", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
