package wellspring_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/wellspring"
)

func newTestClient(t *testing.T, now time.Time, mutate ...func(*wellspring.Config)) *wellspring.Client {
	t.Helper()
	t.Setenv("WELLSPRING_PROFILE", "")
	cfg := wellspring.Config{
		LocalPath: filepath.Join(t.TempDir(), "client.db"),
		Location:  "UTC",
		Clock:     func() time.Time { return now },
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := wellspring.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func checkIn(t *testing.T, c *wellspring.Client, ts time.Time, m wellspring.Mood, tags ...string) *wellspring.CheckInResult {
	t.Helper()
	res, err := c.CheckIn(context.Background(), wellspring.CheckInParams{Timestamp: ts, Mood: m, Tags: tags})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	return res
}

func TestClient_New_InvalidConfig(t *testing.T) {
	_, err := wellspring.New(wellspring.Config{LocalPath: filepath.Join(t.TempDir(), "x.db"), Location: "Nowhere/Land"})
	var ve *wellspring.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestClient_CheckIn_DefaultsFromClock(t *testing.T) {
	now := baseTime.Add(10 * time.Hour) // 19:00 UTC
	c := newTestClient(t, now)

	res, err := c.CheckIn(context.Background(), wellspring.CheckInParams{
		Mood:       wellspring.Mood{Positivity: 4, Energy: 3, Focus: 3, Stress: 1},
		Tags:       []string{"Walk"},
		SleepHours: ptrF(7),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Entry.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", res.Entry.Timestamp, now)
	}
	if res.Entry.TimeOfDay != wellspring.TimeEvening {
		t.Errorf("TimeOfDay = %s, want evening", res.Entry.TimeOfDay)
	}
	if res.Entry.ID == "" || len(res.Entry.Tags) != 1 || res.Entry.Tags[0] != "walk" {
		t.Errorf("entry = %+v", res.Entry)
	}
	if res.Score.Mood.Valid {
		t.Error("first check-in should not have a valid baseline")
	}
}

func TestClient_CheckIn_Rejects(t *testing.T) {
	c := newTestClient(t, baseTime)
	_, err := c.CheckIn(context.Background(), wellspring.CheckInParams{Mood: wellspring.Mood{Positivity: 6}})
	if !errors.Is(err, wellspring.ErrInvalidEntry) {
		t.Errorf("err = %v, want ErrInvalidEntry", err)
	}
}

func TestClient_ScoresStreakAndLatest(t *testing.T) {
	now := baseTime.AddDate(0, 0, 4)
	c := newTestClient(t, now)
	ctx := context.Background()

	if _, err := c.LatestScore(ctx, wellspring.ScoreOptions{}); !errors.Is(err, wellspring.ErrNoEntries) {
		t.Errorf("LatestScore on empty = %v, want ErrNoEntries", err)
	}

	var last *wellspring.CheckInResult
	for i := 0; i <= 4; i++ {
		v := float64(i%5 + 1)
		last = checkIn(t, c, baseTime.AddDate(0, 0, i), wellspring.Mood{Positivity: v, Energy: v, Focus: v, Stress: 5 - v})
	}
	if !last.Score.Mood.Valid {
		t.Errorf("fifth check-in mood invalid: %s", last.Score.Mood.Reason)
	}

	latest, err := c.LatestScore(ctx, wellspring.ScoreOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if latest.EntryID != last.Entry.ID || !approx(latest.Mood.Value, last.Score.Mood.Value) {
		t.Errorf("LatestScore = %+v, want entry %s", latest, last.Entry.ID)
	}

	byID, err := c.Score(ctx, last.Entry.ID, wellspring.ScoreOptions{})
	if err != nil || !approx(byID.Mood.Value, latest.Mood.Value) {
		t.Errorf("Score(id) = %+v, %v", byID, err)
	}
	if _, err := c.Score(ctx, "missing", wellspring.ScoreOptions{}); !errors.Is(err, wellspring.ErrNotFound) {
		t.Errorf("Score(missing) err = %v", err)
	}

	scores, err := c.Scores(ctx, wellspring.EntryFilter{Limit: 2}, wellspring.ScoreOptions{})
	if err != nil || len(scores) != 2 {
		t.Fatalf("Scores = %d, %v", len(scores), err)
	}
	if scores[1].EntryID != last.Entry.ID {
		t.Errorf("Scores not oldest first: %v", scores)
	}

	streak, err := c.Streak(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if streak.Current != 5 || !streak.IsActive {
		t.Errorf("streak = %+v, want 5 active", streak)
	}
}

func TestClient_TipsAndFeedback(t *testing.T) {
	c := newTestClient(t, baseTime)
	ctx := context.Background()

	onboarding, err := c.Tips(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(onboarding) != 3 || onboarding[0].Ref != "T1" {
		t.Fatalf("onboarding = %+v", onboarding)
	}
	for _, tip := range onboarding {
		found := false
		for _, cat := range wellspring.OnboardingCategories {
			if tip.Tip.Category == cat {
				found = true
			}
		}
		if !found {
			t.Errorf("%s category %s is not an onboarding category", tip.Tip.ID, tip.Tip.Category)
		}
	}

	checkIn(t, c, baseTime, wellspring.Mood{Positivity: 4, Energy: 4, Focus: 3, Stress: 5})
	tips, err := c.Tips(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if tips[0].Tip.ID != "box-breathing" {
		t.Errorf("top tip = %s, want box-breathing for stress 5", tips[0].Tip.ID)
	}

	prefs, err := c.CompleteTip(ctx, tips[0].Ref)
	if err != nil {
		t.Fatalf("CompleteTip(%s): %v", tips[0].Ref, err)
	}
	if !prefs.IsCompleted("box-breathing") {
		t.Errorf("prefs = %+v", prefs)
	}

	prefs, err = c.ToggleFavorite(ctx, "hydrate")
	if err != nil || !prefs.IsFavorited("hydrate") {
		t.Errorf("ToggleFavorite = %+v, %v", prefs, err)
	}

	if _, err := c.CompleteTip(ctx, "no-such-tip"); !errors.Is(err, wellspring.ErrSessionRefNotFound) {
		t.Errorf("unknown ref err = %v", err)
	}

	prefs, err = c.ClearCompletedTips(ctx)
	if err != nil || len(prefs.Completed) != 0 {
		t.Errorf("ClearCompletedTips = %+v, %v", prefs, err)
	}
}

func TestClient_PreferencesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	cfg := wellspring.Config{LocalPath: path, Location: "UTC", Clock: func() time.Time { return baseTime }}
	t.Setenv("WELLSPRING_PROFILE", "")

	c1, err := wellspring.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c1.CompleteTip(context.Background(), "hydrate"); err != nil {
		t.Fatal(err)
	}
	_ = c1.Close()

	c2, err := wellspring.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()
	if !c2.Recommender().Preferences().IsCompleted("hydrate") {
		t.Error("completed tip lost across reopen")
	}
}

func TestClient_DriversAndHeatmap(t *testing.T) {
	now := baseTime.AddDate(0, 0, 12)
	c := newTestClient(t, now)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		m := wellspring.Mood{Positivity: 2, Energy: 2, Focus: 2, Stress: 3}
		var tags []string
		if i%2 == 0 {
			m = wellspring.Mood{Positivity: 4, Energy: 4, Focus: 4, Stress: 1}
			tags = []string{"run"}
		}
		checkIn(t, c, baseTime.AddDate(0, 0, i), m, tags...)
	}

	drivers, err := c.Drivers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := wellspring.DriversForTag(drivers, "run")
	if !ok || rec.Effect != wellspring.EffectPositive {
		t.Errorf("run driver = %+v, %v", rec, ok)
	}

	hm, err := c.Heatmap(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if hm.Filled() != 7 {
		t.Errorf("Filled = %d, want 7 weekdays at 09:00", hm.Filled())
	}
}

func TestClient_Report(t *testing.T) {
	c := newTestClient(t, baseTime.AddDate(0, 0, 3))
	ctx := context.Background()

	empty, err := c.Report(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Latest != nil || empty.EntryCount != 0 {
		t.Errorf("empty report = %+v", empty)
	}
	if !strings.Contains(empty.Markdown(), "No check-ins yet") {
		t.Error("empty markdown missing placeholder")
	}

	for i := 0; i < 4; i++ {
		checkIn(t, c, baseTime.AddDate(0, 0, i), wellspring.Mood{Positivity: float64(i + 1), Energy: 3, Focus: 3, Stress: 2})
	}
	r, err := c.Report(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if r.EntryCount != 4 || r.Latest == nil || r.Streak.Current != 4 || len(r.Tips) != 2 {
		t.Errorf("report = %+v", r)
	}
	md := r.Markdown()
	for _, want := range []string{"# Wellness report", "## Streak", "## Drivers", "## Power hours", "## Suggestions", "[T"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestClient_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	c := newTestClient(t, baseTime, func(cfg *wellspring.Config) {
		cfg.Debug = true
		cfg.DebugWriter = &buf
	})
	checkIn(t, c, baseTime, wellspring.Mood{Positivity: 3, Energy: 3, Focus: 3, Stress: 3})

	out := buf.String()
	if !strings.Contains(out, "[WELLSPRING DEBUG]") || !strings.Contains(out, "OP [checkin]") {
		t.Errorf("debug output = %q", out)
	}
	if !strings.Contains(out, "still building your baseline") {
		t.Errorf("debug output should explain the invalid score: %q", out)
	}
}

func TestClient_HealthAndClose(t *testing.T) {
	c := newTestClient(t, baseTime)
	ctx := context.Background()

	if h := c.HealthCheck(ctx); !h.Healthy || !h.StoreOK {
		t.Errorf("HealthCheck = %+v", h)
	}
	if c.Profile() != "default" {
		t.Errorf("Profile = %q, want default", c.Profile())
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if h := c.HealthCheck(ctx); h.Healthy {
		t.Error("closed client reported healthy")
	}
}
