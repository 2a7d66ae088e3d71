package reminder_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/wellspring"
	"github.com/hyperengineering/wellspring/internal/reminder"
)

type fakeSource struct {
	streak wellspring.Streak
	err    error
	calls  int
}

func (f *fakeSource) Streak(context.Context) (wellspring.Streak, error) {
	f.calls++
	return f.streak, f.err
}

func TestNewService_Defaults(t *testing.T) {
	s := reminder.NewService("", &fakeSource{}, nil)
	if s.Schedule() != reminder.DefaultSchedule {
		t.Errorf("Schedule() = %q, want %q", s.Schedule(), reminder.DefaultSchedule)
	}
	if s.Sent() != 0 {
		t.Errorf("Sent() = %d, want 0", s.Sent())
	}
}

func TestCheck(t *testing.T) {
	now := time.Date(2025, 3, 12, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		streak    wellspring.Streak
		wantNudge bool
		wantText  string
	}{
		{"checked in today", wellspring.Streak{Current: 4, Longest: 4, IsActive: true}, false, ""},
		{"streak at risk", wellspring.Streak{Current: 4, Longest: 9}, true, "4-day streak ends at midnight"},
		{"one day", wellspring.Streak{Current: 1, Longest: 3}, true, "keep yesterday's start going"},
		{"broken streak", wellspring.Streak{Longest: 6}, true, "longest streak is 6 days"},
		{"no history", wellspring.Streak{}, true, "starts your baseline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{streak: tt.streak}
			s := reminder.NewService("", src, time.UTC)
			s.Clock = func() time.Time { return now }

			n, err := s.Check(context.Background())
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if (n != nil) != tt.wantNudge {
				t.Fatalf("nudge = %v, want nudge %v", n, tt.wantNudge)
			}
			if n == nil {
				return
			}
			if !strings.Contains(n.Message, tt.wantText) {
				t.Errorf("Message = %q, want to contain %q", n.Message, tt.wantText)
			}
			if !n.At.Equal(now) {
				t.Errorf("At = %v, want %v", n.At, now)
			}
			if n.Streak.Current != tt.streak.Current {
				t.Errorf("Streak.Current = %d, want %d", n.Streak.Current, tt.streak.Current)
			}
		})
	}
}

func TestCheck_SourceError(t *testing.T) {
	boom := errors.New("boom")
	s := reminder.NewService("", &fakeSource{err: boom}, time.UTC)

	if _, err := s.Check(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := reminder.NewService("every evening", &fakeSource{}, time.UTC)

	err := s.Start(context.Background())
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if !strings.Contains(err.Error(), "invalid schedule") {
		t.Errorf("err = %v", err)
	}
}

func TestStart_StopAndRestart(t *testing.T) {
	s := reminder.NewService("0 20 * * *", &fakeSource{}, time.UTC)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start should fail while running")
	}
	s.Stop()
	s.Stop()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	s.Stop()
}

func TestStart_ContextCancelStops(t *testing.T) {
	s := reminder.NewService("0 20 * * *", &fakeSource{}, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := s.Start(context.Background()); err == nil {
			s.Stop()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("service still running after context cancel")
}

func TestStart_DeliversNudges(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the next minute boundary")
	}
	src := &fakeSource{streak: wellspring.Streak{Current: 2, Longest: 2}}
	s := reminder.NewService("* * * * *", src, time.UTC)

	got := make(chan reminder.Nudge, 1)
	s.OnNudge = func(n reminder.Nudge) error {
		select {
		case got <- n:
		default:
		}
		return nil
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case n := <-got:
		if !strings.Contains(n.Message, "2-day streak") {
			t.Errorf("Message = %q", n.Message)
		}
	case <-time.After(65 * time.Second):
		t.Fatal("no nudge within a minute")
	}
}
