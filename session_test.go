package wellspring

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestSession_Track_AssignsSequentialRefs(t *testing.T) {
	s := NewSession()

	for i, id := range []string{"box-breathing", "hydrate", "reach-out"} {
		want := fmt.Sprintf("T%d", i+1)
		if got := s.Track(id); got != want {
			t.Errorf("Track(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestSession_Track_SameTipRetainsRef(t *testing.T) {
	s := NewSession()

	s.Track("box-breathing")
	s.Track("hydrate")
	if got := s.Track("box-breathing"); got != "T1" {
		t.Errorf("re-Track returned %q, want T1", got)
	}
	if got := s.Track("reach-out"); got != "T3" {
		t.Errorf("next new tip got %q, want T3", got)
	}
	if s.Count() != 3 {
		t.Errorf("Count() = %d, want 3", s.Count())
	}
}

func TestSession_Resolve(t *testing.T) {
	s := NewSession()
	s.Track("hydrate")

	for _, ref := range []string{"T1", "t1"} {
		id, ok := s.Resolve(ref)
		if !ok || id != "hydrate" {
			t.Errorf("Resolve(%q) = %q, %v", ref, id, ok)
		}
	}
	if _, ok := s.Resolve("T9"); ok {
		t.Error("Resolve(T9) found a tip")
	}
	if ref, ok := s.RefFor("hydrate"); !ok || ref != "T1" {
		t.Errorf("RefFor = %q, %v", ref, ok)
	}
}

func TestSession_Match(t *testing.T) {
	s := NewSession()
	s.Track("box-breathing")
	s.Track("brisk-walk")

	titles := map[string]string{
		"box-breathing": "Box breathing",
		"brisk-walk":    "Ten-minute brisk walk",
	}
	titleOf := func(id string) string { return titles[id] }

	tests := []struct {
		ref  string
		want string
	}{
		{"T2", "brisk-walk"},
		{"t1", "box-breathing"},
		{"brisk-walk", "brisk-walk"},
		{"BREATH", "box-breathing"},
		{"walk", "brisk-walk"},
	}
	for _, tt := range tests {
		got, err := s.Match(tt.ref, titleOf)
		if err != nil || got != tt.want {
			t.Errorf("Match(%q) = %q, %v; want %q", tt.ref, got, err, tt.want)
		}
	}

	if _, err := s.Match("yoga", titleOf); !errors.Is(err, ErrSessionRefNotFound) {
		t.Errorf("Match(yoga) err = %v, want ErrSessionRefNotFound", err)
	}
}

func TestSession_Clear(t *testing.T) {
	s := NewSession()
	s.Track("a")
	s.Track("b")
	s.Clear()

	if s.Count() != 0 {
		t.Errorf("Count() after Clear = %d", s.Count())
	}
	if got := s.Track("c"); got != "T1" {
		t.Errorf("Track after Clear = %q, want T1", got)
	}
}

func TestSession_ConcurrentTrack(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Track(fmt.Sprintf("tip-%d", i%10))
		}(i)
	}
	wg.Wait()

	if s.Count() != 10 {
		t.Errorf("Count() = %d, want 10", s.Count())
	}
}

func TestTruncateForLog(t *testing.T) {
	if got := truncateForLog("short", 10); got != "short" {
		t.Errorf("truncateForLog(short) = %q", got)
	}
	got := truncateForLog("abcdefghij", 4)
	if got != "abcd... [truncated, 10 bytes total]" {
		t.Errorf("truncateForLog = %q", got)
	}
}
