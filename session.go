package wellspring

import (
	"fmt"
	"strings"
	"sync"
)

// Session maps short references (T1, T2, ...) to tips surfaced during a
// session so they can be completed or favorited without the full id.
type Session struct {
	mu      sync.Mutex
	tips    map[string]string // ref -> tip id
	reverse map[string]string // tip id -> ref
	counter int
}

// NewSession creates a new session tracker.
func NewSession() *Session {
	return &Session{
		tips:    make(map[string]string),
		reverse: make(map[string]string),
	}
}

// Track records a tip and returns its reference. A tip keeps its first ref.
func (s *Session) Track(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ref, ok := s.reverse[id]; ok {
		return ref
	}
	s.counter++
	ref := fmt.Sprintf("T%d", s.counter)
	s.tips[ref] = id
	s.reverse[id] = ref
	return ref
}

// Resolve converts a reference to a tip id. Refs are case-insensitive.
func (s *Session) Resolve(ref string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.tips[strings.ToUpper(ref)]
	return id, ok
}

// RefFor returns the reference assigned to a tip id.
func (s *Session) RefFor(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.reverse[id]
	return ref, ok
}

// Count returns the number of tracked tips.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tips)
}

// Clear resets the session.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tips = make(map[string]string)
	s.reverse = make(map[string]string)
	s.counter = 0
}

// Match resolves ref as a session reference, then as a tracked tip id, then
// as a case-insensitive substring of a tracked tip's title via titleOf.
func (s *Session) Match(ref string, titleOf func(id string) string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.tips[strings.ToUpper(ref)]; ok {
		return id, nil
	}
	if _, ok := s.reverse[ref]; ok {
		return ref, nil
	}
	if titleOf != nil && ref != "" {
		needle := strings.ToLower(ref)
		for i := 1; i <= s.counter; i++ {
			id, ok := s.tips[fmt.Sprintf("T%d", i)]
			if !ok {
				continue
			}
			if strings.Contains(strings.ToLower(titleOf(id)), needle) {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSessionRefNotFound, ref)
}
