// Package reminder nudges on a cron schedule when the day has no check-in yet.
package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hyperengineering/wellspring"
	rcron "github.com/robfig/cron/v3"
)

// DefaultSchedule fires at 20:00 every day.
const DefaultSchedule = "0 20 * * *"

// StreakSource reports the current logging streak. *wellspring.Client
// satisfies it.
type StreakSource interface {
	Streak(ctx context.Context) (wellspring.Streak, error)
}

// Nudge is one reminder delivered to OnNudge.
type Nudge struct {
	At      time.Time         `json:"at"`
	Streak  wellspring.Streak `json:"streak"`
	Message string            `json:"message"`
}

// Service runs the reminder check on a cron schedule.
type Service struct {
	schedule string
	source   StreakSource
	loc      *time.Location

	// OnNudge receives each nudge. Errors are logged.
	OnNudge func(Nudge) error

	// Clock supplies "now". Defaults to time.Now.
	Clock func() time.Time

	mu      sync.Mutex
	cron    *rcron.Cron
	cancel  context.CancelFunc
	running bool
	sent    int
}

// NewService creates a reminder service. An empty schedule means
// DefaultSchedule; a nil location means time.Local.
func NewService(schedule string, source StreakSource, loc *time.Location) *Service {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		schedule: schedule,
		source:   source,
		loc:      loc,
		Clock:    time.Now,
	}
}

// Schedule returns the cron expression.
func (s *Service) Schedule() string { return s.schedule }

// Sent returns how many nudges were delivered.
func (s *Service) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Start registers the check and starts the scheduler. The service stops
// when ctx is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	sched, err := rcron.ParseStandard(s.schedule)
	if err != nil {
		return fmt.Errorf("reminder: invalid schedule %q: %w", s.schedule, err)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("reminder: already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	c := rcron.New(rcron.WithLocation(s.loc))
	c.Schedule(sched, rcron.FuncJob(func() { s.run(runCtx) }))
	s.cron = c
	s.running = true
	s.mu.Unlock()

	c.Start()
	log.Printf("[remind] started with schedule %q (%s)", s.schedule, s.loc)

	go func() {
		<-runCtx.Done()
		s.stop(c)
	}()
	return nil
}

// Stop halts the scheduler, waiting briefly for a running check.
func (s *Service) Stop() {
	s.stop(nil)
}

// stop halts the scheduler. When only is set, it must be the running instance.
func (s *Service) stop(only *rcron.Cron) {
	s.mu.Lock()
	if !s.running || (only != nil && s.cron != only) {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	c := s.cron
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		log.Printf("[remind] stop timeout waiting for running check")
	}
	log.Printf("[remind] stopped")
}

func (s *Service) run(ctx context.Context) {
	n, err := s.Check(ctx)
	if err != nil {
		log.Printf("[remind] check failed: %v", err)
		return
	}
	if n == nil {
		log.Printf("[remind] already checked in today")
		return
	}
	if err := s.deliver(*n); err != nil {
		log.Printf("[remind] deliver failed: %v", err)
	}
}

func (s *Service) deliver(n Nudge) error {
	if s.OnNudge == nil {
		log.Printf("[remind] %s", n.Message)
	} else if err := s.OnNudge(n); err != nil {
		return err
	}
	s.mu.Lock()
	s.sent++
	s.mu.Unlock()
	return nil
}

// Check returns a nudge when today has no check-in, or nil when it does.
func (s *Service) Check(ctx context.Context) (*Nudge, error) {
	st, err := s.source.Streak(ctx)
	if err != nil {
		return nil, err
	}
	if st.IsActive {
		return nil, nil
	}
	return &Nudge{
		At:      s.Clock().In(s.loc),
		Streak:  st,
		Message: Message(st),
	}, nil
}

// Message describes what is at stake for a day without a check-in.
func Message(st wellspring.Streak) string {
	switch {
	case st.Current == 1:
		return "No check-in yet today. Check in to keep yesterday's start going."
	case st.Current > 1:
		return fmt.Sprintf("No check-in yet today. Your %d-day streak ends at midnight.", st.Current)
	case st.Longest > 0:
		return fmt.Sprintf("No check-in yet today. Your longest streak is %d days; start a new one.", st.Longest)
	default:
		return "No check-in yet today. A 30-second check-in starts your baseline."
	}
}
