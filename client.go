package wellspring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Client ties the store, the analytics engine, and the recommender together
// for one profile.
type Client struct {
	store   *Store
	rec     *Recommender
	session *Session
	config  Config
	loc     *time.Location
	logger  *DebugLogger

	mu     sync.Mutex
	closed bool
}

// CheckInResult is a stored entry with its score against prior history.
type CheckInResult struct {
	Entry Entry          `json:"entry"`
	Score CompositeScore `json:"score"`
}

// SessionTip is a ranked tip with its session reference.
type SessionTip struct {
	Ref string `json:"ref"`
	ScoredTip
}

// New creates a client, opening (and migrating) the profile database.
func New(cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.LoadLocation()
	if err != nil {
		return nil, &ValidationError{Field: "Location", Message: err.Error()}
	}

	logger, err := newClientLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	start := time.Now()
	store, err := NewStore(cfg.LocalPath, WithMaxValueBytes(cfg.MaxValueBytes))
	if err != nil {
		logger.LogError("open", err)
		_ = logger.Close()
		return nil, fmt.Errorf("client: %w", err)
	}
	logger.LogOp("open", start, cfg.LocalPath)

	ctx := context.Background()
	prefs, err := LoadPreferences(ctx, store)
	if err != nil {
		// Corrupt preferences fall back to empty sets.
		logger.LogError("load preferences", err)
		prefs = Preferences{}
	}

	catalog := cfg.Catalog
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	rec, err := NewRecommender(catalog, prefs, store)
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, fmt.Errorf("client: %w", err)
	}

	return &Client{
		store:   store,
		rec:     rec,
		session: NewSession(),
		config:  cfg,
		loc:     loc,
		logger:  logger,
	}, nil
}

func newClientLogger(cfg Config) (*DebugLogger, error) {
	if cfg.Debug && cfg.DebugWriter != nil {
		return NewWriterLogger(cfg.DebugWriter), nil
	}
	return NewDebugLogger(cfg.Debug, cfg.DebugLogPath)
}

// Store returns the underlying store.
func (c *Client) Store() *Store { return c.store }

// Profile returns the active profile.
func (c *Client) Profile() string { return c.config.Profile }

// Location returns the time zone used for calendar computations.
func (c *Client) Location() *time.Location { return c.loc }

// Recommender returns the tip recommender.
func (c *Client) Recommender() *Recommender { return c.rec }

// Session returns the tip reference tracker.
func (c *Client) Session() *Session { return c.session }

func (c *Client) now() time.Time { return c.config.Clock().In(c.loc) }

// CheckIn records a new entry and scores it against the existing history.
func (c *Client) CheckIn(ctx context.Context, p CheckInParams) (*CheckInResult, error) {
	start := time.Now()
	e := Entry{
		Timestamp:          p.Timestamp,
		TimeOfDay:          p.TimeOfDay,
		Mood:               p.Mood,
		Tags:               p.Tags,
		FocusMinutes:       p.FocusMinutes,
		TasksCompleted:     p.TasksCompleted,
		SleepHours:         p.SleepHours,
		RecoveryAction:     p.RecoveryAction,
		SocialInteractions: p.SocialInteractions,
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = c.now()
	}
	if e.TimeOfDay == "" {
		e.TimeOfDay = TimeOfDayAt(e.Timestamp.In(c.loc))
	}

	if err := c.store.InsertEntry(ctx, &e); err != nil {
		c.logger.LogError("checkin", err)
		return nil, err
	}

	all, err := c.store.ListEntries(ctx, EntryFilter{})
	if err != nil {
		return nil, err
	}
	score, err := ComputeScore(&e, all, ScoreOptions{})
	if err != nil {
		return nil, err
	}
	c.logger.LogScore(score)
	c.logger.LogOp("checkin", start, fmt.Sprintf("%s tags=%s", e.ID, truncateForLog(strings.Join(e.Tags, ","), 200)))
	return &CheckInResult{Entry: e, Score: *score}, nil
}

// Entries lists stored entries.
func (c *Client) Entries(ctx context.Context, f EntryFilter) ([]Entry, error) {
	return c.store.ListEntries(ctx, f)
}

// DeleteEntry removes an entry.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.store.DeleteEntry(ctx, id)
}

// Score scores the entry with id against every other entry.
func (c *Client) Score(ctx context.Context, id string, opts ScoreOptions) (*CompositeScore, error) {
	all, err := c.store.ListEntries(ctx, EntryFilter{})
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return ComputeScore(&all[i], all, opts)
		}
	}
	return nil, fmt.Errorf("%w: entry %s", ErrNotFound, id)
}

// LatestScore scores the most recent entry.
func (c *Client) LatestScore(ctx context.Context, opts ScoreOptions) (*CompositeScore, error) {
	all, err := c.store.ListEntries(ctx, EntryFilter{})
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNoEntries
	}
	latest := &all[len(all)-1]
	score, err := ComputeScore(latest, all, opts)
	if err == nil {
		c.logger.LogScore(score)
	}
	return score, err
}

// Scores scores the entries selected by f, each against the full history.
func (c *Client) Scores(ctx context.Context, f EntryFilter, opts ScoreOptions) ([]CompositeScore, error) {
	selected, err := c.store.ListEntries(ctx, f)
	if err != nil {
		return nil, err
	}
	all, err := c.store.ListEntries(ctx, EntryFilter{})
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(selected))
	for _, e := range selected {
		want[e.ID] = true
	}
	var out []CompositeScore
	for _, s := range ScoreAll(all, opts) {
		if want[s.EntryID] {
			out = append(out, s)
		}
	}
	return out, nil
}

// Streak computes logging streaks as of now.
func (c *Client) Streak(ctx context.Context) (Streak, error) {
	all, err := c.store.ListEntries(ctx, EntryFilter{})
	if err != nil {
		return Streak{}, err
	}
	return CalculateStreak(all, c.now(), c.loc), nil
}

// Drivers runs tag impact analysis with the configured window.
func (c *Client) Drivers(ctx context.Context) ([]DriverRecord, error) {
	start := time.Now()
	all, err := c.store.ListEntries(ctx, EntryFilter{})
	if err != nil {
		return nil, err
	}
	records := AnalyzeDrivers(all, DriverOptions{
		MinOccurrences: c.config.DriverMinOccurrences,
		Window:         c.config.DriverWindow,
		Now:            c.now(),
	})
	c.logger.LogOp("drivers", start, fmt.Sprintf("%d entries, %d tags", len(all), len(records)))
	return records, nil
}

// Heatmap builds the weekday × hour productivity grid.
func (c *Client) Heatmap(ctx context.Context) (Heatmap, error) {
	all, err := c.store.ListEntries(ctx, EntryFilter{})
	if err != nil {
		return Heatmap{}, err
	}
	return BuildHeatmap(all, c.loc), nil
}

// Tips ranks tips for the latest check-in and assigns session references.
// With no check-ins yet the onboarding set is returned.
func (c *Client) Tips(ctx context.Context, max int) ([]SessionTip, error) {
	recent, err := c.store.ListEntries(ctx, EntryFilter{Limit: c.config.RecentEntries})
	if err != nil {
		return nil, err
	}
	var current *Entry
	if len(recent) > 0 {
		current = &recent[len(recent)-1]
	}

	ranked, err := c.rec.SelectRelevantTips(current, recent, c.now(), max)
	if err != nil {
		c.logger.LogError("tips", err)
		return nil, err
	}
	out := make([]SessionTip, len(ranked))
	for i, t := range ranked {
		out[i] = SessionTip{Ref: c.session.Track(t.Tip.ID), ScoredTip: t}
	}
	return out, nil
}

// ResolveTip maps a session ref, tip id, or title fragment to a tip id.
func (c *Client) ResolveTip(ref string) (string, error) {
	if _, err := c.rec.Tip(ref); err == nil {
		return ref, nil
	}
	return c.session.Match(ref, func(id string) string {
		t, err := c.rec.Tip(id)
		if err != nil {
			return ""
		}
		return t.Title
	})
}

// CompleteTip marks a tip completed. ref may be a session ref or tip id.
func (c *Client) CompleteTip(ctx context.Context, ref string) (Preferences, error) {
	id, err := c.ResolveTip(ref)
	if err != nil {
		return c.rec.Preferences(), err
	}
	prefs, err := c.rec.MarkTipCompleted(ctx, id)
	c.logPersist("complete "+id, err)
	return prefs, err
}

// ToggleFavorite flips a tip's favorite state.
func (c *Client) ToggleFavorite(ctx context.Context, ref string) (Preferences, error) {
	id, err := c.ResolveTip(ref)
	if err != nil {
		return c.rec.Preferences(), err
	}
	prefs, err := c.rec.ToggleTipFavorite(ctx, id)
	c.logPersist("favorite "+id, err)
	return prefs, err
}

// ClearCompletedTips resets the completed set.
func (c *Client) ClearCompletedTips(ctx context.Context) (Preferences, error) {
	prefs, err := c.rec.ClearCompletedTips(ctx)
	c.logPersist("clear completed", err)
	return prefs, err
}

func (c *Client) logPersist(op string, err error) {
	if err == nil {
		return
	}
	var se *StoreError
	if errors.As(err, &se) {
		c.logger.Log("PERSIST [%s] reason=%s key=%s", op, se.Reason, se.Key)
	}
	c.logger.LogError(op, err)
}

// Stats returns store statistics.
func (c *Client) Stats(ctx context.Context) (*StoreStats, error) {
	return c.store.Stats(ctx)
}

// HealthCheck returns the health status of the client.
func (c *Client) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true, StoreOK: true}
	if _, err := c.store.Stats(ctx); err != nil {
		status.Healthy = false
		status.StoreOK = false
		status.Error = err.Error()
	}
	return status
}

// Close closes the store and debug log.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	err := c.store.Close()
	if lerr := c.logger.Close(); err == nil {
		err = lerr
	}
	return err
}
