package wellspring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Relevance weights.
const (
	ConditionBonus    = 10
	HighPriorityBonus = 5
	MedPriorityBonus  = 3
	LowPriorityBonus  = 1
	ContextBonus      = 3
	TagBonus          = 2
	CompletedPenalty  = 5
	FavoriteBonus     = 2
)

// DefaultMaxTips is the result size when none is given.
const DefaultMaxTips = 3

const (
	preferenceKeyFav  = "prefs.favorited"
	preferenceKeyDone = "prefs.completed"
)

// PriorityBonus returns the relevance bonus for a priority tier.
func PriorityBonus(p Priority) int {
	switch p {
	case PriorityHigh:
		return HighPriorityBonus
	case PriorityMedium:
		return MedPriorityBonus
	case PriorityLow:
		return LowPriorityBonus
	default:
		return 0
	}
}

// PreferenceStore persists string-keyed values. GetValue returns an error
// wrapping ErrNotFound for absent keys; failures are *StoreError.
type PreferenceStore interface {
	GetValue(ctx context.Context, key string) ([]byte, error)
	SetValue(ctx context.Context, key string, value []byte) error
	RemoveValue(ctx context.Context, key string) error
}

// Preferences is the user's tip state. Both lists are sorted and unique.
type Preferences struct {
	Favorited []string `json:"favorited"`
	Completed []string `json:"completed"`
}

// IsFavorited reports whether id is favorited.
func (p Preferences) IsFavorited(id string) bool { return contains(p.Favorited, id) }

// IsCompleted reports whether id is completed.
func (p Preferences) IsCompleted(id string) bool { return contains(p.Completed, id) }

func contains(ids []string, id string) bool {
	i := sort.SearchStrings(ids, id)
	return i < len(ids) && ids[i] == id
}

// ScoreBreakdown itemizes a tip's relevance score.
type ScoreBreakdown struct {
	Conditions int `json:"conditions"`
	Priority   int `json:"priority"`
	Context    int `json:"context"`
	Tags       int `json:"tags"`
	Completed  int `json:"completed"`
	Favorited  int `json:"favorited"`
}

// Total sums the parts.
func (b ScoreBreakdown) Total() int {
	return b.Conditions + b.Priority + b.Context + b.Tags + b.Completed + b.Favorited
}

// ScoredTip pairs a tip with its relevance for the current state.
type ScoredTip struct {
	Tip       Tip            `json:"tip"`
	Score     int            `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Matched   []Condition    `json:"matched,omitempty"`
	Completed bool           `json:"completed"`
	Favorited bool           `json:"favorited"`
}

// Recommender ranks catalog tips against a check-in. It owns the in-memory
// preference sets and writes every change through to its PreferenceStore.
// Safe for concurrent use.
type Recommender struct {
	mu        sync.Mutex
	catalog   []Tip
	byID      map[string]int
	favorited map[string]bool
	completed map[string]bool
	store     PreferenceStore
}

// NewRecommender builds a recommender over catalog, deduplicated by id with
// the first occurrence kept. A nil store keeps preferences in memory only.
func NewRecommender(catalog []Tip, prefs Preferences, store PreferenceStore) (*Recommender, error) {
	r := &Recommender{
		byID:      make(map[string]int, len(catalog)),
		favorited: make(map[string]bool),
		completed: make(map[string]bool),
		store:     store,
	}
	for i := range catalog {
		if err := ValidateTip(&catalog[i]); err != nil {
			return nil, err
		}
		if _, dup := r.byID[catalog[i].ID]; dup {
			continue
		}
		r.byID[catalog[i].ID] = len(r.catalog)
		r.catalog = append(r.catalog, catalog[i])
	}
	for _, id := range prefs.Favorited {
		r.favorited[id] = true
	}
	for _, id := range prefs.Completed {
		r.completed[id] = true
	}
	return r, nil
}

// LoadPreferences reads saved preferences. Missing keys yield empty sets.
func LoadPreferences(ctx context.Context, store PreferenceStore) (Preferences, error) {
	var p Preferences
	if store == nil {
		return p, nil
	}
	var err error
	if p.Favorited, err = loadIDs(ctx, store, preferenceKeyFav); err != nil {
		return Preferences{}, err
	}
	if p.Completed, err = loadIDs(ctx, store, preferenceKeyDone); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

func loadIDs(ctx context.Context, store PreferenceStore, key string) ([]string, error) {
	raw, err := store.GetValue(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, &StoreError{Op: "get", Key: key, Reason: ReasonInvalidData, Err: err}
	}
	return sortedIDs(toSet(ids)), nil
}

// Catalog returns a copy of the catalog.
func (r *Recommender) Catalog() []Tip {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Tip(nil), r.catalog...)
}

// Tip looks up a catalog tip by id.
func (r *Recommender) Tip(id string) (Tip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return Tip{}, fmt.Errorf("%w: %s", ErrUnknownTip, id)
	}
	return r.catalog[i], nil
}

// Preferences returns the current preference state.
func (r *Recommender) Preferences() Preferences {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Recommender) snapshot() Preferences {
	return Preferences{Favorited: sortedIDs(r.favorited), Completed: sortedIDs(r.completed)}
}

// SelectRelevantTips ranks tips for current given the recent check-ins, with
// now deciding the time-of-day context. A nil current returns the onboarding
// set. At most max tips are returned; max <= 0 means DefaultMaxTips.
// A malformed current entry fails with its *EntryError; malformed recent
// entries are ignored.
func (r *Recommender) SelectRelevantTips(current *Entry, recent []Entry, now time.Time, max int) ([]ScoredTip, error) {
	if max <= 0 {
		max = DefaultMaxTips
	}
	if current != nil {
		if err := ValidateEntry(current); err != nil {
			return nil, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if current == nil {
		return r.onboarding(max), nil
	}

	recentTags := tagSet(recent)
	tod := TimeOfDayAt(now)

	scored := make([]ScoredTip, 0, len(r.catalog))
	for i := range r.catalog {
		scored = append(scored, r.scoreTip(&r.catalog[i], current, recentTags, tod))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Tip.Priority.Rank() != b.Tip.Priority.Rank() {
			return a.Tip.Priority.Rank() < b.Tip.Priority.Rank()
		}
		return a.Tip.ID < b.Tip.ID
	})
	return dedupe(scored, max), nil
}

// ScoreTip returns the relevance of one tip for current.
func (r *Recommender) ScoreTip(id string, current *Entry, recent []Entry, now time.Time) (ScoredTip, error) {
	if current == nil {
		return ScoredTip{}, ErrNoEntries
	}
	if err := ValidateEntry(current); err != nil {
		return ScoredTip{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return ScoredTip{}, fmt.Errorf("%w: %s", ErrUnknownTip, id)
	}
	return r.scoreTip(&r.catalog[i], current, tagSet(recent), TimeOfDayAt(now)), nil
}

func tagSet(recent []Entry) map[string]bool {
	tags := make(map[string]bool)
	for _, e := range ValidEntries(recent) {
		for _, t := range NormalizeTags(e.Tags) {
			tags[t] = true
		}
	}
	return tags
}

func (r *Recommender) scoreTip(t *Tip, current *Entry, recentTags map[string]bool, tod TimeOfDay) ScoredTip {
	st := ScoredTip{
		Tip:       *t,
		Completed: r.completed[t.ID],
		Favorited: r.favorited[t.ID],
	}
	b := &st.Breakdown
	for _, c := range t.Conditions {
		if c.Matches(current) {
			b.Conditions += ConditionBonus
			st.Matched = append(st.Matched, c)
		}
	}
	b.Priority = PriorityBonus(t.Priority)
	if t.AppliesAt(tod) {
		b.Context = ContextBonus
	}
	for _, tag := range NormalizeTags(t.RequiredTags) {
		if recentTags[tag] {
			b.Tags += TagBonus
		}
	}
	if st.Completed {
		b.Completed = -CompletedPenalty
	}
	if st.Favorited {
		b.Favorited = FavoriteBonus
	}
	st.Score = b.Total()
	return st
}

func (r *Recommender) onboarding(max int) []ScoredTip {
	var out []ScoredTip
	for i := range r.catalog {
		t := &r.catalog[i]
		if !isOnboardingCategory(t.Category) {
			continue
		}
		st := ScoredTip{
			Tip:       *t,
			Completed: r.completed[t.ID],
			Favorited: r.favorited[t.ID],
		}
		st.Breakdown.Priority = PriorityBonus(t.Priority)
		st.Score = st.Breakdown.Total()
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tip.Priority.Rank() != out[j].Tip.Priority.Rank() {
			return out[i].Tip.Priority.Rank() < out[j].Tip.Priority.Rank()
		}
		return out[i].Tip.ID < out[j].Tip.ID
	})
	return dedupe(out, max)
}

func isOnboardingCategory(c string) bool {
	for _, oc := range OnboardingCategories {
		if strings.EqualFold(c, oc) {
			return true
		}
	}
	return false
}

func dedupe(tips []ScoredTip, max int) []ScoredTip {
	seen := make(map[string]bool, len(tips))
	out := make([]ScoredTip, 0, max)
	for _, t := range tips {
		if seen[t.Tip.ID] {
			continue
		}
		seen[t.Tip.ID] = true
		out = append(out, t)
		if len(out) == max {
			break
		}
	}
	return out
}

// MarkTipCompleted adds id to the completed set and persists it.
func (r *Recommender) MarkTipCompleted(ctx context.Context, id string) (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return r.snapshot(), fmt.Errorf("%w: %s", ErrUnknownTip, id)
	}
	r.completed[id] = true
	return r.snapshot(), r.persist(ctx, preferenceKeyDone, r.completed)
}

// ToggleTipFavorite flips id's favorite state and persists it.
func (r *Recommender) ToggleTipFavorite(ctx context.Context, id string) (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return r.snapshot(), fmt.Errorf("%w: %s", ErrUnknownTip, id)
	}
	if r.favorited[id] {
		delete(r.favorited, id)
	} else {
		r.favorited[id] = true
	}
	return r.snapshot(), r.persist(ctx, preferenceKeyFav, r.favorited)
}

// ClearCompletedTips empties the completed set and removes it from the store.
func (r *Recommender) ClearCompletedTips(ctx context.Context) (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = make(map[string]bool)
	if r.store == nil {
		return r.snapshot(), nil
	}
	err := r.store.RemoveValue(ctx, preferenceKeyDone)
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	return r.snapshot(), err
}

// persist writes one preference set. On a quota failure it retries once with
// ids no longer in the catalog dropped. The in-memory set is kept either way.
func (r *Recommender) persist(ctx context.Context, key string, set map[string]bool) error {
	if r.store == nil {
		return nil
	}
	ids := sortedIDs(set)
	err := r.write(ctx, key, ids)
	if err == nil || !IsQuotaExceeded(err) {
		return err
	}

	// Only ids loaded from storage can be stale; otherwise this rewrites the same set.
	compacted := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := r.byID[id]; ok {
			compacted = append(compacted, id)
		}
	}
	if err := r.write(ctx, key, compacted); err != nil {
		return fmt.Errorf("persist %s after compaction: %w", key, err)
	}
	return nil
}

func (r *Recommender) write(ctx context.Context, key string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return &StoreError{Op: "set", Key: key, Reason: ReasonInvalidData, Err: err}
	}
	return r.store.SetValue(ctx, key, raw)
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			m[id] = true
		}
	}
	return m
}

func sortedIDs(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id, ok := range set {
		if ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
