package wellspring

import (
	"strings"
	"time"
)

// Entry is a single mood/activity check-in. Entries are immutable once
// recorded; the engine only reads them.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	TimeOfDay TimeOfDay `json:"time_of_day"`
	Mood      Mood      `json:"mood"`
	Tags      []string  `json:"tags,omitempty"`

	FocusMinutes       *float64 `json:"focus_minutes,omitempty"`
	TasksCompleted     *int     `json:"tasks_completed,omitempty"`
	SleepHours         *float64 `json:"sleep_hours,omitempty"`
	RecoveryAction     *bool    `json:"recovery_action,omitempty"`
	SocialInteractions *int     `json:"social_interactions,omitempty"`
}

// Mood holds the four self-reported dimensions, each on a 0-5 scale.
type Mood struct {
	Positivity float64 `json:"positivity"`
	Energy     float64 `json:"energy"`
	Focus      float64 `json:"focus"`
	Stress     float64 `json:"stress"`
}

// HasTag reports whether the entry carries tag, ignoring case.
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// TimeOfDay is a coarse, ordered time bucket.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// ValidTimesOfDay returns all buckets in order.
func ValidTimesOfDay() []TimeOfDay {
	return []TimeOfDay{TimeMorning, TimeAfternoon, TimeEvening, TimeNight}
}

// IsValid checks if t is one of the four buckets.
func (t TimeOfDay) IsValid() bool {
	return t.Ordinal() >= 0
}

// Ordinal returns the bucket's position (morning=0) or -1 if unknown.
func (t TimeOfDay) Ordinal() int {
	for i, v := range ValidTimesOfDay() {
		if t == v {
			return i
		}
	}
	return -1
}

// TimeOfDayAt maps a wall clock time to its bucket.
// Morning is 05:00-11:59, afternoon 12:00-16:59, evening 17:00-21:59,
// night everything else.
func TimeOfDayAt(t time.Time) TimeOfDay {
	h := t.Hour()
	switch {
	case h >= 5 && h < 12:
		return TimeMorning
	case h >= 12 && h < 17:
		return TimeAfternoon
	case h >= 17 && h < 22:
		return TimeEvening
	default:
		return TimeNight
	}
}

// Priority ranks catalog tips.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities, high first. Unknown priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Confidence tiers a driver by partition sample sizes.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Effect classifies a driver's overall direction.
type Effect string

const (
	EffectPositive Effect = "positive"
	EffectNegative Effect = "negative"
	EffectNeutral  Effect = "neutral"
)

// CheckInParams contains the user-supplied fields of a new check-in.
// Timestamp and TimeOfDay default to the client clock when zero.
type CheckInParams struct {
	Timestamp time.Time `json:"timestamp,omitempty"`
	TimeOfDay TimeOfDay `json:"time_of_day,omitempty"`
	Mood      Mood      `json:"mood"`
	Tags      []string  `json:"tags,omitempty"`

	FocusMinutes       *float64 `json:"focus_minutes,omitempty"`
	TasksCompleted     *int     `json:"tasks_completed,omitempty"`
	SleepHours         *float64 `json:"sleep_hours,omitempty"`
	RecoveryAction     *bool    `json:"recovery_action,omitempty"`
	SocialInteractions *int     `json:"social_interactions,omitempty"`
}

// EntryFilter narrows ListEntries. Zero values mean unbounded.
type EntryFilter struct {
	From      time.Time
	To        time.Time
	TimeOfDay TimeOfDay
	Tag       string
	Limit     int
}

// StoreStats contains statistics about the local store.
type StoreStats struct {
	EntryCount    int       `json:"entry_count"`
	TagCount      int       `json:"tag_count"`
	FirstEntry    time.Time `json:"first_entry,omitempty"`
	LastEntry     time.Time `json:"last_entry,omitempty"`
	SchemaVersion string    `json:"schema_version"`
}

// HealthStatus represents the health of the client.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	StoreOK bool   `json:"store_ok"`
	Error   string `json:"error,omitempty"`
}

// Mood scale bounds.
const (
	MoodMin = 0.0
	MoodMax = 5.0
)

// Tag limits.
const (
	MaxTags      = 32
	MaxTagLength = 64
)

// NormalizeTags lowercases, trims, and deduplicates tags, dropping empties.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
