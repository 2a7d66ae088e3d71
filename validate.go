package wellspring

import (
	"fmt"
	"math"
)

// ValidateEntry checks the Entry invariants: a known time-of-day bucket,
// mood dimensions within [0,5], non-negative optional numerics, finite
// numbers throughout, and bounded tags.
func ValidateEntry(e *Entry) error {
	if e == nil {
		return &EntryError{Field: "entry", Message: "nil entry"}
	}
	if e.Timestamp.IsZero() {
		return &EntryError{EntryID: e.ID, Field: "timestamp", Message: "required"}
	}
	if !e.TimeOfDay.IsValid() {
		return &EntryError{EntryID: e.ID, Field: "time_of_day", Message: fmt.Sprintf("unknown bucket %q", e.TimeOfDay), Err: ErrInvalidTimeOfDay}
	}

	dims := []struct {
		name  string
		value float64
	}{
		{"positivity", e.Mood.Positivity},
		{"energy", e.Mood.Energy},
		{"focus", e.Mood.Focus},
		{"stress", e.Mood.Stress},
	}
	for _, d := range dims {
		if err := checkFinite(e.ID, d.name, d.value); err != nil {
			return err
		}
		if d.value < MoodMin || d.value > MoodMax {
			return &EntryError{EntryID: e.ID, Field: d.name, Message: fmt.Sprintf("%.2f outside [%.0f,%.0f]", d.value, MoodMin, MoodMax)}
		}
	}

	if e.FocusMinutes != nil {
		if err := checkNonNegative(e.ID, "focus_minutes", *e.FocusMinutes); err != nil {
			return err
		}
	}
	if e.SleepHours != nil {
		if err := checkNonNegative(e.ID, "sleep_hours", *e.SleepHours); err != nil {
			return err
		}
	}
	if e.TasksCompleted != nil && *e.TasksCompleted < 0 {
		return &EntryError{EntryID: e.ID, Field: "tasks_completed", Message: "must be non-negative"}
	}
	if e.SocialInteractions != nil && *e.SocialInteractions < 0 {
		return &EntryError{EntryID: e.ID, Field: "social_interactions", Message: "must be non-negative"}
	}

	if len(e.Tags) > MaxTags {
		return &EntryError{EntryID: e.ID, Field: "tags", Message: fmt.Sprintf("at most %d tags", MaxTags)}
	}
	for _, t := range e.Tags {
		if len(t) > MaxTagLength {
			return &EntryError{EntryID: e.ID, Field: "tags", Message: fmt.Sprintf("tag longer than %d characters", MaxTagLength)}
		}
	}
	return nil
}

// ValidEntries returns the entries that satisfy ValidateEntry, preserving order.
func ValidEntries(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for i := range entries {
		if ValidateEntry(&entries[i]) == nil {
			out = append(out, entries[i])
		}
	}
	return out
}

func checkFinite(id, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &EntryError{EntryID: id, Field: field, Message: "not a finite number", Err: ErrNonFinite}
	}
	return nil
}

func checkNonNegative(id, field string, v float64) error {
	if err := checkFinite(id, field, v); err != nil {
		return err
	}
	if v < 0 {
		return &EntryError{EntryID: id, Field: field, Message: "must be non-negative"}
	}
	return nil
}
