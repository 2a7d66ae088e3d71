package wellspring

import (
	"sort"
	"time"
)

// Streak summarizes consecutive-day logging.
type Streak struct {
	Current   int        `json:"current"`
	Longest   int        `json:"longest"`
	IsActive  bool       `json:"is_active"`
	LastEntry *time.Time `json:"last_entry,omitempty"`
	Days      int        `json:"days"`
}

// CalculateStreak groups entries by calendar date in loc and derives the
// current and longest streaks as of now. A nil loc means time.Local.
// Entries failing ValidateEntry are skipped.
//
// The current streak walks backward from today. When today has no entry yet
// the walk starts from yesterday, so a streak is not lost before the day is
// over; IsActive is true only when the latest entry falls on today.
func CalculateStreak(entries []Entry, now time.Time, loc *time.Location) Streak {
	if loc == nil {
		loc = time.Local
	}
	valid := ValidEntries(entries)
	if len(valid) == 0 {
		return Streak{}
	}

	days := make(map[civilDate]bool)
	var last time.Time
	for i := range valid {
		ts := valid[i].Timestamp
		days[dateOf(ts, loc)] = true
		if ts.After(last) {
			last = ts
		}
	}
	sorted := make([]civilDate, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].before(sorted[j]) })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].next() == sorted[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := dateOf(now, loc)
	cursor := today
	if !days[cursor] {
		cursor = today.prev()
	}
	current := 0
	for days[cursor] {
		current++
		cursor = cursor.prev()
	}

	lastLocal := last.In(loc)
	return Streak{
		Current:   current,
		Longest:   longest,
		IsActive:  dateOf(last, loc) == today,
		LastEntry: &lastLocal,
		Days:      len(days),
	}
}

// civilDate is a calendar date without a time zone.
type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time, loc *time.Location) civilDate {
	y, m, d := t.In(loc).Date()
	return civilDate{y, m, d}
}

func (d civilDate) time() time.Time {
	return time.Date(d.year, d.month, d.day, 12, 0, 0, 0, time.UTC)
}

func (d civilDate) next() civilDate {
	y, m, dd := d.time().AddDate(0, 0, 1).Date()
	return civilDate{y, m, dd}
}

func (d civilDate) prev() civilDate {
	y, m, dd := d.time().AddDate(0, 0, -1).Date()
	return civilDate{y, m, dd}
}

func (d civilDate) before(o civilDate) bool {
	return d.time().Before(o.time())
}
