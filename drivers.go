package wellspring

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Driver analysis defaults.
const (
	DefaultDriverMinOccurrences = 3
	DefaultDriverWindow         = 28 * 24 * time.Hour

	// NeutralImpactThreshold is the total impact below which a tag is neutral.
	NeutralImpactThreshold = 0.1

	highConfidenceSamples   = 10
	mediumConfidenceSamples = 5
)

// DriverRecord is one tag's impact profile.
type DriverRecord struct {
	Tag            string     `json:"tag"`
	Occurrences    int        `json:"occurrences"`
	WithCount      int        `json:"with_count"`
	WithoutCount   int        `json:"without_count"`
	MoodWith       float64    `json:"mood_with"`
	MoodWithout    float64    `json:"mood_without"`
	MoodImpact     float64    `json:"mood_impact"`
	SuccessWith    float64    `json:"success_with"`
	SuccessWithout float64    `json:"success_without"`
	SuccessImpact  float64    `json:"success_impact"`
	TotalImpact    float64    `json:"total_impact"`
	Confidence     Confidence `json:"confidence"`
	Effect         Effect     `json:"effect"`
}

// DriverOptions configures AnalyzeDrivers. Zero values take the defaults.
type DriverOptions struct {
	MinOccurrences int
	Window         time.Duration
	Now            time.Time
}

func (o DriverOptions) withDefaults() DriverOptions {
	if o.MinOccurrences <= 0 {
		o.MinOccurrences = DefaultDriverMinOccurrences
	}
	if o.Window <= 0 {
		o.Window = DefaultDriverWindow
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// AnalyzeDrivers measures how each sufficiently frequent tag within the
// lookback window shifts the Mood Composite and Daily Success Score. Each
// entry is scored against the rest of the dataset. Results are sorted by
// total impact, largest first.
func AnalyzeDrivers(entries []Entry, opts DriverOptions) []DriverRecord {
	opts = opts.withDefaults()
	sc := newScoringSet(entries)
	cutoff := opts.Now.Add(-opts.Window)

	type scored struct {
		tags    map[string]bool
		mood    float64
		moodOK  bool
		success float64
		succOK  bool
	}

	var window []scored
	counts := make(map[string]int)
	for i := range sc.entries {
		e := &sc.entries[i]
		if e.Timestamp.Before(cutoff) || e.Timestamp.After(opts.Now) {
			continue
		}
		cs := sc.score(i, ScoreOptions{})
		s := scored{
			tags:    make(map[string]bool, len(e.Tags)),
			mood:    cs.Mood.Value,
			moodOK:  cs.Mood.Valid,
			success: cs.Success.Value,
			succOK:  cs.Success.Valid,
		}
		for _, t := range NormalizeTags(e.Tags) {
			s.tags[t] = true
			counts[t]++
		}
		window = append(window, s)
	}

	var records []DriverRecord
	for tag, n := range counts {
		if n < opts.MinOccurrences {
			continue
		}

		var moodWith, moodWithout, succWith, succWithout []float64
		var withCount, withoutCount int
		for _, s := range window {
			if s.tags[tag] {
				withCount++
				if s.moodOK {
					moodWith = append(moodWith, s.mood)
				}
				if s.succOK {
					succWith = append(succWith, s.success)
				}
			} else {
				withoutCount++
				if s.moodOK {
					moodWithout = append(moodWithout, s.mood)
				}
				if s.succOK {
					succWithout = append(succWithout, s.success)
				}
			}
		}

		rec := DriverRecord{
			Tag:          tag,
			Occurrences:  n,
			WithCount:    withCount,
			WithoutCount: withoutCount,
			Confidence:   confidenceFor(withCount, withoutCount),
		}
		if len(moodWith) > 0 && len(moodWithout) > 0 {
			rec.MoodWith = mean(moodWith)
			rec.MoodWithout = mean(moodWithout)
			rec.MoodImpact = rec.MoodWith - rec.MoodWithout
		}
		if len(succWith) > 0 && len(succWithout) > 0 {
			rec.SuccessWith = mean(succWith)
			rec.SuccessWithout = mean(succWithout)
			rec.SuccessImpact = rec.SuccessWith - rec.SuccessWithout
		}
		rec.TotalImpact = math.Abs(rec.MoodImpact) + math.Abs(rec.SuccessImpact)
		rec.Effect = effectFor(rec.MoodImpact, rec.SuccessImpact)
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].TotalImpact != records[j].TotalImpact {
			return records[i].TotalImpact > records[j].TotalImpact
		}
		return records[i].Tag < records[j].Tag
	})
	return records
}

func confidenceFor(with, without int) Confidence {
	switch {
	case with >= highConfidenceSamples && without >= highConfidenceSamples:
		return ConfidenceHigh
	case with >= mediumConfidenceSamples && without >= mediumConfidenceSamples:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// effectFor classifies a tag by the sign of its larger impact.
func effectFor(mood, success float64) Effect {
	if math.Abs(mood)+math.Abs(success) < NeutralImpactThreshold {
		return EffectNeutral
	}
	dominant := mood
	if math.Abs(success) > math.Abs(mood) {
		dominant = success
	}
	if dominant > 0 {
		return EffectPositive
	}
	return EffectNegative
}

// DriversForTag returns the record for tag, matched case-insensitively.
func DriversForTag(records []DriverRecord, tag string) (DriverRecord, bool) {
	for _, r := range records {
		if strings.EqualFold(r.Tag, tag) {
			return r, true
		}
	}
	return DriverRecord{}, false
}
