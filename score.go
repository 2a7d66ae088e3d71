package wellspring

import (
	"fmt"
	"math"
	"sort"
)

// Relative Mood Composite coefficients. Stress counts against the composite.
// The effective weights are these scaled so their absolute values sum to 1.
const (
	moodCoefPositivity = 0.4
	moodCoefEnergy     = 0.3
	moodCoefFocus      = 0.2
	moodCoefStress     = -0.2
)

// Daily Success Score weights. They sum to exactly 1.
const (
	SuccessWeightLearning   = 0.5
	SuccessWeightRecovery   = 0.3
	SuccessWeightConnection = 0.2
)

const (
	// TasksMultiplier converts completed tasks into focus-minute equivalents
	// for Learning Momentum.
	TasksMultiplier = 10.0

	// ConnectionWindow is the number of trailing entries, current included,
	// averaged into the Connection component.
	ConnectionWindow = 7

	weightTolerance = 1e-3

	unsavedEntryID = "\x00unsaved"
)

// MoodWeights are the effective Mood Composite weights.
type MoodWeights struct {
	Positivity float64
	Energy     float64
	Focus      float64
	Stress     float64
}

// AbsSum returns the sum of absolute weights.
func (w MoodWeights) AbsSum() float64 {
	return math.Abs(w.Positivity) + math.Abs(w.Energy) + math.Abs(w.Focus) + math.Abs(w.Stress)
}

// SuccessWeights are the Daily Success Score weights.
type SuccessWeights struct {
	Learning   float64
	Recovery   float64
	Connection float64
}

// Sum returns the sum of the weights.
func (w SuccessWeights) Sum() float64 {
	return w.Learning + w.Recovery + w.Connection
}

var (
	moodWeights    MoodWeights
	successWeights = SuccessWeights{
		Learning:   SuccessWeightLearning,
		Recovery:   SuccessWeightRecovery,
		Connection: SuccessWeightConnection,
	}
)

func init() {
	raw := MoodWeights{
		Positivity: moodCoefPositivity,
		Energy:     moodCoefEnergy,
		Focus:      moodCoefFocus,
		Stress:     moodCoefStress,
	}
	total := raw.AbsSum()
	moodWeights = MoodWeights{
		Positivity: raw.Positivity / total,
		Energy:     raw.Energy / total,
		Focus:      raw.Focus / total,
		Stress:     raw.Stress / total,
	}
	if math.Abs(moodWeights.AbsSum()-1) > weightTolerance {
		panic(fmt.Sprintf("wellspring: mood weights sum to %.4f, want 1", moodWeights.AbsSum()))
	}
	if math.Abs(successWeights.Sum()-1) > weightTolerance {
		panic(fmt.Sprintf("wellspring: success weights sum to %.4f, want 1", successWeights.Sum()))
	}
}

// CurrentMoodWeights returns the effective Mood Composite weights.
func CurrentMoodWeights() MoodWeights { return moodWeights }

// CurrentSuccessWeights returns the Daily Success Score weights.
func CurrentSuccessWeights() SuccessWeights { return successWeights }

// MoodComposite is the weighted combination of normalized mood dimensions.
type MoodComposite struct {
	// Value weighs the z-scores by 0.4, 0.3, 0.2 and -0.2 divided by 1.1, so
	// the effective weights are about 0.364, 0.273, 0.182 and -0.182.
	Value      float64  `json:"value"`
	Positivity Baseline `json:"positivity"`
	Energy     Baseline `json:"energy"`
	Focus      Baseline `json:"focus"`
	Stress     Baseline `json:"stress"`
	Samples    int      `json:"samples"`
	Valid      bool     `json:"valid"`
	Reason     string   `json:"reason,omitempty"`
}

// Component is one Daily Success sub-score with its raw value and z-score.
type Component struct {
	Raw    float64 `json:"raw"`
	ZScore float64 `json:"z_score"`
	Valid  bool    `json:"valid"`
}

// DailySuccess is the weighted combination of Learning Momentum, Recovery
// Index, and Connection.
type DailySuccess struct {
	Value            float64   `json:"value"`
	LearningMomentum Component `json:"learning_momentum"`
	RecoveryIndex    Component `json:"recovery_index"`
	Connection       Component `json:"connection"`
	Samples          int       `json:"samples"`
	Valid            bool      `json:"valid"`
	Reason           string    `json:"reason,omitempty"`
}

// CompositeScore bundles both indices for one entry.
type CompositeScore struct {
	EntryID   string        `json:"entry_id"`
	TimeOfDay TimeOfDay     `json:"time_of_day"`
	Mood      MoodComposite `json:"mood"`
	Success   DailySuccess  `json:"success"`
}

// Valid reports whether both indices had enough history.
func (c *CompositeScore) Valid() bool {
	return c.Mood.Valid && c.Success.Valid
}

// ScoreOptions tunes composite computation.
type ScoreOptions struct {
	// SameTimeOfDay restricts the mood baseline to entries from the same
	// time-of-day bucket as the scored entry.
	SameTimeOfDay bool
}

// ComputeScore scores current against every other entry in all. Entries in
// all that fail validation are left out of the history; an invalid current
// entry is an error.
func ComputeScore(current *Entry, all []Entry, opts ScoreOptions) (*CompositeScore, error) {
	if err := ValidateEntry(current); err != nil {
		return nil, err
	}
	subject := *current
	if subject.ID == "" {
		subject.ID = unsavedEntryID
	}
	set := make([]Entry, 0, len(all)+1)
	set = append(set, subject)
	for i := range all {
		if all[i].ID == subject.ID {
			continue
		}
		set = append(set, all[i])
	}
	sc := newScoringSet(set)
	score := sc.score(sc.indexOf(subject.ID), opts)
	score.EntryID = current.ID
	return &score, nil
}

// ScoreAll scores every valid entry against the rest of the set, oldest first.
func ScoreAll(entries []Entry, opts ScoreOptions) []CompositeScore {
	sc := newScoringSet(entries)
	out := make([]CompositeScore, len(sc.entries))
	for i := range sc.entries {
		out[i] = sc.score(i, opts)
	}
	return out
}

// LearningMomentum returns focused minutes plus TasksMultiplier per task.
func LearningMomentum(e *Entry) float64 {
	var v float64
	if e.FocusMinutes != nil {
		v += *e.FocusMinutes
	}
	if e.TasksCompleted != nil {
		v += TasksMultiplier * float64(*e.TasksCompleted)
	}
	return v
}

// RecoveryIndex returns hours slept plus one when a recovery action was taken.
func RecoveryIndex(e *Entry) float64 {
	var v float64
	if e.SleepHours != nil {
		v += *e.SleepHours
	}
	if e.RecoveryAction != nil && *e.RecoveryAction {
		v++
	}
	return v
}

// scoringSet holds a validated, time-ordered entry set with its raw
// per-entry series precomputed so each entry can be scored against the rest.
type scoringSet struct {
	entries []Entry
	lm      []float64
	ri      []float64
	cn      []float64
}

func newScoringSet(entries []Entry) *scoringSet {
	valid := ValidEntries(entries)
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.Before(valid[j].Timestamp)
	})

	s := &scoringSet{
		entries: valid,
		lm:      make([]float64, len(valid)),
		ri:      make([]float64, len(valid)),
		cn:      make([]float64, len(valid)),
	}
	for i := range valid {
		s.lm[i] = LearningMomentum(&valid[i])
		s.ri[i] = RecoveryIndex(&valid[i])
		s.cn[i] = s.trailingSocial(i)
	}
	return s
}

// trailingSocial averages social interactions over the ConnectionWindow
// entries ending at i. Entries without a count are skipped.
func (s *scoringSet) trailingSocial(i int) float64 {
	start := i - ConnectionWindow + 1
	if start < 0 {
		start = 0
	}
	var sum float64
	var n int
	for j := start; j <= i; j++ {
		if c := s.entries[j].SocialInteractions; c != nil {
			sum += float64(*c)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (s *scoringSet) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// score computes both indices for entry i using every other entry as history.
func (s *scoringSet) score(i int, opts ScoreOptions) CompositeScore {
	cur := &s.entries[i]

	var pos, eng, foc, str []float64
	lm := make([]float64, 0, len(s.entries))
	ri := make([]float64, 0, len(s.entries))
	cn := make([]float64, 0, len(s.entries))
	for j := range s.entries {
		if j == i {
			continue
		}
		h := &s.entries[j]
		lm = append(lm, s.lm[j])
		ri = append(ri, s.ri[j])
		cn = append(cn, s.cn[j])
		if opts.SameTimeOfDay && h.TimeOfDay != cur.TimeOfDay {
			continue
		}
		pos = append(pos, h.Mood.Positivity)
		eng = append(eng, h.Mood.Energy)
		foc = append(foc, h.Mood.Focus)
		str = append(str, h.Mood.Stress)
	}

	return CompositeScore{
		EntryID:   cur.ID,
		TimeOfDay: cur.TimeOfDay,
		Mood:      moodComposite(cur, pos, eng, foc, str, opts),
		Success:   dailySuccess(s.lm[i], s.ri[i], s.cn[i], lm, ri, cn),
	}
}

func moodComposite(cur *Entry, pos, eng, foc, str []float64, opts ScoreOptions) MoodComposite {
	mc := MoodComposite{
		Positivity: Normalize(cur.Mood.Positivity, pos),
		Energy:     Normalize(cur.Mood.Energy, eng),
		Focus:      Normalize(cur.Mood.Focus, foc),
		Stress:     Normalize(cur.Mood.Stress, str),
		Samples:    len(pos),
	}
	mc.Valid = mc.Positivity.Valid && mc.Energy.Valid && mc.Focus.Valid && mc.Stress.Valid
	if !mc.Valid {
		scope := "other check-ins"
		if opts.SameTimeOfDay {
			scope = fmt.Sprintf("other %s check-ins", cur.TimeOfDay)
		}
		mc.Reason = fmt.Sprintf("still building your baseline: need %d %s, have %d", MinBaselineSamples, scope, len(pos))
		return mc
	}
	w := moodWeights
	mc.Value = w.Positivity*mc.Positivity.ZScore +
		w.Energy*mc.Energy.ZScore +
		w.Focus*mc.Focus.ZScore +
		w.Stress*mc.Stress.ZScore
	return mc
}

func dailySuccess(lmCur, riCur, cnCur float64, lm, ri, cn []float64) DailySuccess {
	zlm := Normalize(lmCur, lm)
	zri := Normalize(riCur, ri)
	zcn := Normalize(cnCur, cn)

	ds := DailySuccess{
		LearningMomentum: Component{Raw: lmCur, ZScore: zlm.ZScore, Valid: zlm.Valid},
		RecoveryIndex:    Component{Raw: riCur, ZScore: zri.ZScore, Valid: zri.Valid},
		Connection:       Component{Raw: cnCur, ZScore: zcn.ZScore, Valid: zcn.Valid},
		Samples:          len(lm),
	}
	ds.Valid = zlm.Valid && zri.Valid && zcn.Valid
	if !ds.Valid {
		ds.Reason = fmt.Sprintf("still building your baseline: need %d other check-ins, have %d", MinBaselineSamples, len(lm))
		return ds
	}
	w := successWeights
	ds.Value = w.Learning*zlm.ZScore + w.Recovery*zri.ZScore + w.Connection*zcn.ZScore
	return ds
}
