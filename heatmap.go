package wellspring

import (
	"sort"
	"time"
)

const (
	// ProductivityMidpoint is the productivity of an entry with a neutral
	// Mood Composite.
	ProductivityMidpoint = 2.5
	// ProductivityScale maps one Mood Composite unit onto the 0-5 scale.
	ProductivityScale = 1.25

	heatmapExtremeFraction = 0.10
)

// HeatCell is one weekday/hour bucket. Count distinguishes an empty cell from
// a genuinely low one.
type HeatCell struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// HeatPoint identifies a scored cell.
type HeatPoint struct {
	Weekday time.Weekday `json:"weekday"`
	Hour    int          `json:"hour"`
	Score   float64      `json:"score"`
	Count   int          `json:"count"`
}

// Heatmap is a weekday × hour grid of averaged productivity. Weekday 0 is Sunday.
type Heatmap struct {
	Cells [7][24]HeatCell `json:"cells"`
	Peaks []HeatPoint     `json:"peaks"`
	Lows  []HeatPoint     `json:"lows"`
}

// Productivity maps a Mood Composite onto the bounded 0-5 heatmap scale.
func Productivity(mc float64) float64 {
	return clamp(ProductivityMidpoint+ProductivityScale*mc, 0, 5)
}

// BuildHeatmap buckets entries by local weekday and hour in loc and averages
// their productivity. A nil loc means time.Local.
func BuildHeatmap(entries []Entry, loc *time.Location) Heatmap {
	if loc == nil {
		loc = time.Local
	}
	sc := newScoringSet(entries)

	var sums [7][24]float64
	var hm Heatmap
	for i := range sc.entries {
		cs := sc.score(i, ScoreOptions{})
		var mc float64
		if cs.Mood.Valid {
			mc = cs.Mood.Value
		}
		ts := sc.entries[i].Timestamp.In(loc)
		wd, hr := ts.Weekday(), ts.Hour()
		sums[wd][hr] += Productivity(mc)
		hm.Cells[wd][hr].Count++
	}

	var filled []HeatPoint
	for wd := range hm.Cells {
		for hr := range hm.Cells[wd] {
			c := &hm.Cells[wd][hr]
			if c.Count == 0 {
				continue
			}
			c.Score = sums[wd][hr] / float64(c.Count)
			filled = append(filled, HeatPoint{Weekday: time.Weekday(wd), Hour: hr, Score: c.Score, Count: c.Count})
		}
	}
	if len(filled) == 0 {
		return hm
	}

	n := int(float64(len(filled)) * heatmapExtremeFraction)
	if n < 1 {
		n = 1
	}
	sort.SliceStable(filled, func(i, j int) bool { return filled[i].Score > filled[j].Score })
	hm.Peaks = append([]HeatPoint(nil), filled[:n]...)

	lows := make([]HeatPoint, n)
	for i := 0; i < n; i++ {
		lows[i] = filled[len(filled)-1-i]
	}
	hm.Lows = lows
	return hm
}

// Cell returns the cell for a weekday and hour.
func (h *Heatmap) Cell(wd time.Weekday, hour int) HeatCell {
	if wd < 0 || int(wd) > 6 || hour < 0 || hour > 23 {
		return HeatCell{}
	}
	return h.Cells[wd][hour]
}

// Filled returns the number of cells holding at least one entry.
func (h *Heatmap) Filled() int {
	n := 0
	for wd := range h.Cells {
		for hr := range h.Cells[wd] {
			if h.Cells[wd][hr].Count > 0 {
				n++
			}
		}
	}
	return n
}
