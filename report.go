package wellspring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Report bundles every analysis for one profile.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Profile     string          `json:"profile"`
	EntryCount  int             `json:"entry_count"`
	Latest      *CompositeScore `json:"latest,omitempty"`
	Streak      Streak          `json:"streak"`
	Drivers     []DriverRecord  `json:"drivers"`
	Heatmap     Heatmap         `json:"heatmap"`
	Tips        []SessionTip    `json:"tips"`
	Preferences Preferences     `json:"preferences"`
}

// Report runs all analyses and ranks maxTips tips.
func (c *Client) Report(ctx context.Context, maxTips int) (*Report, error) {
	all, err := c.store.ListEntries(ctx, EntryFilter{})
	if err != nil {
		return nil, err
	}
	now := c.now()

	r := &Report{
		GeneratedAt: now,
		Profile:     c.config.Profile,
		EntryCount:  len(all),
		Streak:      CalculateStreak(all, now, c.loc),
		Drivers: AnalyzeDrivers(all, DriverOptions{
			MinOccurrences: c.config.DriverMinOccurrences,
			Window:         c.config.DriverWindow,
			Now:            now,
		}),
		Heatmap: BuildHeatmap(all, c.loc),
	}

	if len(all) > 0 {
		latest, err := ComputeScore(&all[len(all)-1], all, ScoreOptions{})
		if err != nil && !errors.Is(err, ErrInvalidEntry) {
			return nil, err
		}
		r.Latest = latest
	}

	if r.Tips, err = c.Tips(ctx, maxTips); err != nil {
		return nil, err
	}
	r.Preferences = c.rec.Preferences()
	return r, nil
}

// Markdown renders the report for terminal display.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Wellness report: %s\n\n", r.Profile)
	fmt.Fprintf(&b, "_%d check-ins, generated %s_\n\n", r.EntryCount, r.GeneratedAt.Format("Mon Jan 2 15:04"))

	b.WriteString("## Today\n\n")
	switch {
	case r.Latest == nil:
		b.WriteString("No check-ins yet.\n\n")
	default:
		writeScoreMarkdown(&b, r.Latest)
	}

	b.WriteString("## Streak\n\n")
	fmt.Fprintf(&b, "- Current: **%d** days", r.Streak.Current)
	if !r.Streak.IsActive && r.Streak.Current > 0 {
		b.WriteString(" (check in today to keep it)")
	}
	fmt.Fprintf(&b, "\n- Longest: %d days\n\n", r.Streak.Longest)

	b.WriteString("## Drivers\n\n")
	if len(r.Drivers) == 0 {
		b.WriteString("Not enough tagged check-ins yet.\n\n")
	} else {
		b.WriteString("| Tag | Effect | Mood Δ | Success Δ | Confidence |\n|---|---|---|---|---|\n")
		for _, d := range r.Drivers {
			fmt.Fprintf(&b, "| %s | %s | %+.2f | %+.2f | %s |\n", d.Tag, d.Effect, d.MoodImpact, d.SuccessImpact, d.Confidence)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Power hours\n\n")
	if len(r.Heatmap.Peaks) == 0 {
		b.WriteString("No data yet.\n\n")
	} else {
		for _, p := range r.Heatmap.Peaks {
			fmt.Fprintf(&b, "- %s %02d:00, %.1f/5 over %d check-ins\n", p.Weekday, p.Hour, p.Score, p.Count)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Suggestions\n\n")
	for _, t := range r.Tips {
		fmt.Fprintf(&b, "- **[%s] %s** (%d min): %s\n", t.Ref, t.Tip.Title, t.Tip.DurationMinutes, t.Tip.Action)
	}
	return b.String()
}

func writeScoreMarkdown(b *strings.Builder, s *CompositeScore) {
	if s.Mood.Valid {
		fmt.Fprintf(b, "- Mood composite: **%+.2f**\n", s.Mood.Value)
	} else {
		fmt.Fprintf(b, "- Mood composite: %s\n", s.Mood.Reason)
	}
	if s.Success.Valid {
		fmt.Fprintf(b, "- Daily success: **%+.2f**\n", s.Success.Value)
	} else {
		fmt.Fprintf(b, "- Daily success: %s\n", s.Success.Reason)
	}
	b.WriteString("\n")
}
