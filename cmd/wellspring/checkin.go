package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/wellspring"
	"github.com/spf13/cobra"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Record a mood check-in",
	Long: `Record a check-in with four mood ratings from 0 to 5.

Stress is the one dimension where higher is worse. Optional metrics feed the
Daily Success Score: focused minutes and tasks (learning momentum), sleep and
recovery (recovery index), and social interactions (connection).

Example:
  wellspring checkin -p 4 -e 3 -f 4 -s 2 --tags work,coffee
  wellspring checkin -p 2 -e 1 -f 2 -s 4 --sleep 5.5 --social 0
  wellspring checkin -p 3 -e 3 -f 3 -s 3 --at "2025-03-12 08:30" --json`,
	RunE: runCheckin,
}

const unsetFlag = -1

var (
	checkinPositivity float64
	checkinEnergy     float64
	checkinFocus      float64
	checkinStress     float64
	checkinTags       string
	checkinTimeOfDay  string
	checkinAt         string
	checkinFocusMin   float64
	checkinTasks      int
	checkinSleep      float64
	checkinRecovery   bool
	checkinSocial     int
)

func init() {
	checkinCmd.Flags().Float64VarP(&checkinPositivity, "positivity", "p", unsetFlag, "Positivity 0-5 (required)")
	checkinCmd.Flags().Float64VarP(&checkinEnergy, "energy", "e", unsetFlag, "Energy 0-5 (required)")
	checkinCmd.Flags().Float64VarP(&checkinFocus, "focus", "f", unsetFlag, "Focus 0-5 (required)")
	checkinCmd.Flags().Float64VarP(&checkinStress, "stress", "s", unsetFlag, "Stress 0-5, higher is worse (required)")
	checkinCmd.Flags().StringVarP(&checkinTags, "tags", "t", "", "Comma-separated activity tags")
	checkinCmd.Flags().StringVar(&checkinTimeOfDay, "time-of-day", "", "morning, afternoon, evening, or night (default: from the clock)")
	checkinCmd.Flags().StringVar(&checkinAt, "at", "", "Check-in time, \"2006-01-02 15:04\" or RFC3339 (default: now)")
	checkinCmd.Flags().Float64Var(&checkinFocusMin, "focus-minutes", unsetFlag, "Minutes of focused work")
	checkinCmd.Flags().IntVar(&checkinTasks, "tasks", unsetFlag, "Tasks completed")
	checkinCmd.Flags().Float64Var(&checkinSleep, "sleep", unsetFlag, "Hours slept last night")
	checkinCmd.Flags().BoolVar(&checkinRecovery, "recovery", false, "A deliberate recovery action was taken")
	checkinCmd.Flags().IntVar(&checkinSocial, "social", unsetFlag, "Meaningful social interactions")
}

func resetCheckinFlags() {
	checkinPositivity, checkinEnergy, checkinFocus, checkinStress = unsetFlag, unsetFlag, unsetFlag, unsetFlag
	checkinTags, checkinTimeOfDay, checkinAt = "", "", ""
	checkinFocusMin, checkinSleep = unsetFlag, unsetFlag
	checkinTasks, checkinSocial = unsetFlag, unsetFlag
	checkinRecovery = false
}

func runCheckin(cmd *cobra.Command, args []string) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"positivity", checkinPositivity},
		{"energy", checkinEnergy},
		{"focus", checkinFocus},
		{"stress", checkinStress},
	} {
		if f.v == unsetFlag {
			return fmt.Errorf("--%s is required", f.name)
		}
	}

	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	params := wellspring.CheckInParams{
		TimeOfDay: wellspring.TimeOfDay(strings.ToLower(checkinTimeOfDay)),
		Mood: wellspring.Mood{
			Positivity: checkinPositivity,
			Energy:     checkinEnergy,
			Focus:      checkinFocus,
			Stress:     checkinStress,
		},
		Tags: splitAndTrim(checkinTags),
	}
	if checkinAt != "" {
		ts, err := parseCheckinTime(checkinAt, client.Location())
		if err != nil {
			return err
		}
		params.Timestamp = ts
	}
	if checkinFocusMin != unsetFlag {
		v := checkinFocusMin
		params.FocusMinutes = &v
	}
	if checkinTasks != unsetFlag {
		v := checkinTasks
		params.TasksCompleted = &v
	}
	if checkinSleep != unsetFlag {
		v := checkinSleep
		params.SleepHours = &v
	}
	if checkinRecovery {
		v := true
		params.RecoveryAction = &v
	}
	if checkinSocial != unsetFlag {
		v := checkinSocial
		params.SocialInteractions = &v
	}

	res, err := client.CheckIn(cmd.Context(), params)
	if err != nil {
		return fmt.Errorf("check in: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, res)
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Checked in: %s", res.Entry.ID)
	printField(out, "When:", fmt.Sprintf("%s (%s)", res.Entry.Timestamp.In(client.Location()).Format("Mon Jan 2 15:04"), res.Entry.TimeOfDay))
	printField(out, "Mood:", fmt.Sprintf("positivity %.1f, energy %.1f, focus %.1f, stress %.1f",
		res.Entry.Mood.Positivity, res.Entry.Mood.Energy, res.Entry.Mood.Focus, res.Entry.Mood.Stress))
	if len(res.Entry.Tags) > 0 {
		printField(out, "Tags:", strings.Join(res.Entry.Tags, ", "))
	}
	fmt.Fprintln(out)
	outputScoreLines(out, &res.Score)
	return nil
}

var checkinTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseCheckinTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range checkinTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --at %q: use \"2006-01-02 15:04\" or RFC3339", s)
}
