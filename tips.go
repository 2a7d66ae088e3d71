package wellspring

import (
	"fmt"
	"math"
)

// Dimension names an entry field a tip condition can test.
type Dimension string

const (
	DimPositivity         Dimension = "positivity"
	DimEnergy             Dimension = "energy"
	DimFocus              Dimension = "focus"
	DimStress             Dimension = "stress"
	DimSleepHours         Dimension = "sleep_hours"
	DimFocusMinutes       Dimension = "focus_minutes"
	DimTasksCompleted     Dimension = "tasks_completed"
	DimSocialInteractions Dimension = "social_interactions"
)

// Dimensions returns every condition dimension.
func Dimensions() []Dimension {
	return []Dimension{
		DimPositivity, DimEnergy, DimFocus, DimStress,
		DimSleepHours, DimFocusMinutes, DimTasksCompleted, DimSocialInteractions,
	}
}

// Value reads the dimension from e. Optional fields that were not recorded
// report false.
func (d Dimension) Value(e *Entry) (float64, bool) {
	switch d {
	case DimPositivity:
		return e.Mood.Positivity, true
	case DimEnergy:
		return e.Mood.Energy, true
	case DimFocus:
		return e.Mood.Focus, true
	case DimStress:
		return e.Mood.Stress, true
	case DimSleepHours:
		if e.SleepHours == nil {
			return 0, false
		}
		return *e.SleepHours, true
	case DimFocusMinutes:
		if e.FocusMinutes == nil {
			return 0, false
		}
		return *e.FocusMinutes, true
	case DimTasksCompleted:
		if e.TasksCompleted == nil {
			return 0, false
		}
		return float64(*e.TasksCompleted), true
	case DimSocialInteractions:
		if e.SocialInteractions == nil {
			return 0, false
		}
		return float64(*e.SocialInteractions), true
	default:
		return 0, false
	}
}

// IsValid checks if d is a known dimension.
func (d Dimension) IsValid() bool {
	for _, v := range Dimensions() {
		if d == v {
			return true
		}
	}
	return false
}

// Operator is a threshold comparison.
type Operator string

const (
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpEqual        Operator = "="
)

const equalTolerance = 1e-9

// Compare applies the operator to v and threshold.
func (op Operator) Compare(v, threshold float64) (bool, error) {
	switch op {
	case OpLess:
		return v < threshold, nil
	case OpLessEqual:
		return v <= threshold, nil
	case OpGreater:
		return v > threshold, nil
	case OpGreaterEqual:
		return v >= threshold, nil
	case OpEqual:
		return math.Abs(v-threshold) <= equalTolerance, nil
	default:
		return false, fmt.Errorf("unknown operator %q", string(op))
	}
}

// Condition triggers a tip when an entry dimension compares true against
// Threshold.
type Condition struct {
	Dimension Dimension `json:"dimension"`
	Op        Operator  `json:"op"`
	Threshold float64   `json:"threshold"`
}

// Matches reports whether e satisfies the condition. Unrecorded fields and
// unknown operators never match.
func (c Condition) Matches(e *Entry) bool {
	v, ok := c.Dimension.Value(e)
	if !ok {
		return false
	}
	m, err := c.Op.Compare(v, c.Threshold)
	return err == nil && m
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %g", c.Dimension, c.Op, c.Threshold)
}

// Tip categories.
const (
	CategoryMindfulness      = "mindfulness"
	CategoryProductivity     = "productivity"
	CategoryPhysicalWellness = "physical-wellness"
	CategorySleep            = "sleep"
	CategorySocial           = "social"
	CategoryRecovery         = "recovery"
)

// OnboardingCategories are the categories shown before any check-in exists.
var OnboardingCategories = []string{CategoryMindfulness, CategoryProductivity, CategoryPhysicalWellness}

// Tip is a static coaching suggestion.
type Tip struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Text            string      `json:"text"`
	Action          string      `json:"action"`
	Conditions      []Condition `json:"conditions,omitempty"`
	Priority        Priority    `json:"priority"`
	Category        string      `json:"category"`
	DurationMinutes int         `json:"duration_minutes"`
	Contexts        []TimeOfDay `json:"contexts,omitempty"`
	RequiredTags    []string    `json:"required_tags,omitempty"`
}

// AppliesAt reports whether tod is among the tip's contexts.
func (t *Tip) AppliesAt(tod TimeOfDay) bool {
	for _, c := range t.Contexts {
		if c == tod {
			return true
		}
	}
	return false
}

// ValidateTip checks a catalog entry.
func ValidateTip(t *Tip) error {
	if t.ID == "" {
		return fmt.Errorf("tip: id is required")
	}
	if t.Priority.Rank() > PriorityLow.Rank() {
		return fmt.Errorf("tip %s: unknown priority %q", t.ID, t.Priority)
	}
	for _, c := range t.Conditions {
		if !c.Dimension.IsValid() {
			return fmt.Errorf("tip %s: unknown dimension %q", t.ID, c.Dimension)
		}
		if _, err := c.Op.Compare(0, 0); err != nil {
			return fmt.Errorf("tip %s: %w", t.ID, err)
		}
	}
	for _, tod := range t.Contexts {
		if !tod.IsValid() {
			return fmt.Errorf("tip %s: %w: %q", t.ID, ErrInvalidTimeOfDay, tod)
		}
	}
	return nil
}

// DefaultCatalog returns the built-in tips.
func DefaultCatalog() []Tip {
	return []Tip{
		{
			ID:              "box-breathing",
			Title:           "Box breathing",
			Text:            "Stress is running high. Four slow counts in, hold, out, hold.",
			Action:          "Breathe in for **4**, hold for **4**, out for **4**, hold for **4**. Repeat four rounds.",
			Conditions:      []Condition{{DimStress, OpGreaterEqual, 4}},
			Priority:        PriorityHigh,
			Category:        CategoryMindfulness,
			DurationMinutes: 2,
		},
		{
			ID:              "body-scan",
			Title:           "Two-minute body scan",
			Text:            "Notice where tension sits before it turns into a headache.",
			Action:          "Close your eyes and move attention from your feet to your scalp, relaxing each area.",
			Conditions:      []Condition{{DimStress, OpGreaterEqual, 3}, {DimPositivity, OpLessEqual, 2}},
			Priority:        PriorityMedium,
			Category:        CategoryMindfulness,
			DurationMinutes: 2,
			Contexts:        []TimeOfDay{TimeEvening, TimeNight},
		},
		{
			ID:              "gratitude-three",
			Title:           "Three good things",
			Text:            "Low mood narrows attention. Naming small wins widens it again.",
			Action:          "Write down three things that went well today and why.",
			Conditions:      []Condition{{DimPositivity, OpLess, 2.5}},
			Priority:        PriorityMedium,
			Category:        CategoryMindfulness,
			DurationMinutes: 5,
			Contexts:        []TimeOfDay{TimeEvening},
		},
		{
			ID:              "single-task-sprint",
			Title:           "Single-task sprint",
			Text:            "Focus is strong right now. Spend it on the hardest item.",
			Action:          "Pick one task, close other tabs, and set a **25 minute** timer.",
			Conditions:      []Condition{{DimFocus, OpGreaterEqual, 4}, {DimEnergy, OpGreaterEqual, 3}},
			Priority:        PriorityHigh,
			Category:        CategoryProductivity,
			DurationMinutes: 25,
			Contexts:        []TimeOfDay{TimeMorning, TimeAfternoon},
			RequiredTags:    []string{"work", "study"},
		},
		{
			ID:              "smallest-next-step",
			Title:           "Smallest next step",
			Text:            "When focus is thin, shrink the task instead of forcing it.",
			Action:          "Write the next physical action for your current task in under ten words, then do only that.",
			Conditions:      []Condition{{DimFocus, OpLessEqual, 2}},
			Priority:        PriorityMedium,
			Category:        CategoryProductivity,
			DurationMinutes: 5,
			RequiredTags:    []string{"work"},
		},
		{
			ID:              "plan-tomorrow",
			Title:           "Plan tomorrow's top three",
			Text:            "A short plan tonight makes tomorrow's start easier.",
			Action:          "List the three outcomes that would make tomorrow a good day.",
			Conditions:      []Condition{{DimTasksCompleted, OpLess, 2}},
			Priority:        PriorityLow,
			Category:        CategoryProductivity,
			DurationMinutes: 5,
			Contexts:        []TimeOfDay{TimeEvening},
		},
		{
			ID:              "brisk-walk",
			Title:           "Ten-minute brisk walk",
			Text:            "Low energy often lifts with movement rather than rest.",
			Action:          "Walk briskly outside for ten minutes, ideally in daylight.",
			Conditions:      []Condition{{DimEnergy, OpLessEqual, 2}},
			Priority:        PriorityHigh,
			Category:        CategoryPhysicalWellness,
			DurationMinutes: 10,
			Contexts:        []TimeOfDay{TimeMorning, TimeAfternoon},
		},
		{
			ID:              "stretch-break",
			Title:           "Desk stretch",
			Text:            "Long focus blocks stiffen the neck and shoulders.",
			Action:          "Roll your shoulders, stretch your neck side to side, and stand for a minute.",
			Conditions:      []Condition{{DimFocusMinutes, OpGreaterEqual, 90}},
			Priority:        PriorityMedium,
			Category:        CategoryPhysicalWellness,
			DurationMinutes: 3,
			RequiredTags:    []string{"work"},
		},
		{
			ID:              "hydrate",
			Title:           "Drink a glass of water",
			Text:            "Mild dehydration feels like fatigue.",
			Action:          "Drink a full glass of water now.",
			Conditions:      []Condition{{DimEnergy, OpLess, 3}},
			Priority:        PriorityLow,
			Category:        CategoryPhysicalWellness,
			DurationMinutes: 1,
		},
		{
			ID:              "wind-down",
			Title:           "Screen-free wind-down",
			Text:            "Short sleep is dragging on tomorrow's energy.",
			Action:          "Put screens away **30 minutes** before bed and dim the lights.",
			Conditions:      []Condition{{DimSleepHours, OpLess, 6}},
			Priority:        PriorityHigh,
			Category:        CategorySleep,
			DurationMinutes: 30,
			Contexts:        []TimeOfDay{TimeEvening, TimeNight},
		},
		{
			ID:              "consistent-wake",
			Title:           "Keep a consistent wake time",
			Text:            "A fixed wake time steadies sleep more than an early bedtime.",
			Action:          "Set tomorrow's alarm for the same time as today.",
			Conditions:      []Condition{{DimSleepHours, OpLess, 7}},
			Priority:        PriorityLow,
			Category:        CategorySleep,
			DurationMinutes: 1,
			Contexts:        []TimeOfDay{TimeNight},
		},
		{
			ID:              "reach-out",
			Title:           "Message a friend",
			Text:            "Connection has been low lately.",
			Action:          "Send a short message to someone you have not talked to this week.",
			Conditions:      []Condition{{DimSocialInteractions, OpLess, 1}},
			Priority:        PriorityMedium,
			Category:        CategorySocial,
			DurationMinutes: 5,
		},
		{
			ID:              "share-a-win",
			Title:           "Share a win",
			Text:            "Good moods grow when shared.",
			Action:          "Tell someone about something that went well today.",
			Conditions:      []Condition{{DimPositivity, OpGreaterEqual, 4}},
			Priority:        PriorityLow,
			Category:        CategorySocial,
			DurationMinutes: 5,
			RequiredTags:    []string{"friends", "family"},
		},
		{
			ID:              "micro-rest",
			Title:           "Take a real break",
			Text:            "High stress with low energy is a signal to stop, not push.",
			Action:          "Step away from screens for **five minutes**. No phone.",
			Conditions:      []Condition{{DimStress, OpGreaterEqual, 3}, {DimEnergy, OpLessEqual, 2}},
			Priority:        PriorityHigh,
			Category:        CategoryRecovery,
			DurationMinutes: 5,
		},
		{
			ID:              "nature-minutes",
			Title:           "Get outside",
			Text:            "A few minutes outdoors helps reset after a draining stretch.",
			Action:          "Spend five minutes outside, noticing what you can see and hear.",
			Conditions:      []Condition{{DimPositivity, OpLessEqual, 2}},
			Priority:        PriorityLow,
			Category:        CategoryRecovery,
			DurationMinutes: 5,
			Contexts:        []TimeOfDay{TimeMorning, TimeAfternoon},
			RequiredTags:    []string{"exercise", "outdoors"},
		},
	}
}
