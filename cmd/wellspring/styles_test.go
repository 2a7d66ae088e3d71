package main

import (
	"strings"
	"testing"

	"github.com/hyperengineering/wellspring"
)

// setMockTTY overrides TTY detection and returns a cleanup that restores
// real detection.
func setMockTTY(value bool) func() {
	testIsTTYMutex.Lock()
	testIsTTYOverride = &value
	testIsTTYMutex.Unlock()
	return func() {
		testIsTTYMutex.Lock()
		testIsTTYOverride = nil
		testIsTTYMutex.Unlock()
	}
}

func TestRenderTable_TTY_HasBorders(t *testing.T) {
	defer setMockTTY(true)()

	result := renderTable([]string{"TAG", "EFFECT"}, [][]string{
		{"run", "positive"},
		{"late-night", "negative"},
	})

	for _, want := range []string{"TAG", "EFFECT", "run", "late-night", "negative"} {
		if !strings.Contains(result, want) {
			t.Errorf("table should contain %q", want)
		}
	}
	if !strings.ContainsAny(result, "─│╭╮╰╯") {
		t.Error("TTY table should contain border characters")
	}
}

func TestRenderTable_NonTTY_PlainColumns(t *testing.T) {
	defer setMockTTY(false)()

	result := renderTable([]string{"TAG", "EFFECT"}, [][]string{
		{"run", "positive"},
		{"meditation", "neutral"},
	})

	if strings.ContainsAny(result, "─│╭╮╰╯") {
		t.Errorf("plain table should not contain borders:\n%s", result)
	}
	lines := strings.Split(result, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), result)
	}
	// Columns line up on the widest cell.
	col := strings.Index(lines[0], "EFFECT")
	if strings.Index(lines[1], "positive") != col || strings.Index(lines[2], "neutral") != col {
		t.Errorf("second column not aligned:\n%s", result)
	}
}

func TestRenderTable_Edges(t *testing.T) {
	defer setMockTTY(false)()

	tests := []struct {
		name    string
		headers []string
		rows    [][]string
		want    []string
	}{
		{"no rows", []string{"A", "B"}, nil, []string{"A", "B"}},
		{"no headers", nil, [][]string{{"x", "y"}}, []string{"x", "y"}},
		{"ragged rows", []string{"A"}, [][]string{{"1", "2", "3"}}, []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := renderTable(tt.headers, tt.rows)
			for _, want := range tt.want {
				if !strings.Contains(result, want) {
					t.Errorf("result %q should contain %q", result, want)
				}
			}
		})
	}
}

func TestRenderPanel(t *testing.T) {
	t.Run("tty", func(t *testing.T) {
		defer setMockTTY(true)()
		result := renderPanel("Streak", "Current: 3 days")
		if !strings.Contains(result, "Streak") || !strings.Contains(result, "Current: 3 days") {
			t.Errorf("panel missing content:\n%s", result)
		}
		if !strings.ContainsAny(result, "╭╮╰╯") {
			t.Error("TTY panel should have rounded corners")
		}
	})

	t.Run("plain", func(t *testing.T) {
		defer setMockTTY(false)()
		if got := renderPanel("Streak", "Current: 3 days\n"); got != "Streak\nCurrent: 3 days" {
			t.Errorf("renderPanel = %q", got)
		}
		if got := renderPanel("", "body"); got != "body" {
			t.Errorf("untitled renderPanel = %q", got)
		}
	})
}

func TestRenderErrorPanel_NonTTY(t *testing.T) {
	defer setMockTTY(false)()

	result := renderErrorPanel("Invalid check-in", "stress: 6.00 outside [0,5]", "Mood values are 0 to 5.")
	for _, want := range []string{"Invalid check-in", "Context: stress", "Suggestion: Mood values"} {
		if !strings.Contains(result, want) {
			t.Errorf("error panel should contain %q:\n%s", want, result)
		}
	}

	if got := renderErrorPanel("boom", "", ""); got != "boom" {
		t.Errorf("bare error panel = %q", got)
	}
}

func TestRenderErrorPanel_TTY(t *testing.T) {
	defer setMockTTY(true)()

	result := renderErrorPanel("Invalid check-in", "energy", "")
	if !strings.Contains(result, iconError) {
		t.Error("TTY error panel should include the error icon")
	}
	if strings.Contains(result, "Suggestion:") {
		t.Error("empty suggestion should be omitted")
	}
}

func TestHeatCell(t *testing.T) {
	defer setMockTTY(false)()

	tests := []struct {
		score float64
		count int
		want  string
	}{
		{0, 0, " "},
		{4.9, 0, " "},
		{0, 1, "·"},
		{1.5, 2, "░"},
		{2.5, 1, "▒"},
		{3.5, 1, "▓"},
		{5, 3, "█"},
		{-1, 1, "·"},
	}
	for _, tt := range tests {
		if got := heatCell(tt.score, tt.count); got != tt.want {
			t.Errorf("heatCell(%v, %d) = %q, want %q", tt.score, tt.count, got, tt.want)
		}
	}
}

func TestRenderHeatGrid_Layout(t *testing.T) {
	defer setMockTTY(false)()

	var hm wellspring.Heatmap
	hm.Cells[3][9] = wellspring.HeatCell{Score: 5, Count: 1}

	grid := renderHeatGrid(&hm)
	lines := strings.Split(grid, "\n")
	if len(lines) != 8 {
		t.Fatalf("grid has %d lines, want hour header plus 7 weekdays", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Sun") || !strings.HasPrefix(lines[7], "Sat") {
		t.Errorf("weekday rows out of order:\n%s", grid)
	}
	wed := []rune(lines[4])
	if string(wed[5+9]) != "█" {
		t.Errorf("Wednesday 09:00 cell = %q, want █", string(wed[5+9]))
	}
}

func TestHasMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Take a **short** walk", true},
		{"- step one", true},
		{"Breathe in for four counts", false},
	}
	for _, tt := range tests {
		if got := hasMarkdown(tt.in); got != tt.want {
			t.Errorf("hasMarkdown(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderMarkdown_NonTTYPassThrough(t *testing.T) {
	defer setMockTTY(false)()

	in := "# Wellness report\n\n- item"
	if got := renderMarkdown(in); got != in {
		t.Errorf("renderMarkdown = %q, want input unchanged", got)
	}
}

func TestBanner(t *testing.T) {
	if !strings.Contains(renderBanner(), "WELLSPRING") {
		t.Error("banner should contain WELLSPRING")
	}
	if !strings.Contains(renderBannerWithTagline(), version) {
		t.Error("banner with tagline should contain the version")
	}
}
