package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperengineering/wellspring"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with wellspring tools.
type Server struct {
	client    *wellspring.Client
	mcpServer *server.MCPServer
}

// ToolResult represents the result of a tool call.
type ToolResult struct {
	Content string
	IsError bool
}

// ToolInfo represents a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer creates a new MCP server with wellspring tools registered.
func NewServer(client *wellspring.Client) *Server {
	s := &Server{client: client}

	s.mcpServer = server.NewMCPServer(
		"wellspring",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// HandleMessage processes a raw JSON-RPC message and returns a response.
// This is primarily for testing the MCP protocol layer.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: "wellspring_checkin", Description: "Record a mood check-in and score it against the personal baseline"},
		{Name: "wellspring_scores", Description: "Mood Composite and Daily Success Score for recent check-ins"},
		{Name: "wellspring_streak", Description: "Current and longest consecutive-day check-in streaks"},
		{Name: "wellspring_drivers", Description: "Tags ranked by their impact on mood and daily success"},
		{Name: "wellspring_heatmap", Description: "Weekday by hour productivity peaks and lows"},
		{Name: "wellspring_tips", Description: "Ranked coaching tips for the latest check-in"},
		{Name: "wellspring_tip_feedback", Description: "Mark tips completed or favorite, or clear completed tips"},
		{Name: "wellspring_profile_list", Description: "List local profiles"},
		{Name: "wellspring_profile_info", Description: "Statistics for the active profile"},
	}
}

// CallTool executes a tool by name with the given arguments.
// This is used for testing and direct invocation.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	switch name {
	case "wellspring_checkin":
		return s.handleCheckIn(ctx, args)
	case "wellspring_scores":
		return s.handleScores(ctx, args)
	case "wellspring_streak":
		return s.handleStreak(ctx, args)
	case "wellspring_drivers":
		return s.handleDrivers(ctx, args)
	case "wellspring_heatmap":
		return s.handleHeatmap(ctx, args)
	case "wellspring_tips":
		return s.handleTips(ctx, args)
	case "wellspring_tip_feedback":
		return s.handleTipFeedback(ctx, args)
	case "wellspring_profile_list":
		return s.handleProfileList(ctx, args)
	case "wellspring_profile_info":
		return s.handleProfileInfo(ctx, args)
	default:
		return &ToolResult{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}, nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("wellspring_checkin",
		mcp.WithDescription("Record a mood check-in. Each mood dimension is 0-5. Returns the entry and its Mood Composite / Daily Success Score against the personal baseline (valid once 3 other check-ins exist)."),
		mcp.WithNumber("positivity", mcp.Description("Positivity 0-5"), mcp.Required()),
		mcp.WithNumber("energy", mcp.Description("Energy 0-5"), mcp.Required()),
		mcp.WithNumber("focus", mcp.Description("Focus 0-5"), mcp.Required()),
		mcp.WithNumber("stress", mcp.Description("Stress 0-5 (higher is worse)"), mcp.Required()),
		mcp.WithArray("tags",
			mcp.Description("Activity tags such as exercise, work, friends"),
			mcp.WithStringItems(),
		),
		mcp.WithString("time_of_day",
			mcp.Description("morning, afternoon, evening, or night (default: derived from the clock)"),
		),
		mcp.WithNumber("focus_minutes", mcp.Description("Minutes of focused work")),
		mcp.WithNumber("tasks_completed", mcp.Description("Number of tasks completed")),
		mcp.WithNumber("sleep_hours", mcp.Description("Hours slept last night")),
		mcp.WithBoolean("recovery_action", mcp.Description("Whether a deliberate recovery action was taken")),
		mcp.WithNumber("social_interactions", mcp.Description("Number of meaningful social interactions")),
	), s.wrap(s.handleCheckIn))

	s.mcpServer.AddTool(mcp.NewTool("wellspring_scores",
		mcp.WithDescription("Mood Composite (weighted z-scores of positivity, energy, focus, stress) and Daily Success Score for recent check-ins, oldest first."),
		mcp.WithNumber("limit", mcp.Description("Number of most recent check-ins (default: 7)")),
		mcp.WithBoolean("same_time_of_day", mcp.Description("Compare mood only against check-ins from the same time of day")),
	), s.wrap(s.handleScores))

	s.mcpServer.AddTool(mcp.NewTool("wellspring_streak",
		mcp.WithDescription("Current and longest streak of consecutive days with at least one check-in."),
	), s.wrap(s.handleStreak))

	s.mcpServer.AddTool(mcp.NewTool("wellspring_drivers",
		mcp.WithDescription("Tags from the last 28 days ranked by how much they shift mood and daily success, with confidence and effect."),
		mcp.WithString("tag", mcp.Description("Only report this tag")),
	), s.wrap(s.handleDrivers))

	s.mcpServer.AddTool(mcp.NewTool("wellspring_heatmap",
		mcp.WithDescription("Productivity by weekday and hour on a 0-5 scale, with peak and low cells."),
	), s.wrap(s.handleHeatmap))

	s.mcpServer.AddTool(mcp.NewTool("wellspring_tips",
		mcp.WithDescription("Coaching tips ranked for the latest check-in. Returns session references (T1, T2, ...) usable with wellspring_tip_feedback."),
		mcp.WithNumber("max", mcp.Description("Maximum number of tips (default: 3)")),
	), s.wrap(s.handleTips))

	s.mcpServer.AddTool(mcp.NewTool("wellspring_tip_feedback",
		mcp.WithDescription("Record tip feedback using session refs (T1, T2) or tip ids. Completed tips rank lower; favorites rank higher."),
		mcp.WithArray("completed",
			mcp.Description("Tips the user completed"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("favorite",
			mcp.Description("Tips whose favorite state should be toggled"),
			mcp.WithStringItems(),
		),
		mcp.WithBoolean("clear_completed", mcp.Description("Reset all completed tips")),
	), s.wrap(s.handleTipFeedback))

	s.mcpServer.AddTool(mcp.NewTool("wellspring_profile_list",
		mcp.WithDescription("List local profiles. Read-only."),
	), s.wrap(s.handleProfileList))

	s.mcpServer.AddTool(mcp.NewTool("wellspring_profile_info",
		mcp.WithDescription("Statistics and metadata for the active profile. Read-only."),
	), s.wrap(s.handleProfileInfo))
}

type toolHandler func(ctx context.Context, args map[string]any) (*ToolResult, error)

// wrap adapts an internal handler to the mcp-go handler signature.
func (s *Server) wrap(h toolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := h(ctx, req.GetArguments())
		if err != nil {
			return nil, err
		}
		return toMCPResult(result), nil
	}
}

func toMCPResult(r *ToolResult) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: r.Content,
			},
		},
	}
	if r.IsError {
		result.IsError = true
	}
	return result
}

func errorResult(format string, args ...any) *ToolResult {
	return &ToolResult{Content: fmt.Sprintf(format, args...), IsError: true}
}

// Internal handlers

func (s *Server) handleCheckIn(ctx context.Context, args map[string]any) (*ToolResult, error) {
	var p wellspring.CheckInParams
	dims := []struct {
		name string
		dst  *float64
	}{
		{"positivity", &p.Mood.Positivity},
		{"energy", &p.Mood.Energy},
		{"focus", &p.Mood.Focus},
		{"stress", &p.Mood.Stress},
	}
	for _, d := range dims {
		v, ok := args[d.name].(float64)
		if !ok {
			return errorResult("%s is required", d.name), nil
		}
		*d.dst = v
	}

	p.Tags = toStringSlice(args["tags"])
	if tod, ok := args["time_of_day"].(string); ok && tod != "" {
		p.TimeOfDay = wellspring.TimeOfDay(strings.ToLower(tod))
	}
	if v, ok := args["focus_minutes"].(float64); ok {
		p.FocusMinutes = &v
	}
	if v, ok := args["tasks_completed"].(float64); ok {
		n := int(v)
		p.TasksCompleted = &n
	}
	if v, ok := args["sleep_hours"].(float64); ok {
		p.SleepHours = &v
	}
	if v, ok := args["recovery_action"].(bool); ok {
		p.RecoveryAction = &v
	}
	if v, ok := args["social_interactions"].(float64); ok {
		n := int(v)
		p.SocialInteractions = &n
	}

	res, err := s.client.CheckIn(ctx, p)
	if err != nil {
		var ee *wellspring.EntryError
		if errors.As(err, &ee) {
			return errorResult("invalid check-in: %s: %s", ee.Field, ee.Message), nil
		}
		return errorResult("check-in failed: %v", err), nil
	}
	return &ToolResult{Content: formatCheckIn(res)}, nil
}

func (s *Server) handleScores(ctx context.Context, args map[string]any) (*ToolResult, error) {
	limit := wellspring.DefaultRecentEntries
	if v, ok := args["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}
	var opts wellspring.ScoreOptions
	if v, ok := args["same_time_of_day"].(bool); ok {
		opts.SameTimeOfDay = v
	}

	scores, err := s.client.Scores(ctx, wellspring.EntryFilter{Limit: limit}, opts)
	if err != nil {
		return errorResult("scores failed: %v", err), nil
	}
	return &ToolResult{Content: formatScores(scores)}, nil
}

func (s *Server) handleStreak(ctx context.Context, _ map[string]any) (*ToolResult, error) {
	st, err := s.client.Streak(ctx)
	if err != nil {
		return errorResult("streak failed: %v", err), nil
	}
	return &ToolResult{Content: formatStreak(st)}, nil
}

func (s *Server) handleDrivers(ctx context.Context, args map[string]any) (*ToolResult, error) {
	records, err := s.client.Drivers(ctx)
	if err != nil {
		return errorResult("drivers failed: %v", err), nil
	}
	if tag, ok := args["tag"].(string); ok && tag != "" {
		rec, found := wellspring.DriversForTag(records, tag)
		if !found {
			return &ToolResult{Content: fmt.Sprintf("No driver data for tag %q. Tags need at least %d check-ins in the window.", tag, wellspring.DefaultDriverMinOccurrences)}, nil
		}
		records = []wellspring.DriverRecord{rec}
	}
	return &ToolResult{Content: formatDrivers(records)}, nil
}

func (s *Server) handleHeatmap(ctx context.Context, _ map[string]any) (*ToolResult, error) {
	hm, err := s.client.Heatmap(ctx)
	if err != nil {
		return errorResult("heatmap failed: %v", err), nil
	}
	return &ToolResult{Content: formatHeatmap(hm)}, nil
}

func (s *Server) handleTips(ctx context.Context, args map[string]any) (*ToolResult, error) {
	max := wellspring.DefaultMaxTips
	if v, ok := args["max"].(float64); ok && v > 0 {
		max = int(v)
	}
	tips, err := s.client.Tips(ctx, max)
	if err != nil {
		return errorResult("tips failed: %v", err), nil
	}
	return &ToolResult{Content: formatTips(tips)}, nil
}

func (s *Server) handleTipFeedback(ctx context.Context, args map[string]any) (*ToolResult, error) {
	completed := toStringSlice(args["completed"])
	favorite := toStringSlice(args["favorite"])
	clear, _ := args["clear_completed"].(bool)

	if len(completed) == 0 && len(favorite) == 0 && !clear {
		return errorResult("at least one of completed, favorite, or clear_completed must be provided"), nil
	}

	var sb strings.Builder
	sb.WriteString("Tip feedback recorded:\n")
	var failed []string

	if clear {
		if _, err := s.client.ClearCompletedTips(ctx); err != nil {
			failed = append(failed, fmt.Sprintf("clear completed: %v", err))
		} else {
			sb.WriteString("  Cleared completed tips\n")
		}
	}
	for _, ref := range completed {
		if _, err := s.client.CompleteTip(ctx, ref); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", ref, err))
			continue
		}
		sb.WriteString(fmt.Sprintf("  Completed: %s\n", ref))
	}
	for _, ref := range favorite {
		prefs, err := s.client.ToggleFavorite(ctx, ref)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", ref, err))
			continue
		}
		id, _ := s.client.ResolveTip(ref)
		state := "removed from favorites"
		if prefs.IsFavorited(id) {
			state = "favorited"
		}
		sb.WriteString(fmt.Sprintf("  %s: %s\n", ref, state))
	}

	if len(failed) > 0 {
		sb.WriteString(fmt.Sprintf("  Failed: %d\n", len(failed)))
		for _, f := range failed {
			sb.WriteString(fmt.Sprintf("    - %s\n", f))
		}
	}
	return &ToolResult{Content: sb.String(), IsError: len(failed) > 0 && len(failed) == len(completed)+len(favorite)+boolCount(clear)}, nil
}

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}

// toStringSlice converts various array types to []string.
// Handles []any, []string, and nil.
func toStringSlice(v any) []string {
	if v == nil {
		return nil
	}

	switch arr := v.(type) {
	case []string:
		return arr
	case []any:
		result := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}
