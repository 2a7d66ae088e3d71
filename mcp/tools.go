// Package mcp provides optional MCP (Model Context Protocol) tool adapters for Wellspring.
// This package allows Wellspring to be used from MCP-compatible assistants.
//
// This package offers two approaches:
//
// 1. Full MCP Server (server.go) - RECOMMENDED
//    Use NewServer() for a complete MCP server implementation using mcp-go.
//    This provides full MCP protocol support with stdio transport.
//
// 2. Registry Pattern (tools.go) - ALTERNATIVE
//    Use RegisterTools() for framework-agnostic integration where you
//    provide your own MCP registry implementation.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hyperengineering/wellspring"
)

// Registry is an interface for MCP tool registration.
// Implement this interface to integrate Wellspring with your MCP framework.
type Registry interface {
	Register(tool Tool)
}

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string
	Description string
	Parameters  Schema
	Handler     Handler
}

// Schema defines the JSON schema for tool parameters.
type Schema map[string]ParameterDef

// ParameterDef defines a single parameter.
type ParameterDef struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Required    bool              `json:"required,omitempty"`
	Default     interface{}       `json:"default,omitempty"`
	Items       map[string]string `json:"items,omitempty"`
	Enum        []string          `json:"enum,omitempty"`
}

// Handler is a function that handles tool invocations.
type Handler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// RegisterTools registers the core Wellspring tools with an MCP registry.
// Handlers return the engine's structured results rather than formatted text.
func RegisterTools(registry Registry, client *wellspring.Client) {
	registry.Register(Tool{
		Name:        "wellspring_checkin",
		Description: "Record a mood check-in and score it against the personal baseline",
		Parameters: Schema{
			"positivity": {Type: "number", Description: "Positivity 0-5", Required: true},
			"energy":     {Type: "number", Description: "Energy 0-5", Required: true},
			"focus":      {Type: "number", Description: "Focus 0-5", Required: true},
			"stress":     {Type: "number", Description: "Stress 0-5 (higher is worse)", Required: true},
			"tags": {
				Type:        "array",
				Description: "Activity tags",
				Items:       map[string]string{"type": "string"},
			},
			"time_of_day": {
				Type:        "string",
				Description: "Time-of-day bucket (default: derived from the clock)",
				Enum:        []string{"morning", "afternoon", "evening", "night"},
			},
			"focus_minutes":       {Type: "number", Description: "Minutes of focused work"},
			"tasks_completed":     {Type: "integer", Description: "Number of tasks completed"},
			"sleep_hours":         {Type: "number", Description: "Hours slept last night"},
			"recovery_action":     {Type: "boolean", Description: "Whether a recovery action was taken"},
			"social_interactions": {Type: "integer", Description: "Meaningful social interactions"},
		},
		Handler: makeCheckInHandler(client),
	})

	registry.Register(Tool{
		Name:        "wellspring_tips",
		Description: "Coaching tips ranked for the latest check-in",
		Parameters: Schema{
			"max": {
				Type:        "integer",
				Description: "Maximum number of tips",
				Default:     wellspring.DefaultMaxTips,
			},
		},
		Handler: makeTipsHandler(client),
	})

	registry.Register(Tool{
		Name:        "wellspring_tip_feedback",
		Description: "Mark tips completed or toggle favorites using session refs (T1, T2) or tip ids",
		Parameters: Schema{
			"completed": {
				Type:        "array",
				Description: "Tips the user completed",
				Items:       map[string]string{"type": "string"},
			},
			"favorite": {
				Type:        "array",
				Description: "Tips whose favorite state should be toggled",
				Items:       map[string]string{"type": "string"},
			},
			"clear_completed": {
				Type:        "boolean",
				Description: "Reset all completed tips",
			},
		},
		Handler: makeTipFeedbackHandler(client),
	})

	registry.Register(Tool{
		Name:        "wellspring_streak",
		Description: "Current and longest consecutive-day check-in streaks",
		Parameters:  Schema{},
		Handler: func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
			return client.Streak(ctx)
		},
	})
}

// checkInParams represents the parameters for wellspring_checkin.
type checkInParams struct {
	Positivity         *float64 `json:"positivity"`
	Energy             *float64 `json:"energy"`
	Focus              *float64 `json:"focus"`
	Stress             *float64 `json:"stress"`
	Tags               []string `json:"tags"`
	TimeOfDay          string   `json:"time_of_day"`
	FocusMinutes       *float64 `json:"focus_minutes"`
	TasksCompleted     *int     `json:"tasks_completed"`
	SleepHours         *float64 `json:"sleep_hours"`
	RecoveryAction     *bool    `json:"recovery_action"`
	SocialInteractions *int     `json:"social_interactions"`
}

func makeCheckInHandler(client *wellspring.Client) Handler {
	return func(ctx context.Context, rawParams json.RawMessage) (interface{}, error) {
		var params checkInParams
		if err := json.Unmarshal(rawParams, &params); err != nil {
			return nil, fmt.Errorf("parse params: %w", err)
		}

		if params.Positivity == nil || params.Energy == nil || params.Focus == nil || params.Stress == nil {
			return nil, fmt.Errorf("positivity, energy, focus, and stress are required")
		}

		return client.CheckIn(ctx, wellspring.CheckInParams{
			TimeOfDay: wellspring.TimeOfDay(params.TimeOfDay),
			Mood: wellspring.Mood{
				Positivity: *params.Positivity,
				Energy:     *params.Energy,
				Focus:      *params.Focus,
				Stress:     *params.Stress,
			},
			Tags:               params.Tags,
			FocusMinutes:       params.FocusMinutes,
			TasksCompleted:     params.TasksCompleted,
			SleepHours:         params.SleepHours,
			RecoveryAction:     params.RecoveryAction,
			SocialInteractions: params.SocialInteractions,
		})
	}
}

// tipsParams represents the parameters for wellspring_tips.
type tipsParams struct {
	Max int `json:"max"`
}

func makeTipsHandler(client *wellspring.Client) Handler {
	return func(ctx context.Context, rawParams json.RawMessage) (interface{}, error) {
		var params tipsParams
		if len(rawParams) > 0 {
			if err := json.Unmarshal(rawParams, &params); err != nil {
				return nil, fmt.Errorf("parse params: %w", err)
			}
		}
		return client.Tips(ctx, params.Max)
	}
}

// tipFeedbackParams represents the parameters for wellspring_tip_feedback.
type tipFeedbackParams struct {
	Completed      []string `json:"completed"`
	Favorite       []string `json:"favorite"`
	ClearCompleted bool     `json:"clear_completed"`
}

func makeTipFeedbackHandler(client *wellspring.Client) Handler {
	return func(ctx context.Context, rawParams json.RawMessage) (interface{}, error) {
		var params tipFeedbackParams
		if err := json.Unmarshal(rawParams, &params); err != nil {
			return nil, fmt.Errorf("parse params: %w", err)
		}

		prefs := client.Recommender().Preferences()
		var err error
		if params.ClearCompleted {
			if prefs, err = client.ClearCompletedTips(ctx); err != nil {
				return nil, err
			}
		}
		for _, ref := range params.Completed {
			if prefs, err = client.CompleteTip(ctx, ref); err != nil {
				return nil, err
			}
		}
		for _, ref := range params.Favorite {
			if prefs, err = client.ToggleFavorite(ctx, ref); err != nil {
				return nil, err
			}
		}
		return prefs, nil
	}
}
