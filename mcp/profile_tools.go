package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/wellspring"
	"github.com/hyperengineering/wellspring/internal/store"
)

// profileSummary is one row of the profile list.
type profileSummary struct {
	ID          string
	Description string
	Entries     int
	LastEntry   time.Time
	Active      bool
}

// handleProfileList handles the wellspring_profile_list tool call.
func (s *Server) handleProfileList(ctx context.Context, _ map[string]any) (*ToolResult, error) {
	ids, err := store.ListProfiles(store.DefaultProfileRoot())
	if err != nil {
		return &ToolResult{
			Content: fmt.Sprintf("list profiles failed: %v", err),
			IsError: true,
		}, nil
	}

	summaries := make([]profileSummary, 0, len(ids))
	for _, id := range ids {
		sum, err := s.summarizeProfile(ctx, id)
		if err != nil {
			// An unreadable profile still shows up by name.
			sum = profileSummary{ID: id}
		}
		summaries = append(summaries, sum)
	}

	return &ToolResult{Content: formatProfileList(summaries, s.client.Profile())}, nil
}

func (s *Server) summarizeProfile(ctx context.Context, id string) (profileSummary, error) {
	if id == s.client.Profile() {
		return summarize(ctx, id, s.client.Store(), true)
	}
	st, err := wellspring.NewStore(store.ProfileDBPath(id))
	if err != nil {
		return profileSummary{}, err
	}
	defer func() { _ = st.Close() }()
	return summarize(ctx, id, st, false)
}

func summarize(ctx context.Context, id string, st *wellspring.Store, active bool) (profileSummary, error) {
	stats, err := st.Stats(ctx)
	if err != nil {
		return profileSummary{}, err
	}
	desc, _ := st.Description()
	return profileSummary{
		ID:          id,
		Description: desc,
		Entries:     stats.EntryCount,
		LastEntry:   stats.LastEntry,
		Active:      active,
	}, nil
}

// handleProfileInfo handles the wellspring_profile_info tool call.
func (s *Server) handleProfileInfo(ctx context.Context, _ map[string]any) (*ToolResult, error) {
	stats, err := s.client.Stats(ctx)
	if err != nil {
		return &ToolResult{
			Content: fmt.Sprintf("get profile info failed: %v", err),
			IsError: true,
		}, nil
	}
	st := s.client.Store()
	desc, _ := st.Description()
	created, _ := st.CreatedAt()
	lastImport, _ := st.GetMetadata(wellspring.MetaLastImport)
	prefs := s.client.Recommender().Preferences()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile: %s\n", s.client.Profile()))
	if desc != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", desc))
	}
	sb.WriteString(fmt.Sprintf("Created: %s\n", formatTimestamp(created)))
	sb.WriteString(fmt.Sprintf("Database: %s\n", st.Path()))
	sb.WriteString("\n")

	sb.WriteString("Statistics:\n")
	sb.WriteString(fmt.Sprintf("  Check-ins: %d\n", stats.EntryCount))
	sb.WriteString(fmt.Sprintf("  Distinct tags: %d\n", stats.TagCount))
	if stats.EntryCount > 0 {
		sb.WriteString(fmt.Sprintf("  First check-in: %s\n", formatTimestamp(stats.FirstEntry)))
		sb.WriteString(fmt.Sprintf("  Last check-in: %s\n", formatRelativeTime(stats.LastEntry)))
	}
	sb.WriteString(fmt.Sprintf("  Schema version: %s\n", stats.SchemaVersion))
	sb.WriteString("\n")

	sb.WriteString("Tip preferences:\n")
	sb.WriteString(fmt.Sprintf("  Favorites: %d\n", len(prefs.Favorited)))
	sb.WriteString(fmt.Sprintf("  Completed: %d\n", len(prefs.Completed)))
	if lastImport != "" {
		sb.WriteString(fmt.Sprintf("\nLast import: %s\n", lastImport))
	}
	return &ToolResult{Content: sb.String()}, nil
}

// formatProfileList formats the profile list response for display.
func formatProfileList(profiles []profileSummary, active string) string {
	if len(profiles) == 0 {
		return fmt.Sprintf("No profiles found. The active profile %q is created on first check-in.", active)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profiles (%d):\n\n", len(profiles)))
	for _, p := range profiles {
		marker := " "
		if p.Active {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, p.ID))
		if p.Description != "" {
			sb.WriteString(fmt.Sprintf("    Description: %s\n", p.Description))
		}
		sb.WriteString(fmt.Sprintf("    Check-ins: %d | Last: %s\n\n", p.Entries, formatRelativeTime(p.LastEntry)))
	}
	return sb.String()
}
