package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperengineering/wellspring"
	"github.com/hyperengineering/wellspring/internal/store"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage profiles",
	Long: `Manage separate check-in datasets.

Each profile is its own database under $WELLSPRING_HOME/profiles
(default ~/.wellspring/profiles). Select one with --profile or
WELLSPRING_PROFILE.

Subcommands:
  list    List all profiles
  create  Create a new profile
  delete  Delete a profile
  info    Show profile details

Example:
  wellspring profile list
  wellspring profile create work --description "Work days"
  wellspring checkin --profile work -p 4 -e 3 -f 4 -s 2`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE:  runProfileList,
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <profile-id>",
	Short: "Create a new profile",
	Long: `Create a new profile.

Profile ID format:
  - Lowercase letters, digits, and hyphens
  - 1-64 characters
  - No leading/trailing hyphens, no consecutive hyphens

Example:
  wellspring profile create work
  wellspring profile create training --description "Marathon block"`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileCreate,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <profile-id>",
	Short: "Delete a profile",
	Long: `Delete a profile and all its check-ins.

Requires --confirm flag for safety. Use --force to skip interactive prompt.
Cannot delete the 'default' profile.

Example:
  wellspring profile delete work --confirm
  wellspring profile delete work --confirm --force`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileDelete,
}

var profileInfoCmd = &cobra.Command{
	Use:   "info [profile-id]",
	Short: "Show profile details",
	Long: `Display details and statistics for a profile.

Without an argument, shows the active profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfileInfo,
}

var (
	profileDescription   string
	profileDeleteConfirm bool
	profileDeleteForce   bool
)

func init() {
	profileCreateCmd.Flags().StringVar(&profileDescription, "description", "", "Profile description")
	profileDeleteCmd.Flags().BoolVar(&profileDeleteConfirm, "confirm", false, "Confirm deletion (required)")
	profileDeleteCmd.Flags().BoolVar(&profileDeleteForce, "force", false, "Skip interactive prompt")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileInfoCmd)
}

func resetProfileFlags() {
	profileDescription = ""
	profileDeleteConfirm, profileDeleteForce = false, false
}

// ProfileListEntry represents a profile in list output.
type ProfileListEntry struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	EntryCount  int       `json:"entry_count"`
	LastEntry   time.Time `json:"last_entry,omitempty"`
}

// ProfileListResult for JSON output.
type ProfileListResult struct {
	Profiles []ProfileListEntry `json:"profiles"`
	Total    int                `json:"total"`
}

func runProfileList(cmd *cobra.Command, args []string) error {
	ids, err := store.ListProfiles(store.DefaultProfileRoot())
	if err != nil {
		return fmt.Errorf("read profiles directory: %w", err)
	}

	profiles := make([]ProfileListEntry, 0, len(ids))
	for _, id := range ids {
		entry := ProfileListEntry{ID: id}
		s, err := wellspring.NewStore(store.ProfileDBPath(id))
		if err == nil {
			entry.Description, _ = s.Description()
			if stats, err := s.Stats(cmd.Context()); err == nil {
				entry.EntryCount = stats.EntryCount
				entry.LastEntry = stats.LastEntry
			}
			_ = s.Close()
		}
		profiles = append(profiles, entry)
	}

	if outputJSON {
		return outputAsJSON(cmd, ProfileListResult{Profiles: profiles, Total: len(profiles)})
	}

	out := cmd.OutOrStdout()
	if len(profiles) == 0 {
		printWarning(out, "No profiles found.")
		printMuted(out, "Create one with: wellspring profile create <profile-id>")
		return nil
	}

	printInfo(out, "Profiles (%d):", len(profiles))
	fmt.Fprintln(out)
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		desc := p.Description
		if len(desc) > 35 {
			desc = desc[:32] + "..."
		}
		last := "-"
		if !p.LastEntry.IsZero() {
			last = formatRelativeTime(p.LastEntry)
		}
		rows = append(rows, []string{p.ID, desc, fmt.Sprintf("%d", p.EntryCount), last})
	}
	fmt.Fprintln(out, renderTable([]string{"PROFILE", "DESCRIPTION", "CHECK-INS", "LAST"}, rows))
	return nil
}

// ProfileCreateResult for JSON output.
type ProfileCreateResult struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location"`
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := store.ValidateProfileIDForCreation(id); err != nil {
		return fmt.Errorf("invalid profile ID %q: %w\n\nProfile IDs are lowercase letters, digits, and single hyphens.\nValid examples: work, home, half-marathon", id, err)
	}

	dbPath := store.ProfileDBPath(id)
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dbPath); err == nil {
		return fmt.Errorf("profile %q already exists at %s", id, dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}

	s, err := wellspring.NewStore(dbPath)
	if err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("initialize profile: %w", err)
	}
	if profileDescription != "" {
		if err := s.SetDescription(profileDescription); err != nil {
			_ = s.Close()
			_ = os.RemoveAll(dir)
			return fmt.Errorf("set description: %w", err)
		}
	}
	if err := s.Close(); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("close profile: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, ProfileCreateResult{ID: id, Description: profileDescription, Location: dir})
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Profile created: %s", id)
	if profileDescription != "" {
		fmt.Fprintf(out, "  Description: %s\n", profileDescription)
	}
	fmt.Fprintf(out, "  Location: %s\n", dir)
	return nil
}

// ProfileDeleteResult for JSON output.
type ProfileDeleteResult struct {
	ID         string `json:"id"`
	EntryCount int    `json:"entry_count_deleted"`
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := store.ValidateProfileID(id); err != nil {
		return fmt.Errorf("invalid profile ID %q: %w", id, err)
	}
	if !profileDeleteConfirm {
		return fmt.Errorf("--confirm flag is required for delete\n\nUsage: wellspring profile delete <profile-id> --confirm [--force]")
	}
	if id == store.DefaultProfile {
		return fmt.Errorf("cannot delete protected profile 'default'")
	}

	dbPath := store.ProfileDBPath(id)
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("profile %q not found", id)
	}

	var count int
	if s, err := wellspring.NewStore(dbPath); err == nil {
		count, _ = s.EntryCount(cmd.Context())
		_ = s.Close()
	}

	out := cmd.OutOrStdout()
	if !profileDeleteForce {
		printWarning(out, "This will permanently delete profile '%s' and all %d check-ins.", id, count)
		fmt.Fprintf(out, "Type '%s' to confirm: ", id)

		response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if strings.TrimSpace(response) != id {
			printMuted(out, "Aborted.")
			return nil
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, ProfileDeleteResult{ID: id, EntryCount: count})
	}
	printSuccess(out, "Profile deleted: %s", id)
	if count > 0 {
		fmt.Fprintf(out, "  Deleted %d check-ins\n", count)
	}
	return nil
}

// ProfileInfoResult for JSON output.
type ProfileInfoResult struct {
	ID           string    `json:"id"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	EntryCount   int       `json:"entry_count"`
	TagCount     int       `json:"tag_count"`
	FirstEntry   time.Time `json:"first_entry,omitempty"`
	LastEntry    time.Time `json:"last_entry,omitempty"`
	LastImport   string    `json:"last_import,omitempty"`
	MigratedFrom string    `json:"migrated_from,omitempty"`
	Active       bool      `json:"active,omitempty"`
}

func runProfileInfo(cmd *cobra.Command, args []string) error {
	var (
		s      *wellspring.Store
		id     string
		active bool
	)
	if len(args) > 0 {
		id = args[0]
		if err := store.ValidateProfileID(id); err != nil {
			return fmt.Errorf("invalid profile ID %q: %w", id, err)
		}
		dbPath := store.ProfileDBPath(id)
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("profile %q not found", id)
		}
		opened, err := wellspring.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open profile: %w", err)
		}
		defer func() { _ = opened.Close() }()
		s = opened
	} else {
		client, err := openClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		s, id, active = client.Store(), client.Profile(), true
	}

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	info := ProfileInfoResult{
		ID:         id,
		Location:   s.Path(),
		EntryCount: stats.EntryCount,
		TagCount:   stats.TagCount,
		FirstEntry: stats.FirstEntry,
		LastEntry:  stats.LastEntry,
		Active:     active,
	}
	info.Description, _ = s.Description()
	info.CreatedAt, _ = s.CreatedAt()
	info.LastImport, _ = s.GetMetadata(wellspring.MetaLastImport)
	info.MigratedFrom, _ = s.GetMetadata(wellspring.MetaMigratedFrom)

	if outputJSON {
		return outputAsJSON(cmd, info)
	}

	var b strings.Builder
	if info.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", info.Description)
	}
	fmt.Fprintf(&b, "Location:    %s\n", info.Location)
	if !info.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Created:     %s\n", info.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "Check-ins:   %d\n", info.EntryCount)
	fmt.Fprintf(&b, "Tags:        %d", info.TagCount)
	if !info.LastEntry.IsZero() {
		fmt.Fprintf(&b, "\nLast:        %s", formatRelativeTime(info.LastEntry))
	}
	if info.LastImport != "" {
		fmt.Fprintf(&b, "\nLast import: %s", info.LastImport)
	}
	if info.MigratedFrom != "" {
		fmt.Fprintf(&b, "\nMigrated:    %s", info.MigratedFrom)
	}

	title := "Profile: " + id
	if active {
		title += " (active)"
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderPanel(title, b.String()))
	return nil
}
