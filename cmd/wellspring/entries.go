package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/wellspring"
	"github.com/spf13/cobra"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List recorded check-ins",
	Long: `List check-ins oldest first, optionally filtered.

Example:
  wellspring entries
  wellspring entries --tag work --limit 10
  wellspring entries --time-of-day morning --from 2025-03-01 --json`,
	RunE: runEntries,
}

var entriesDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a check-in",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntriesDelete,
}

var (
	entriesTag       string
	entriesTimeOfDay string
	entriesFrom      string
	entriesTo        string
	entriesLimit     int
)

func init() {
	entriesCmd.Flags().StringVar(&entriesTag, "tag", "", "Only check-ins with this tag")
	entriesCmd.Flags().StringVar(&entriesTimeOfDay, "time-of-day", "", "Only check-ins in this time-of-day bucket")
	entriesCmd.Flags().StringVar(&entriesFrom, "from", "", "Earliest day, inclusive (YYYY-MM-DD)")
	entriesCmd.Flags().StringVar(&entriesTo, "to", "", "Latest day, inclusive (YYYY-MM-DD)")
	entriesCmd.Flags().IntVarP(&entriesLimit, "limit", "n", 0, "Only the most recent N check-ins")

	entriesCmd.AddCommand(entriesDeleteCmd)
}

func resetEntriesFlags() {
	entriesTag, entriesTimeOfDay, entriesFrom, entriesTo = "", "", "", ""
	entriesLimit = 0
}

func runEntries(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	f, err := entryFilter(client.Location())
	if err != nil {
		return err
	}
	entries, err := client.Entries(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	return outputEntries(cmd, entries, client.Location())
}

func entryFilter(loc *time.Location) (wellspring.EntryFilter, error) {
	f := wellspring.EntryFilter{
		Tag:       strings.ToLower(strings.TrimSpace(entriesTag)),
		TimeOfDay: wellspring.TimeOfDay(strings.ToLower(entriesTimeOfDay)),
		Limit:     entriesLimit,
	}
	if f.TimeOfDay != "" && !f.TimeOfDay.IsValid() {
		return f, fmt.Errorf("invalid --time-of-day %q: want morning, afternoon, evening, or night", entriesTimeOfDay)
	}
	if entriesFrom != "" {
		d, err := time.ParseInLocation("2006-01-02", entriesFrom, loc)
		if err != nil {
			return f, fmt.Errorf("invalid --from %q: %w", entriesFrom, err)
		}
		f.From = d
	}
	if entriesTo != "" {
		d, err := time.ParseInLocation("2006-01-02", entriesTo, loc)
		if err != nil {
			return f, fmt.Errorf("invalid --to %q: %w", entriesTo, err)
		}
		// Filter upper bounds are exclusive.
		f.To = d.AddDate(0, 0, 1)
	}
	return f, nil
}

func runEntriesDelete(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.DeleteEntry(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if outputJSON {
		return outputAsJSON(cmd, map[string]string{"deleted": args[0]})
	}
	printSuccess(cmd.OutOrStdout(), "Deleted check-in %s", args[0])
	return nil
}
