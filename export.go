package wellspring

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// ExportFormat is the top-level structure for JSON exports.
type ExportFormat struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	ExportID   string         `json:"export_id"`
	Profile    string         `json:"profile"`
	Metadata   ExportMetadata `json:"metadata"`
	Entries    []Entry        `json:"entries"`
}

// ExportMetadata describes the exported entry set.
type ExportMetadata struct {
	EntryCount  int       `json:"entry_count"`
	DateRange   DateRange `json:"date_range"`
	Description string    `json:"description,omitempty"`
	CreatedAt   string    `json:"created_at,omitempty"`
}

// DateRange is the span of exported entry timestamps.
type DateRange struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// MergeStrategy defines how to handle conflicts during import.
type MergeStrategy string

const (
	// MergeStrategySkip skips entries that already exist (by ID).
	MergeStrategySkip MergeStrategy = "skip"
	// MergeStrategyReplace replaces existing entries with imported versions.
	MergeStrategyReplace MergeStrategy = "replace"
	// MergeStrategyMerge keeps existing entries, adding imported tags and any
	// optional fields the existing entry lacks (default).
	MergeStrategyMerge MergeStrategy = "merge"
)

// ParseMergeStrategy parses a strategy name. Empty means merge.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch MergeStrategy(strings.ToLower(s)) {
	case "", MergeStrategyMerge:
		return MergeStrategyMerge, nil
	case MergeStrategySkip:
		return MergeStrategySkip, nil
	case MergeStrategyReplace:
		return MergeStrategyReplace, nil
	default:
		return "", fmt.Errorf("unknown merge strategy %q (want skip, replace, or merge)", s)
	}
}

// ImportResult summarizes an import operation.
type ImportResult struct {
	Total   int      `json:"total"`
	Created int      `json:"created"`
	Merged  int      `json:"merged"`
	Skipped int      `json:"skipped"`
	Invalid int      `json:"invalid"`
	Errors  []string `json:"errors,omitempty"`
}

// ExportJSON streams all entries as JSON to w, oldest first. The envelope is
// written before the entries so readers can size the import up front.
func (s *Store) ExportJSON(ctx context.Context, profile string, w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	meta, err := s.exportMetadata(ctx)
	if err != nil {
		return err
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	header := fmt.Sprintf(`{"version":%s,"exported_at":%s,"export_id":%s,"profile":%s,"metadata":%s,"entries":[`,
		jsonString(ExportVersion),
		jsonString(time.Now().UTC().Format(time.RFC3339)),
		jsonString(uuid.NewString()),
		jsonString(profile),
		metaJSON,
	)
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	enc := json.NewEncoder(w)
	first := true
	err = s.eachEntry(ctx, func(e *Entry) error {
		if !first {
			if _, err := io.WriteString(w, ","); err != nil {
				return fmt.Errorf("write separator: %w", err)
			}
		}
		first = false
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encode entry %s: %w", e.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, "]}"); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	return nil
}

// exportMetadata gathers the envelope. Caller holds the lock.
func (s *Store) exportMetadata(ctx context.Context) (ExportMetadata, error) {
	var meta ExportMetadata
	var first, last sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       (SELECT timestamp FROM entries ORDER BY ts_unix_nano ASC LIMIT 1),
		       (SELECT timestamp FROM entries ORDER BY ts_unix_nano DESC LIMIT 1)
		FROM entries
	`).Scan(&meta.EntryCount, &first, &last)
	if err != nil {
		return meta, fmt.Errorf("query export metadata: %w", err)
	}
	if first.Valid {
		if t, err := time.Parse(time.RFC3339Nano, first.String); err == nil {
			meta.DateRange.From = &t
		}
	}
	if last.Valid {
		if t, err := time.Parse(time.RFC3339Nano, last.String); err == nil {
			meta.DateRange.To = &t
		}
	}

	var desc, created sql.NullString
	_ = s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, MetaDescription).Scan(&desc)
	_ = s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, MetaCreatedAt).Scan(&created)
	meta.Description = desc.String
	meta.CreatedAt = created.String
	return meta, nil
}

// eachEntry iterates all entries oldest first with tags attached. Caller
// holds the lock.
func (s *Store) eachEntry(ctx context.Context, fn func(*Entry) error) error {
	tags, err := s.tagsFor(ctx, "", nil)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries e ORDER BY e.ts_unix_nano, e.id`)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		e, err := scanEntry(rows)
		if err != nil {
			return fmt.Errorf("scan entry: %w", err)
		}
		e.Tags = tags[e.ID]
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate entries: %w", err)
	}
	return nil
}

// CSVHeader is the column layout for CSV export and import. Tags are joined
// with ';'. Empty optional columns mean the value was not recorded.
var CSVHeader = []string{
	"id", "timestamp", "time_of_day",
	"positivity", "energy", "focus", "stress",
	"tags",
	"focus_minutes", "tasks_completed", "sleep_hours", "recovery_action", "social_interactions",
}

const csvTagSeparator = ";"

// ExportCSV writes all entries as CSV with a header row.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	err := s.eachEntry(ctx, func(e *Entry) error {
		return cw.Write(entryToRecord(e))
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func entryToRecord(e *Entry) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	rec := []string{
		e.ID,
		e.Timestamp.Format(time.RFC3339Nano),
		string(e.TimeOfDay),
		f(e.Mood.Positivity), f(e.Mood.Energy), f(e.Mood.Focus), f(e.Mood.Stress),
		strings.Join(e.Tags, csvTagSeparator),
		"", "", "", "", "",
	}
	if e.FocusMinutes != nil {
		rec[8] = f(*e.FocusMinutes)
	}
	if e.TasksCompleted != nil {
		rec[9] = strconv.Itoa(*e.TasksCompleted)
	}
	if e.SleepHours != nil {
		rec[10] = f(*e.SleepHours)
	}
	if e.RecoveryAction != nil {
		rec[11] = strconv.FormatBool(*e.RecoveryAction)
	}
	if e.SocialInteractions != nil {
		rec[12] = strconv.Itoa(*e.SocialInteractions)
	}
	return rec
}

// jsonString returns a JSON-encoded string.
func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// ExportSQLite copies the database to destPath after checkpointing the WAL.
func (s *Store) ExportSQLite(ctx context.Context, destPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpoint WAL: %w", err)
	}

	src, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("copy database: %w", err)
	}
	return dst.Sync()
}
