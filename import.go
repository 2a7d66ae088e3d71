package wellspring

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ImportJSON imports entries from a JSON export. Every entry is re-validated;
// invalid ones are counted and reported in Errors without aborting the import.
//
// The store's write lock is held for the whole import.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader, strategy MergeStrategy, dryRun bool) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	dec := json.NewDecoder(r)
	result := &ImportResult{}

	token, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read opening token: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected opening brace, got %v", token)
	}

	var version string
	for dec.More() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		token, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read field name: %w", err)
		}
		field, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("expected field name, got %v", token)
		}

		switch field {
		case "version":
			if err := dec.Decode(&version); err != nil {
				return nil, fmt.Errorf("decode version: %w", err)
			}
			if version != ExportVersion {
				return nil, fmt.Errorf("unsupported export version %q (expected %q)", version, ExportVersion)
			}
		case "entries":
			if err := s.importEntryArray(ctx, dec, strategy, dryRun, result); err != nil {
				return result, fmt.Errorf("import entries: %w", err)
			}
		default:
			var discard any
			if err := dec.Decode(&discard); err != nil {
				return nil, fmt.Errorf("decode %s: %w", field, err)
			}
		}
	}

	if version == "" {
		return nil, fmt.Errorf("missing version field in export file")
	}
	if !dryRun {
		s.recordImport(ctx, result)
	}
	return result, nil
}

func (s *Store) importEntryArray(ctx context.Context, dec *json.Decoder, strategy MergeStrategy, dryRun bool, result *ImportResult) error {
	token, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read entries array start: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("expected entries array, got %v", token)
	}

	for dec.More() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var e Entry
		if err := dec.Decode(&e); err != nil {
			// A malformed element leaves the decoder unusable.
			return fmt.Errorf("decode entry: %w", err)
		}
		s.importOne(ctx, &e, strategy, dryRun, result)
	}

	token, err = dec.Token()
	if err != nil {
		return fmt.Errorf("read entries array end: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != ']' {
		return fmt.Errorf("expected entries array end, got %v", token)
	}
	return nil
}

// ImportCSV imports entries from CSV with a header row naming columns from
// CSVHeader. Columns may appear in any order; id and the optional columns
// may be omitted. Timestamps without a zone are read in loc (nil means
// time.Local). An empty time_of_day is derived from the timestamp.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader, loc *time.Location, strategy MergeStrategy, dryRun bool) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if loc == nil {
		loc = time.Local
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"timestamp", "positivity", "energy", "focus", "stress"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv header missing column %q", required)
		}
	}

	result := &ImportResult{}
	line := 1
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		e, err := recordToEntry(rec, cols, loc)
		if err != nil {
			result.Total++
			result.Invalid++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		s.importOne(ctx, e, strategy, dryRun, result)
	}

	if !dryRun {
		s.recordImport(ctx, result)
	}
	return result, nil
}

func recordToEntry(rec []string, cols map[string]int, loc *time.Location) (*Entry, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	num := func(name string) (float64, error) {
		v, err := strconv.ParseFloat(get(name), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return v, nil
	}

	ts, err := parseTimestamp(get("timestamp"), loc)
	if err != nil {
		return nil, err
	}
	e := &Entry{ID: get("id"), Timestamp: ts, TimeOfDay: TimeOfDay(strings.ToLower(get("time_of_day")))}
	if e.TimeOfDay == "" {
		e.TimeOfDay = TimeOfDayAt(ts)
	}
	if e.Mood.Positivity, err = num("positivity"); err != nil {
		return nil, err
	}
	if e.Mood.Energy, err = num("energy"); err != nil {
		return nil, err
	}
	if e.Mood.Focus, err = num("focus"); err != nil {
		return nil, err
	}
	if e.Mood.Stress, err = num("stress"); err != nil {
		return nil, err
	}
	if tags := get("tags"); tags != "" {
		e.Tags = NormalizeTags(strings.Split(tags, csvTagSeparator))
	}

	if v := get("focus_minutes"); v != "" {
		f, err := num("focus_minutes")
		if err != nil {
			return nil, err
		}
		e.FocusMinutes = &f
	}
	if v := get("tasks_completed"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("tasks_completed: %w", err)
		}
		e.TasksCompleted = &n
	}
	if v := get("sleep_hours"); v != "" {
		f, err := num("sleep_hours")
		if err != nil {
			return nil, err
		}
		e.SleepHours = &f
	}
	if v := get("recovery_action"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("recovery_action: %w", err)
		}
		e.RecoveryAction = &b
	}
	if v := get("social_interactions"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("social_interactions: %w", err)
		}
		e.SocialInteractions = &n
	}
	return e, nil
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("timestamp: required")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp: unrecognized format %q", s)
}

// importOne validates and applies a single entry. Caller holds the lock.
func (s *Store) importOne(ctx context.Context, e *Entry, strategy MergeStrategy, dryRun bool, result *ImportResult) {
	result.Total++
	if e.ID == "" {
		e.ID = NewEntryID()
	}
	if err := ValidateEntry(e); err != nil {
		result.Invalid++
		result.Errors = append(result.Errors, err.Error())
		return
	}
	e.Tags = NormalizeTags(e.Tags)

	exists, err := entryExists(ctx, s.db, e.ID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("check existence %s: %v", e.ID, err))
		return
	}

	if exists && strategy == MergeStrategySkip {
		result.Skipped++
		return
	}
	if dryRun {
		if exists {
			result.Merged++
		} else {
			result.Created++
		}
		return
	}

	if err := s.applyImport(ctx, e, strategy, exists); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("import %s: %v", e.ID, err))
		return
	}
	if exists {
		result.Merged++
	} else {
		result.Created++
	}
}

func (s *Store) applyImport(ctx context.Context, e *Entry, strategy MergeStrategy, exists bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if exists {
		if strategy == MergeStrategyMerge {
			cur, err := scanEntry(tx.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries e WHERE e.id = ?`, e.ID))
			if err != nil {
				return err
			}
			rows, err := tx.QueryContext(ctx, `SELECT tag FROM entry_tags WHERE entry_id = ?`, e.ID)
			if err != nil {
				return err
			}
			for rows.Next() {
				var tag string
				if err := rows.Scan(&tag); err != nil {
					rows.Close()
					return err
				}
				cur.Tags = append(cur.Tags, tag)
			}
			rows.Close()
			e = mergeEntries(cur, e)
		}
		if _, err := deleteEntryTx(ctx, tx, e.ID); err != nil {
			return err
		}
	}
	if err := insertEntryTx(ctx, tx, e); err != nil {
		return err
	}
	return tx.Commit()
}

// mergeEntries keeps cur's recorded values, adds in's tags, and fills any
// optional field cur left unrecorded.
func mergeEntries(cur, in *Entry) *Entry {
	out := *cur
	out.Tags = NormalizeTags(append(append([]string{}, cur.Tags...), in.Tags...))
	if out.FocusMinutes == nil {
		out.FocusMinutes = in.FocusMinutes
	}
	if out.TasksCompleted == nil {
		out.TasksCompleted = in.TasksCompleted
	}
	if out.SleepHours == nil {
		out.SleepHours = in.SleepHours
	}
	if out.RecoveryAction == nil {
		out.RecoveryAction = in.RecoveryAction
	}
	if out.SocialInteractions == nil {
		out.SocialInteractions = in.SocialInteractions
	}
	return &out
}

func (s *Store) recordImport(ctx context.Context, result *ImportResult) {
	summary := fmt.Sprintf("%s created=%d merged=%d skipped=%d invalid=%d",
		time.Now().UTC().Format(time.RFC3339), result.Created, result.Merged, result.Skipped, result.Invalid)
	_, _ = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`, MetaLastImport, summary)
}
